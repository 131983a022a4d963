package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/JonathanBrouwer/go-esp-ota/ota"
)

type cmdFlash struct {
	Args struct {
		Image    string `positional-arg-name:"<image>" required:"yes"`
		Firmware string `positional-arg-name:"<firmware>" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *cmdFlash) Execute(args []string) error {
	dev, err := openImage(cmd.Args.Image)
	if err != nil {
		return err
	}
	defer dev.Close()

	fw, err := os.Open(cmd.Args.Firmware)
	if err != nil {
		return err
	}
	defer fw.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	up := ota.New(dev,
		ota.WithLogger(logger()),
		ota.WithProgressCallback(printProgress),
	)
	if err := up.Begin(ctx, fw); err != nil {
		fmt.Fprintln(os.Stderr)
		return err
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func printProgress(p ota.Progress) {
	switch p.Phase {
	case ota.PhaseWriting:
		fmt.Fprintf(os.Stderr, "\rwriting %d/%d bytes (%.1f%%)",
			p.BytesWritten, p.PartitionSize,
			float64(p.BytesWritten)/float64(p.PartitionSize)*100)
	case ota.PhaseComplete:
		fmt.Fprintf(os.Stderr, "\rdone: %d bytes in %s", p.BytesWritten, p.Elapsed.Round(time.Millisecond))
	}
}

type cmdAccept struct {
	Args struct {
		Image string `positional-arg-name:"<image>" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *cmdAccept) Execute(args []string) error {
	dev, err := openImage(cmd.Args.Image)
	if err != nil {
		return err
	}
	defer dev.Close()

	return ota.New(dev, ota.WithLogger(logger())).Accept()
}

type cmdReject struct {
	Args struct {
		Image string `positional-arg-name:"<image>" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *cmdReject) Execute(args []string) error {
	dev, err := openImage(cmd.Args.Image)
	if err != nil {
		return err
	}
	defer dev.Close()

	return ota.New(dev, ota.WithLogger(logger())).Reject()
}
