// Command otatool creates, inspects and updates flash image files on the
// host, using the same partition and OTA metadata layout the device uses.
//
// Usage:
//
//	otatool create --layout layout.yaml --size 4194304 flash.bin
//	otatool partitions flash.bin
//	otatool status flash.bin
//	otatool flash flash.bin firmware.bin
//	otatool accept flash.bin
//	otatool reject flash.bin
package main

import (
	"fmt"
	"os"

	"github.com/canonical/go-flags"
	"github.com/rs/zerolog"

	"github.com/JonathanBrouwer/go-esp-ota/flash"
	"github.com/JonathanBrouwer/go-esp-ota/otadata"
	"github.com/JonathanBrouwer/go-esp-ota/partition"
)

type globalOptions struct {
	BlockSize uint32 `long:"block-size" default:"4096" description:"Flash erase block size in bytes"`
	Verbose   bool   `short:"v" long:"verbose" description:"Enable debug logging"`
}

var opts globalOptions

func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func openImage(path string) (*flash.File, error) {
	return flash.OpenFile(path, opts.BlockSize)
}

func flashCreate(path string, capacity uint32) (*flash.File, error) {
	return flash.CreateFile(path, capacity, opts.BlockSize)
}

func main() {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.AddCommand("create", "Create a flash image from a layout file",
		"Create a fully erased flash image, write the partition table described "+
			"by the layout file, and provision the OTA data record.", &cmdCreate{})
	parser.AddCommand("partitions", "List the partition table of an image",
		"Decode and print every entry of the image's partition table.", &cmdPartitions{})
	parser.AddCommand("status", "Show the OTA record and booted slot",
		"Decode the redundant OTA data record and print sequence, state and the "+
			"application partition it selects.", &cmdStatus{})
	parser.AddCommand("flash", "Stream a firmware file into the inactive slot",
		"Run a full OTA update against the image file: erase the inactive "+
			"application slot, copy the firmware into it and advance the OTA record.", &cmdFlash{})
	parser.AddCommand("accept", "Mark the current update as working", "", &cmdAccept{})
	parser.AddCommand("reject", "Mark the current update as broken", "", &cmdReject{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type cmdPartitions struct {
	Args struct {
		Image string `positional-arg-name:"<image>" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *cmdPartitions) Execute(args []string) error {
	dev, err := openImage(cmd.Args.Image)
	if err != nil {
		return err
	}
	defer dev.Close()

	it := partition.DefaultTable().Iter(dev)
	for it.Next() {
		fmt.Println(it.Entry())
	}
	return it.Err()
}

type cmdStatus struct {
	Args struct {
		Image string `positional-arg-name:"<image>" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *cmdStatus) Execute(args []string) error {
	dev, err := openImage(cmd.Args.Image)
	if err != nil {
		return err
	}
	defer dev.Close()

	rec, err := otadata.Read(dev)
	if err != nil {
		return err
	}
	fmt.Printf("sequence: %d\nstate:    %s\n", rec.Sequence, rec.State)

	slot, err := rec.Slot()
	if err != nil {
		return err
	}
	booted, err := partition.FindByType(dev, partition.TypeApp, partition.AppSlot(slot))
	if err != nil {
		return err
	}
	fmt.Printf("booted:   %s\n", booted)
	return nil
}
