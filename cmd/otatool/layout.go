package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonathanBrouwer/go-esp-ota/otadata"
	"github.com/JonathanBrouwer/go-esp-ota/partition"
)

// layoutFile is the YAML description consumed by "otatool create":
//
//	partitions:
//	  - label: otadata
//	    type: data
//	    subtype: ota
//	    offset: 0x9000
//	    size: 0x2000
//	  - label: ota_0
//	    type: app
//	    subtype: ota_0
//	    offset: 0x10000
//	    size: 0x100000
//	  - label: ota_1
//	    type: app
//	    subtype: ota_1
//	    offset: 0x110000
//	    size: 0x100000
type layoutFile struct {
	Partitions []layoutPartition `yaml:"partitions"`
}

type layoutPartition struct {
	Label   string `yaml:"label"`
	Type    string `yaml:"type"`
	SubType string `yaml:"subtype"`
	Offset  uint32 `yaml:"offset"`
	Size    uint32 `yaml:"size"`
}

func loadLayout(path string) ([]partition.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var layout layoutFile
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("cannot parse layout %s: %w", path, err)
	}
	if len(layout.Partitions) == 0 {
		return nil, fmt.Errorf("layout %s declares no partitions", path)
	}

	entries := make([]partition.Descriptor, 0, len(layout.Partitions))
	for i, p := range layout.Partitions {
		desc, err := p.descriptor()
		if err != nil {
			return nil, fmt.Errorf("layout %s, partition %d (%q): %w", path, i, p.Label, err)
		}
		entries = append(entries, desc)
	}
	return entries, nil
}

func (p layoutPartition) descriptor() (partition.Descriptor, error) {
	desc := partition.Descriptor{Label: p.Label, Offset: p.Offset, Size: p.Size}

	switch p.Type {
	case "app":
		desc.Type = partition.TypeApp
		switch p.SubType {
		case "factory":
			desc.SubType = partition.SubTypeFactory
		case "ota_0":
			desc.SubType = partition.SubTypeOTA0
		case "ota_1":
			desc.SubType = partition.SubTypeOTA1
		default:
			return desc, fmt.Errorf("unknown app subtype %q", p.SubType)
		}
	case "data":
		switch p.SubType {
		case "ota":
			desc.Type = partition.TypeData
			desc.SubType = partition.SubTypeDataOTA
		default:
			return desc, fmt.Errorf("unknown data subtype %q", p.SubType)
		}
	default:
		return desc, fmt.Errorf("unknown type %q", p.Type)
	}

	if p.Size == 0 {
		return desc, fmt.Errorf("size must be positive")
	}
	return desc, nil
}

type cmdCreate struct {
	Layout   string `long:"layout" required:"yes" description:"YAML layout file"`
	Size     uint32 `long:"size" required:"yes" description:"Total flash size in bytes"`
	Sequence uint32 `long:"sequence" default:"1" description:"Initial OTA sequence number"`
	Args     struct {
		Image string `positional-arg-name:"<image>" required:"yes"`
	} `positional-args:"yes"`
}

func (cmd *cmdCreate) Execute(args []string) error {
	log := logger()

	entries, err := loadLayout(cmd.Layout)
	if err != nil {
		return err
	}

	dev, err := flashCreate(cmd.Args.Image, cmd.Size)
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := partition.DefaultTable().Write(dev, entries); err != nil {
		return err
	}
	log.Debug().Int("partitions", len(entries)).Msg("partition table written")

	// Provision the OTA record as accepted so the first update can start
	// right away.
	rec := otadata.Record{Sequence: cmd.Sequence, State: otadata.StateValid}
	for i := range rec.Reserved {
		rec.Reserved[i] = 0xFF
	}
	if err := otadata.Write(dev, rec); err != nil {
		return err
	}

	log.Info().
		Str("image", cmd.Args.Image).
		Uint32("size", cmd.Size).
		Uint32("sequence", cmd.Sequence).
		Msg("flash image created")
	return nil
}
