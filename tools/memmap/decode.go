// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usbarmory/go-loader/report"
	"github.com/usbarmory/go-loader/uefi"
)

// descriptor represents the JSON encoding of an EFI Memory Descriptor.
type descriptor struct {
	Type          string `json:"type"`
	PhysicalStart uint64 `json:"physical_start"`
	PhysicalEnd   uint64 `json:"physical_end"`
	NumberOfPages uint64 `json:"pages"`
	Attribute     uint64 `json:"attribute"`
}

func newDecodeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a raw memory map dump",
		Long: `Decode a raw memory map dump.

Examples:
  # print descriptors
  memmap decode memmap.bin --stride 48

  # print the E820 conversion
  memmap decode memmap.bin -f e820`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config(v)

			if err != nil {
				return err
			}

			buf, err := os.ReadFile(args[0])

			if err != nil {
				return err
			}

			return decode(cmd.OutOrStdout(), buf, c)
		},
	}
}

func decode(w io.Writer, buf []byte, c *Config) (err error) {
	m, err := uefi.ParseMemoryMap(buf, c.Stride, c.Version)

	if err != nil {
		return
	}

	switch c.Format {
	case "table":
		_, err = fmt.Fprintln(w, report.MemoryMap(m))
	case "e820":
		_, err = fmt.Fprintln(w, report.E820(m.E820()))
	case "json":
		d := []descriptor{}

		for _, desc := range m.All() {
			d = append(d, descriptor{
				Type:          desc.Type.String(),
				PhysicalStart: desc.PhysicalStart,
				PhysicalEnd:   desc.PhysicalEnd(),
				NumberOfPages: desc.NumberOfPages,
				Attribute:     desc.Attribute,
			})
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(d)
	default:
		err = fmt.Errorf("invalid format %q", c.Format)
	}

	return
}
