// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "GOLOADER"

// Config holds the decoder configuration.
type Config struct {
	Stride  uint64 `mapstructure:"stride"`
	Version uint32 `mapstructure:"version"`
	Format  string `mapstructure:"format"`
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "memmap",
		Short: "EFI memory map decoder",
		Long: `memmap decodes raw EFI memory map dumps, a packed array of
EFI_MEMORY_DESCRIPTOR entries spaced by the firmware reported descriptor
size.

Settings are read, in order of precedence, from flags, GOLOADER_*
environment variables and an optional memmap.yaml configuration file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd)
		},
	}

	root.PersistentFlags().String("config", "", "configuration file (default ./memmap.yaml)")
	root.PersistentFlags().Uint64("stride", 48, "descriptor size reported by firmware")
	root.PersistentFlags().Uint32("version", 1, "descriptor version")
	root.PersistentFlags().StringP("format", "f", "table", "output format (table, e820, json)")

	root.AddCommand(newDecodeCmd(v))

	return root
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) (err error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err = v.BindPFlags(cmd.Flags()); err != nil {
		return
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("memmap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.go-loader")
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func config(v *viper.Viper) (c *Config, err error) {
	c = &Config{}

	if err = v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return
}
