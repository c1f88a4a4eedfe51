// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// cfdp-tool creates CFDP PDUs from TOML descriptions and inspects encoded PDUs.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd creates the cfdp-tool command with all its subcommands.
func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "cfdp-tool",
		Short:         "Create and inspect CFDP PDUs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			conf.Logging.apply()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(
		&configFile,
		"config",
		"c",
		"",
		"TOML configuration file with a [logging] block",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&rawOutput,
		"raw",
		"r",
		false,
		"Print compact JSON without colors",
	)

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newHexCmd())

	return rootCmd
}

func main() {
	rootCmd := newRootCmd()
	if cmd, err := rootCmd.ExecuteC(); err != nil {
		logErrorCmd(cmd, err)
		os.Exit(1)
	}
}
