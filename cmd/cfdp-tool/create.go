// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newCreateCmd for the "create" CLI option.
func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <description.toml|-> <output|->",
		Short: "Create a PDU from a TOML description",
		Long: "Creates a PDU as described by a TOML file or stdin (-) and writes\n" +
			"its encoded form to the output file or stdout (-).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]

			descData, err := readInput(cmd, input)
			if err != nil {
				return fmt.Errorf("reading description: %w", err)
			}

			desc, err := parseDescription(string(descData))
			if err != nil {
				return fmt.Errorf("parsing description: %w", err)
			}

			pdu, err := desc.pdu()
			if err != nil {
				return fmt.Errorf("building PDU: %w", err)
			}

			data, err := pdu.MarshalBinary()
			if err != nil {
				return fmt.Errorf("encoding PDU: %w", err)
			}

			if err := writeOutput(cmd, output, data); err != nil {
				return fmt.Errorf("writing PDU: %w", err)
			}

			log.WithFields(log.Fields{
				"pdu":    pdu,
				"length": len(data),
				"output": output,
			}).Debug("Created PDU")
			return nil
		},
	}
}
