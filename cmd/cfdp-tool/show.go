// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dtn7/cfdp-go/pkg/cfdp"
)

// showPdu parses an encoded PDU and prints it as JSON.
func showPdu(cmd *cobra.Command, data []byte) error {
	pdu, err := cfdp.ParsePdu(data)
	if err != nil {
		log.WithError(err).WithField("length", len(data)).Debug("Parsing PDU failed")
		return fmt.Errorf("parsing PDU: %w", err)
	}

	return logJSONCmd(cmd, pdu)
}

// newShowCmd for the "show" CLI option.
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <input|->",
		Short: "Print an encoded PDU as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("reading PDU: %w", err)
			}
			return showPdu(cmd, data)
		},
	}
}

// newHexCmd for the "hex" CLI option.
func newHexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hex <input|->",
		Short: "Print a hex encoded PDU as JSON",
		Long: "Like show, but the PDU is given as hexadecimal text. Whitespace\n" +
			"between the digits is ignored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("reading hex: %w", err)
			}

			data, err := hex.DecodeString(strings.Join(strings.Fields(string(text)), ""))
			if err != nil {
				return fmt.Errorf("decoding hex: %w", err)
			}
			return showPdu(cmd, data)
		},
	}
}
