// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

// rawOutput disables the colored JSON output.
var rawOutput bool

// logJSONCmd prints v as JSON to the command's output.
func logJSONCmd(cmd *cobra.Command, v interface{}) error {
	m, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if rawOutput {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(m))
		return err
	}

	pj, err := prettyjson.Format(m)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(pj))
	return err
}

// logErrorCmd prints err to the command's error output.
func logErrorCmd(cmd *cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	_, _ = boldRed.Fprintf(cmd.ErrOrStderr(), "error: ")

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", color.RedString(err.Error()))
}

// readInput reads all data from a file or, for "-", from the command's input.
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

// writeOutput writes data to a file or, for "-", to the command's output.
func writeOutput(cmd *cobra.Command, name string, data []byte) error {
	if name == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(name, data, 0644)
}
