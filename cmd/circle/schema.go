// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/circlehub/circle/internal/config"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var events bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print a JSON Schema",
		Long: `Print the JSON Schema of the configuration file, or with --events the
schema of the payloads sent on event streams.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generate := config.GenerateSchema
			if events {
				generate = config.GenerateEventSchema
			}

			data, err := generate()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&events, "events", false, "print the event payload schema instead")
	return cmd
}
