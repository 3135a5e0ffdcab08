// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Circle CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circle",
		Short: "Circle - accounts, friends, and live notifications",
		Long: `Circle is a small social backend: account registration with signed
sessions, a friend request workflow, and per-account event streams.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewKeygenCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
