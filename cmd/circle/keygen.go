// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/circlehub/circle/internal/auth"
)

type keygenOutput struct {
	Auth struct {
		PrivateKey string `yaml:"private_key"`
		PublicKey  string `yaml:"public_key"`
	} `yaml:"auth"`
}

// NewKeygenCmd creates the keygen subcommand.
func NewKeygenCmd() *cobra.Command {
	var bits int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a session signing key pair",
		Long: `Generate an RSA key pair for signing session tokens and print it as
a YAML snippet to merge into the configuration file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bits < auth.DefaultKeyBits {
				return oops.Code("KEYGEN_FAILED").With("bits", bits).Errorf("key size must be at least %d bits", auth.DefaultKeyBits)
			}

			privateB64, publicB64, err := auth.GenerateKeyPair(bits)
			if err != nil {
				return err
			}

			var out keygenOutput
			out.Auth.PrivateKey = privateB64
			out.Auth.PublicKey = publicB64

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return oops.Code("KEYGEN_FAILED").Wrap(err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().IntVar(&bits, "bits", auth.DefaultKeyBits, "RSA key size in bits")
	return cmd
}
