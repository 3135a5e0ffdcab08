// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/circlehub/circle/internal/auth"
)

// cheapParams keeps argon2 fast enough for unit tests.
func cheapParams() auth.HashParams {
	return auth.HashParams{
		MemoryCost: 64,
		TimeCost:   1,
		Length:     16,
		Lanes:      1,
		SaltLength: 16,
	}
}

func newHasher(t *testing.T) *auth.Argon2idHasher {
	t.Helper()
	h, err := auth.NewArgon2idHasher(cheapParams())
	require.NoError(t, err)
	return h
}

var encodedKeys = sync.OnceValues(func() ([2]string, error) {
	private, public, err := auth.GenerateKeyPair(auth.DefaultKeyBits)
	return [2]string{private, public}, err
})

// testKeys returns a key pair shared by every test in the package.
func testKeys(t *testing.T) (*auth.KeyPair, string, string) {
	t.Helper()
	encoded, err := encodedKeys()
	require.NoError(t, err)
	keys, err := auth.DecodeKeyPair(encoded[0], encoded[1])
	require.NoError(t, err)
	return keys, encoded[0], encoded[1]
}

// generateOtherKeys returns a small key pair unrelated to testKeys.
func generateOtherKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	private, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return private, &private.PublicKey
}
