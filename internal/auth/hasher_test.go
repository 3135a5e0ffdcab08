// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circlehub/circle/internal/auth"
	"github.com/circlehub/circle/pkg/errutil"
)

func TestHashParams_Validate(t *testing.T) {
	require.NoError(t, auth.DefaultHashParams().Validate())
	require.NoError(t, cheapParams().Validate())

	tests := []struct {
		name   string
		mutate func(*auth.HashParams)
	}{
		{"zero time cost", func(p *auth.HashParams) { p.TimeCost = 0 }},
		{"zero lanes", func(p *auth.HashParams) { p.Lanes = 0 }},
		{"memory below 8 KiB per lane", func(p *auth.HashParams) { p.Lanes = 16; p.MemoryCost = 64 }},
		{"short output", func(p *auth.HashParams) { p.Length = 8 }},
		{"short salt", func(p *auth.HashParams) { p.SaltLength = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cheapParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
			_, err := auth.NewArgon2idHasher(p)
			assert.Error(t, err)
		})
	}
}

func TestArgon2idHasher_Hash(t *testing.T) {
	hasher := newHasher(t)

	t.Run("produces PHC hash embedding the salt", func(t *testing.T) {
		hash, salt, err := hasher.Hash("Str0ng!Pass")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"))
		assert.Contains(t, hash, "$"+salt+"$")
	})

	t.Run("same password produces different hashes and salts", func(t *testing.T) {
		hash1, salt1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, salt2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
		assert.NotEqual(t, salt1, salt2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, _, err := hasher.Hash("")
		errutil.AssertKind(t, err, errutil.KindBadRequest)
	})
}

func TestArgon2idHasher_Verify(t *testing.T) {
	hasher := newHasher(t)
	hash, salt, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		ok, err := hasher.Verify("correctpassword", hash, salt)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		ok, err := hasher.Verify("wrongpassword", hash, salt)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("mismatched salt is an internal error", func(t *testing.T) {
		_, err := hasher.Verify("correctpassword", hash, "AAAAAAAAAAAAAAAAAAAAAA")
		errutil.AssertKind(t, err, errutil.KindServer)
	})

	malformed := []struct {
		name string
		hash string
	}{
		{"invalid format", "not-a-valid-hash"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"invalid version", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"invalid parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid salt base64", "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA"},
		{"invalid hash base64", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!"},
		{"lanes overflow", "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hasher.Verify("password", tt.hash, "c2FsdA")
			errutil.AssertKind(t, err, errutil.KindServer)
		})
	}
}

func TestArgon2idHasher_Pepper(t *testing.T) {
	peppered := cheapParams()
	peppered.Secret = "server-side-pepper"
	withSecret, err := auth.NewArgon2idHasher(peppered)
	require.NoError(t, err)

	hash, salt, err := withSecret.Hash("Str0ng!Pass")
	require.NoError(t, err)

	ok, err := withSecret.Verify("Str0ng!Pass", hash, salt)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same parameters without the secret must not verify.
	ok, err = newHasher(t).Verify("Str0ng!Pass", hash, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2idHasher_NeedsUpgrade(t *testing.T) {
	hasher := newHasher(t)
	hash, _, err := hasher.Hash("password")
	require.NoError(t, err)
	assert.False(t, hasher.NeedsUpgrade(hash))

	stronger := cheapParams()
	stronger.TimeCost = 2
	upgraded, err := auth.NewArgon2idHasher(stronger)
	require.NoError(t, err)
	assert.True(t, upgraded.NeedsUpgrade(hash))

	assert.True(t, hasher.NeedsUpgrade("$2a$10$N9qo8uLOickgx2ZMRZoMyeIvNq.Uf3hE9tQALNP1Qn9sNp5x5x5x5"))
}
