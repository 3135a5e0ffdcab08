// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"

	"github.com/circlehub/circle/pkg/errutil"
)

// HashParams are the argon2id cost parameters and salt settings.
// MemoryCost is in KiB. Secret, when set, is a server-side pepper mixed into
// every password before hashing.
type HashParams struct {
	MemoryCost uint32 `koanf:"memory_cost" jsonschema:"minimum=8"`
	TimeCost   uint32 `koanf:"time_cost" jsonschema:"minimum=1"`
	Length     uint32 `koanf:"length" jsonschema:"minimum=16"`
	Lanes      uint8  `koanf:"lanes" jsonschema:"minimum=1"`
	SaltLength int    `koanf:"salt_length" jsonschema:"minimum=8"`
	Secret     string `koanf:"secret"`
}

// DefaultHashParams returns OWASP-recommended argon2id parameters.
func DefaultHashParams() HashParams {
	return HashParams{
		MemoryCost: 64 * 1024,
		TimeCost:   1,
		Length:     32,
		Lanes:      4,
		SaltLength: 16,
	}
}

// Validate rejects parameters argon2 cannot work with.
func (p HashParams) Validate() error {
	switch {
	case p.TimeCost < 1:
		return oops.Code("CONFIG_INVALID").Errorf("hashing time_cost must be at least 1")
	case p.Lanes < 1:
		return oops.Code("CONFIG_INVALID").Errorf("hashing lanes must be at least 1")
	case p.MemoryCost < 8*uint32(p.Lanes):
		return oops.Code("CONFIG_INVALID").
			With("memory_cost", p.MemoryCost).
			With("lanes", p.Lanes).
			Errorf("hashing memory_cost must be at least 8 KiB per lane")
	case p.Length < 16:
		return oops.Code("CONFIG_INVALID").Errorf("hashing length must be at least 16 bytes")
	case p.SaltLength < 8:
		return oops.Code("CONFIG_INVALID").Errorf("hashing salt_length must be at least 8 bytes")
	}
	return nil
}

// PasswordHasher derives and verifies salted password hashes.
type PasswordHasher interface {
	// Hash derives a hash of password under a freshly generated salt.
	// Both are returned in encoded form for storage.
	Hash(password string) (hash, salt string, err error)

	// Verify recomputes the hash of password under the stored parameters and
	// salt. Returns (true, nil) on match, (false, nil) on mismatch, or an
	// error if the stored hash cannot be parsed.
	Verify(password, hash, salt string) (bool, error)

	// NeedsUpgrade reports whether hash was produced with other parameters
	// than the hasher currently uses.
	NeedsUpgrade(hash string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id and PHC-encoded hashes.
type Argon2idHasher struct {
	params HashParams
}

// NewArgon2idHasher creates a hasher with the given parameters.
func NewArgon2idHasher(params HashParams) (*Argon2idHasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Argon2idHasher{params: params}, nil
}

// Hash produces a PHC-encoded argon2id hash of password and the salt used.
func (h *Argon2idHasher) Hash(password string) (string, string, error) {
	if password == "" {
		return "", "", errutil.BadRequest("password cannot be empty")
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", "", errutil.Internal("generate salt", err)
	}

	key := argon2.IDKey(h.pepper(password), salt, h.params.TimeCost, h.params.MemoryCost, h.params.Lanes, h.params.Length)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryCost,
		h.params.TimeCost,
		h.params.Lanes,
		encodedSalt,
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, encodedSalt, nil
}

// Verify checks password against a stored hash and salt.
func (h *Argon2idHasher) Verify(password, encodedHash, salt string) (bool, error) {
	phc, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	if phc.encodedSalt != salt {
		return false, invalidHash("stored salt does not match hash")
	}

	computed := argon2.IDKey(h.pepper(password), phc.salt, phc.time, phc.memory, phc.lanes, uint32(len(phc.key)))
	return subtle.ConstantTimeCompare(computed, phc.key) == 1, nil
}

// NeedsUpgrade reports whether encodedHash differs from the current parameters.
func (h *Argon2idHasher) NeedsUpgrade(encodedHash string) bool {
	phc, err := parsePHC(encodedHash)
	if err != nil {
		return true
	}
	return phc.memory != h.params.MemoryCost ||
		phc.time != h.params.TimeCost ||
		phc.lanes != h.params.Lanes ||
		uint32(len(phc.key)) != h.params.Length ||
		len(phc.salt) != h.params.SaltLength
}

func (h *Argon2idHasher) pepper(password string) []byte {
	if h.params.Secret == "" {
		return []byte(password)
	}
	mac := hmac.New(sha256.New, []byte(h.params.Secret))
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

type phcHash struct {
	memory      uint32
	time        uint32
	lanes       uint8
	encodedSalt string
	salt        []byte
	key         []byte
}

func invalidHash(reason string) error {
	return oops.Code(string(errutil.KindServer)).With("reason", reason).Errorf("invalid hash: %s", reason)
}

func parsePHC(encodedHash string) (*phcHash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, invalidHash("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, invalidHash("unsupported hash algorithm " + parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, invalidHash("unsupported argon2 version")
	}

	var memory, time, lanes uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &lanes); err != nil {
		return nil, invalidHash("invalid parameters")
	}
	if lanes == 0 || lanes > 255 {
		return nil, invalidHash(fmt.Sprintf("lanes value %d out of range", lanes))
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, invalidHash("invalid salt encoding")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, invalidHash("invalid key encoding")
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return nil, invalidHash(fmt.Sprintf("invalid key length %d", len(key)))
	}

	return &phcHash{
		memory:      memory,
		time:        time,
		lanes:       uint8(lanes),
		encodedSalt: parts[4],
		salt:        salt,
		key:         key,
	}, nil
}
