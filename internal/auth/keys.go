// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultKeyBits is the RSA modulus size keygen uses and the smallest one
// DecodeKeyPair accepts.
const DefaultKeyBits = 2048

// KeyPair is the RSA key pair sessions are signed and verified with.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// DecodeKeyPair parses base64-encoded PEM keys as they appear in the
// configuration. The public key must belong to the private key.
func DecodeKeyPair(privateB64, publicB64 string) (*KeyPair, error) {
	privatePEM, err := base64.StdEncoding.DecodeString(privateB64)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("key", "private_key").Wrapf(err, "private key is not valid base64")
	}
	publicPEM, err := base64.StdEncoding.DecodeString(publicB64)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("key", "public_key").Wrapf(err, "public key is not valid base64")
	}

	private, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("key", "private_key").Wrapf(err, "private key is not an RSA PEM key")
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("key", "public_key").Wrapf(err, "public key is not an RSA PEM key")
	}
	if bits := private.N.BitLen(); bits < DefaultKeyBits {
		return nil, oops.Code("CONFIG_INVALID").
			With("bits", bits).
			Errorf("signing key must be at least %d bits", DefaultKeyBits)
	}
	if !private.PublicKey.Equal(public) {
		return nil, oops.Code("CONFIG_INVALID").Errorf("public key does not match private key")
	}

	return &KeyPair{Private: private, Public: public}, nil
}

// GenerateKeyPair creates a new RSA key pair and returns it base64-encoded
// in the same form DecodeKeyPair accepts.
func GenerateKeyPair(bits int) (privateB64, publicB64 string, err error) {
	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", oops.Code("KEYGEN_FAILED").With("bits", bits).Wrap(err)
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return "", "", oops.Code("KEYGEN_FAILED").Wrap(err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return "", "", oops.Code("KEYGEN_FAILED").Wrap(err)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateDER})
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	return base64.StdEncoding.EncodeToString(privatePEM), base64.StdEncoding.EncodeToString(publicPEM), nil
}
