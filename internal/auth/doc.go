// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package auth provides credential hashing, session tokens, and the account
// registration and login flows built on them.
//
// # Credentials
//
// Passwords are hashed with argon2id under configurable HashParams and stored
// as PHC strings next to their salt. Verification reads the cost parameters
// back from the stored hash, so changing the configuration does not lock out
// existing accounts; Service.Login rehashes them on the next successful login.
//
// # Sessions
//
// Sessions are stateless RS256 JWTs. The private key signs, the public key
// verifies, and nothing is stored server-side: a token is honoured until its
// expiry and cannot be revoked earlier.
//
// # Errors
//
// Every failure carries an errutil kind. Hashing and signing failures are
// KindServer and their detail is for logs only.
package auth
