// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

// Package password validates candidate passwords against composition rules
// and, optionally, a database of known-compromised passwords.
package password

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/circlehub/circle/pkg/errutil"
)

// Violation reasons, in the order the rules are checked.
const (
	ReasonTooShort  = "password is too short"
	ReasonTooLong   = "password is too long"
	ReasonLowercase = "please use lowercase characters in your password"
	ReasonUppercase = "please use uppercase characters in your password"
	ReasonNumbers   = "please use numbers in your password"
	ReasonSpecial   = "please use special characters in your password"
	ReasonBreached  = "password appears in a known data breach"
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	numbersRegex   = regexp.MustCompile(`[0-9]`)
	specialRegex   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Policy is the set of composition rules a password must satisfy.
// Lengths count characters, not bytes.
type Policy struct {
	MinLength           int    `koanf:"min_length" jsonschema:"minimum=1"`
	MaxLength           int    `koanf:"max_length" jsonschema:"minimum=1"`
	Lowercase           bool   `koanf:"lowercase"`
	Uppercase           bool   `koanf:"uppercase"`
	Numbers             bool   `koanf:"numbers"`
	Special             bool   `koanf:"special"`
	CheckBreachDatabase bool   `koanf:"check_breach_database"`
	BreachAPIURL        string `koanf:"breach_api_url"`
}

// DefaultPolicy returns the policy used when no configuration overrides it.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:    8,
		MaxLength:    128,
		Lowercase:    true,
		Uppercase:    true,
		Numbers:      true,
		Special:      true,
		BreachAPIURL: DefaultBreachAPIURL,
	}
}

// Validate checks the policy itself for contradictions.
func (p Policy) Validate() error {
	if p.MinLength < 1 {
		return oops.Code("CONFIG_INVALID").With("min_length", p.MinLength).Errorf("password min_length must be at least 1")
	}
	if p.MaxLength < p.MinLength {
		return oops.Code("CONFIG_INVALID").
			With("min_length", p.MinLength).
			With("max_length", p.MaxLength).
			Errorf("password max_length must not be below min_length")
	}
	if p.CheckBreachDatabase && p.BreachAPIURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("password breach_api_url is required when check_breach_database is enabled")
	}
	return nil
}

// Check runs the composition rules in a fixed order (minimum length, maximum
// length, lowercase, uppercase, numbers, special characters) and returns a
// WeakPassword error for the first one violated. The breach database is not
// consulted here; see Validator.
func (p Policy) Check(password string) error {
	if reason := p.violation(password); reason != "" {
		return errutil.WeakPassword(reason)
	}
	return nil
}

func (p Policy) violation(password string) string {
	length := utf8.RuneCountInString(password)
	switch {
	case length < p.MinLength:
		return ReasonTooShort
	case length > p.MaxLength:
		return ReasonTooLong
	case p.Lowercase && !lowercaseRegex.MatchString(password):
		return ReasonLowercase
	case p.Uppercase && !uppercaseRegex.MatchString(password):
		return ReasonUppercase
	case p.Numbers && !numbersRegex.MatchString(password):
		return ReasonNumbers
	case p.Special && !specialRegex.MatchString(strings.TrimSpace(password)):
		return ReasonSpecial
	}
	return ""
}

// Validator applies a Policy and, when the policy asks for it, a breach lookup.
type Validator struct {
	policy   Policy
	breaches BreachChecker
}

// NewValidator creates a Validator. breaches may be nil unless the policy
// enables CheckBreachDatabase.
func NewValidator(policy Policy, breaches BreachChecker) (*Validator, error) {
	if policy.CheckBreachDatabase && breaches == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("breach checker is required when check_breach_database is enabled")
	}
	return &Validator{policy: policy, breaches: breaches}, nil
}

// Validate checks password against the composition rules and then, if
// enabled, the breach database. A lookup failure is a Server error.
func (v *Validator) Validate(ctx context.Context, password string) error {
	if err := v.policy.Check(password); err != nil {
		return err
	}
	if !v.policy.CheckBreachDatabase {
		return nil
	}

	breached, err := v.breaches.Breached(ctx, password)
	if err != nil {
		return errutil.Internal("breach database lookup", err)
	}
	if breached {
		return errutil.WeakPassword(ReasonBreached)
	}
	return nil
}
