// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package password

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // G505: SHA-1 is what the range API is keyed by, not a security primitive here.
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DefaultBreachAPIURL is the Have I Been Pwned password range API.
const DefaultBreachAPIURL = "https://api.pwnedpasswords.com"

// Breach lookup retry settings.
const (
	breachRetryBase    = 100 * time.Millisecond
	breachMaxRetries   = 3
	breachLookupBudget = 5 * time.Second
)

// BreachChecker reports whether a password is known to be compromised.
type BreachChecker interface {
	Breached(ctx context.Context, password string) (bool, error)
}

// HIBPChecker queries a k-anonymity password range API. Only the first five
// hex characters of the password's SHA-1 digest leave the process.
type HIBPChecker struct {
	baseURL string
	client  *http.Client
	backoff func() retry.Backoff
}

// HIBPOption configures an HIBPChecker.
type HIBPOption func(*HIBPChecker)

// WithHTTPClient replaces the HTTP client used for lookups.
func WithHTTPClient(client *http.Client) HIBPOption {
	return func(c *HIBPChecker) {
		c.client = client
	}
}

// WithBackoff replaces the retry policy. Each lookup calls newBackoff once.
func WithBackoff(newBackoff func() retry.Backoff) HIBPOption {
	return func(c *HIBPChecker) {
		c.backoff = newBackoff
	}
}

// NewHIBPChecker creates a checker against baseURL, for example DefaultBreachAPIURL.
func NewHIBPChecker(baseURL string, opts ...HIBPOption) *HIBPChecker {
	c := &HIBPChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: breachLookupBudget},
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(breachMaxRetries, retry.NewExponential(breachRetryBase))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breached looks the password up in the range API. Transport failures and
// 5xx/429 responses are retried; other non-200 responses fail immediately.
func (c *HIBPChecker) Breached(ctx context.Context, password string) (bool, error) {
	sum := sha1.Sum([]byte(password)) //nolint:gosec // see import
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	var breached bool
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		found, err := c.lookup(ctx, prefix, suffix)
		if err != nil {
			return err
		}
		breached = found
		return nil
	})
	if err != nil {
		return false, oops.Code("BREACH_LOOKUP_FAILED").With("prefix", prefix).Wrap(err)
	}
	return breached, nil
}

func (c *HIBPChecker) lookup(ctx context.Context, prefix, suffix string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/range/"+prefix, nil)
	if err != nil {
		return false, oops.Wrap(err)
	}
	req.Header.Set("Add-Padding", "true")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, retry.RetryableError(oops.Wrap(err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return false, retry.RetryableError(oops.With("status", resp.StatusCode).Errorf("breach api unavailable"))
	default:
		return false, oops.With("status", resp.StatusCode).Errorf("unexpected breach api response")
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		candidate, countText, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(candidate, suffix) {
			continue
		}
		// Padding entries carry a zero count.
		count, err := strconv.Atoi(countText)
		return err == nil && count > 0, nil
	}
	if err := scanner.Err(); err != nil {
		return false, retry.RetryableError(oops.Wrap(err))
	}
	return false, nil
}
