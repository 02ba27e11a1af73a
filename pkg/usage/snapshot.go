// Package usage discovers the caller's plan limits from the /usage endpoint.
// The snapshot it produces bounds batch concurrency and gates batches that
// would exceed the remaining credit balance.
package usage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedUsage is returned when a /usage body cannot be decoded or lacks
// a usable concurrency limit.
var ErrMalformedUsage = errors.New("malformed usage response")

// Upper bound for a plausible concurrency value.
const maxPlausibleConcurrency = 10000

// Keys probed for the concurrency limit, in order.
var concurrencyKeys = []string{
	"max_concurrency",
	"max_concurrent_requests",
	"concurrent_request_limit",
	"concurrency",
	"concurrent_requests",
}

// Keys probed for the remaining credit balance, in order.
var creditKeys = []string{
	"credits",
	"available_credits",
	"credit_balance",
	"balance",
	"credits_remaining",
	"remaining_credits",
}

// Snapshot is the account state at the time of the probe.
type Snapshot struct {
	// MaxConcurrency is the plan's concurrent request limit. Always >= 1.
	MaxConcurrency int `json:"max_concurrency"`

	// CreditBalance is the remaining credit balance, or nil when the account
	// reports none. A nil balance disables the credit check.
	CreditBalance *int `json:"credit_balance,omitempty"`
}

// HasCreditFor reports whether the balance covers n requests.
func (s Snapshot) HasCreditFor(n int) bool {
	return s.CreditBalance == nil || *s.CreditBalance >= n
}

// Parse extracts a Snapshot from a /usage response body.
func Parse(body []byte) (Snapshot, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedUsage, err)
	}

	var snap Snapshot
	for _, key := range concurrencyKeys {
		if v, ok := number(fields[key]); ok && v > 0 && v <= maxPlausibleConcurrency {
			snap.MaxConcurrency = int(v)
			break
		}
	}
	if snap.MaxConcurrency == 0 {
		return Snapshot{}, fmt.Errorf("%w: no concurrency limit", ErrMalformedUsage)
	}

	snap.CreditBalance = creditBalance(fields)
	return snap, nil
}

func creditBalance(fields map[string]any) *int {
	for _, key := range creditKeys {
		if v, ok := number(fields[key]); ok && v >= 0 {
			n := int(v)
			return &n
		}
	}

	maxCredit, okMax := number(fields["max_api_credit"])
	used, okUsed := number(fields["used_api_credit"])
	if okMax && okUsed && maxCredit-used >= 0 {
		n := int(maxCredit - used)
		return &n
	}
	return nil
}

func number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
