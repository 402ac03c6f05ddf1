package retry

import (
	"fmt"
	"time"
)

// Policy configures one retry session. A Policy is read-only once handed to
// an engine and may be shared across many concurrent sessions.
type Policy struct {
	// MaxAttempts is the total number of producer invocations allowed,
	// including the first. Default: 5.
	MaxAttempts int `koanf:"max_attempts"`

	// InitialDelay is the wait after the first failed attempt. Default: 1s.
	InitialDelay time.Duration `koanf:"initial_delay"`

	// ExponentialBackoff grows the delay by BackoffMultiplier after each
	// wait when true; otherwise every wait uses InitialDelay. Default: true.
	ExponentialBackoff bool `koanf:"exponential_backoff"`

	// BackoffMultiplier is the growth factor applied between waits.
	// Must be >= 1. Default: 2.0.
	BackoffMultiplier float64 `koanf:"backoff_multiplier"`

	// MaxDelay caps the backoff delay. Default: 30s.
	MaxDelay time.Duration `koanf:"max_delay"`

	// LogAttempts emits per-attempt log lines (attempt number, truncated
	// error list) when true.
	LogAttempts bool `koanf:"log_attempts"`
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:        5,
		InitialDelay:       time.Second,
		ExponentialBackoff: true,
		BackoffMultiplier:  2.0,
		MaxDelay:           30 * time.Second,
		LogAttempts:        true,
	}
}

// ApplyDefaults fills unset numeric fields from DefaultPolicy. Boolean fields
// are taken as-is: a zero-valued Policy disables exponential backoff and
// attempt logging, use DefaultPolicy when the defaults are wanted.
func (p *Policy) ApplyDefaults() {
	defaults := DefaultPolicy()

	if p.MaxAttempts == 0 {
		p.MaxAttempts = defaults.MaxAttempts
	}
	if p.InitialDelay == 0 {
		p.InitialDelay = defaults.InitialDelay
	}
	if p.BackoffMultiplier == 0 {
		p.BackoffMultiplier = defaults.BackoffMultiplier
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = defaults.MaxDelay
	}
}

// Validate checks the policy for usable values.
func (p *Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.InitialDelay <= 0 {
		return fmt.Errorf("initial delay must be > 0, got %s", p.InitialDelay)
	}
	if p.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff multiplier must be >= 1, got %g", p.BackoffMultiplier)
	}
	if p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("max delay %s must be >= initial delay %s", p.MaxDelay, p.InitialDelay)
	}
	return nil
}

// clone returns a copy so the engine's view cannot be mutated by the caller
// after construction.
func (p *Policy) clone() *Policy {
	c := *p
	return &c
}
