package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyApplyDefaults(t *testing.T) {
	p := &Policy{MaxAttempts: 3}
	p.ApplyDefaults()

	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 2.0, p.BackoffMultiplier)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	// Booleans are taken as-is.
	assert.False(t, p.ExponentialBackoff)
	assert.False(t, p.LogAttempts)
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		ok     bool
	}{
		{"defaults", *DefaultPolicy(), true},
		{"zero attempts", Policy{InitialDelay: time.Second, BackoffMultiplier: 2, MaxDelay: time.Minute}, false},
		{"zero delay", Policy{MaxAttempts: 3, BackoffMultiplier: 2, MaxDelay: time.Minute}, false},
		{"multiplier below one", Policy{MaxAttempts: 3, InitialDelay: time.Second, BackoffMultiplier: 0.5, MaxDelay: time.Minute}, false},
		{"max delay below initial", Policy{MaxAttempts: 3, InitialDelay: time.Minute, BackoffMultiplier: 2, MaxDelay: time.Second}, false},
		{"multiplier of one", Policy{MaxAttempts: 1, InitialDelay: time.Second, BackoffMultiplier: 1, MaxDelay: time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
