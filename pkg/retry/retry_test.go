package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/genvalid/pkg/validation"
)

// newTestEngine builds an engine whose sleeps are recorded instead of slept.
func newTestEngine(t *testing.T, p *Policy) (*Engine, *[]time.Duration) {
	t.Helper()
	e, err := NewEngine(p, zap.NewNop())
	require.NoError(t, err)

	sleeps := &[]time.Duration{}
	e.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return ctx.Err()
	}
	return e, sleeps
}

// failingValidator rejects everything with a fixed violation list.
func failingValidator(violations ...string) Validator[string] {
	return func(string) validation.Outcome {
		return validation.Outcome{Passed: false, Errors: violations}
	}
}

// passingValidator accepts everything.
func passingValidator(string) validation.Outcome {
	return validation.Outcome{Passed: true}
}

func TestDoSucceedsOnThirdAttempt(t *testing.T) {
	e, sleeps := newTestEngine(t, &Policy{
		MaxAttempts:        5,
		InitialDelay:       10 * time.Millisecond,
		ExponentialBackoff: true,
		BackoffMultiplier:  2.0,
		MaxDelay:           time.Second,
	})

	calls := 0
	produce := func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "tbd", nil
		}
		return "a perfectly valid premise", nil
	}
	validate := func(candidate string) validation.Outcome {
		return validation.ValidateContent(candidate, "premise", validation.DefaultMinLength, false)
	}

	result, err := Do(context.Background(), e, "premise", produce, validate)

	require.NoError(t, err)
	assert.Equal(t, "a perfectly valid premise", result)
	assert.Equal(t, 3, calls)
	require.Len(t, *sleeps, 2)
	assert.GreaterOrEqual(t, (*sleeps)[1], (*sleeps)[0])
}

func TestDoExhaustsRetries(t *testing.T) {
	e, sleeps := newTestEngine(t, &Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	calls := 0
	produce := func(ctx context.Context) (string, error) {
		calls++
		return fmt.Sprintf("candidate %d", calls), nil
	}
	validate := func(candidate string) validation.Outcome {
		return validation.Outcome{
			Passed: false,
			Errors: []string{fmt.Sprintf("body: %s rejected", candidate)},
		}
	}

	_, err := Do(context.Background(), e, "episode-outline", produce, validate)

	require.Error(t, err)
	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, 3, terminal.Attempts)
	assert.Equal(t, 3, calls)
	assert.Len(t, *sleeps, 2)

	// Only the last attempt's violations survive; earlier attempts are
	// overwritten, not appended.
	require.Len(t, terminal.Errors, 1)
	assert.Contains(t, terminal.Errors[0], "candidate 3")
	assert.NotContains(t, err.Error(), "candidate 1")
	assert.NotContains(t, err.Error(), "candidate 2")

	msg := err.Error()
	assert.Contains(t, msg, "episode-outline")
	assert.Contains(t, msg, "3 attempts")
	assert.Contains(t, msg, "possible causes")
}

func TestDoParseErrorIsRetryable(t *testing.T) {
	e, sleeps := newTestEngine(t, &Policy{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
	})

	calls := 0
	produce := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewParseError("json", errors.New("unexpected end of input"))
		}
		return "a perfectly valid premise", nil
	}

	result, err := Do(context.Background(), e, "premise", produce, passingValidator)

	require.NoError(t, err)
	assert.Equal(t, "a perfectly valid premise", result)
	assert.Equal(t, 2, calls)
	assert.Len(t, *sleeps, 1)
}

func TestDoParseErrorExhaustion(t *testing.T) {
	e, _ := newTestEngine(t, &Policy{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
	})

	produce := func(ctx context.Context) (string, error) {
		return "", NewParseError("json", errors.New("invalid character '<'"))
	}

	_, err := Do(context.Background(), e, "premise", produce, passingValidator)

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	require.Len(t, terminal.Errors, 1)
	assert.Contains(t, terminal.Errors[0], "malformed structured payload")
}

func TestDoNonRecoverableErrorPropagatesImmediately(t *testing.T) {
	e, sleeps := newTestEngine(t, &Policy{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
	})

	authErr := errors.New("authentication failed")
	calls := 0
	produce := func(ctx context.Context) (string, error) {
		calls++
		return "", authErr
	}

	_, err := Do(context.Background(), e, "premise", produce, failingValidator("unused"))

	require.ErrorIs(t, err, authErr)
	assert.False(t, IsTerminalError(err))
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
}

func TestDoCancelledBeforeFirstAttempt(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	produce := func(ctx context.Context) (string, error) {
		calls++
		return "never validated", nil
	}

	_, err := Do(ctx, e, "premise", produce, passingValidator)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDoCancelledDuringWait(t *testing.T) {
	e, err := NewEngine(&Policy{MaxAttempts: 5, InitialDelay: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	calls := 0
	produce := func(ctx context.Context) (string, error) {
		calls++
		return "still invalid", nil
	}

	_, doErr := Do(context.Background(), e, "premise", produce, failingValidator("body: rejected"))

	require.ErrorIs(t, doErr, context.Canceled)
	assert.False(t, IsTerminalError(doErr))
	assert.Equal(t, 1, calls)
}

func TestDoBackoffProgressionAndCap(t *testing.T) {
	e, sleeps := newTestEngine(t, &Policy{
		MaxAttempts:        6,
		InitialDelay:       100 * time.Millisecond,
		ExponentialBackoff: true,
		BackoffMultiplier:  3.0,
		MaxDelay:           500 * time.Millisecond,
	})

	produce := func(ctx context.Context) (string, error) { return "x", nil }

	_, err := Do(context.Background(), e, "premise", produce, failingValidator("rejected"))
	require.Error(t, err)

	// 100ms, 300ms, then capped at 500ms.
	want := []time.Duration{
		100 * time.Millisecond,
		300 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}
	assert.Equal(t, want, *sleeps)
}

func TestDoConstantDelayWithoutExponentialBackoff(t *testing.T) {
	e, sleeps := newTestEngine(t, &Policy{
		MaxAttempts:        3,
		InitialDelay:       50 * time.Millisecond,
		ExponentialBackoff: false,
		BackoffMultiplier:  2.0,
	})

	produce := func(ctx context.Context) (string, error) { return "x", nil }

	_, err := Do(context.Background(), e, "premise", produce, failingValidator("rejected"))
	require.Error(t, err)

	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, *sleeps)
}

func TestDoCapsReportedErrors(t *testing.T) {
	e, _ := newTestEngine(t, &Policy{MaxAttempts: 1, InitialDelay: time.Millisecond})

	violations := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		violations = append(violations, fmt.Sprintf("field[%d]: content is empty", i))
	}
	// Duplicates do not count against the cap.
	violations = append(violations, violations[0])

	produce := func(ctx context.Context) (string, error) { return "x", nil }

	_, err := Do(context.Background(), e, "premise", produce, failingValidator(violations...))

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Len(t, terminal.Errors, 10)
	assert.Equal(t, violations[:10], terminal.Errors)
}

func TestWrapRunsFullSession(t *testing.T) {
	e, _ := newTestEngine(t, &Policy{MaxAttempts: 3, InitialDelay: time.Millisecond})

	calls := 0
	wrapped := Wrap(e, "character-names", func(ctx context.Context) ([]string, error) {
		calls++
		if calls < 2 {
			return []string{"Protagonist"}, nil
		}
		return []string{"Mara Voss", "Ira Thorn"}, nil
	}, func(names []string) validation.Outcome {
		return validation.ValidateNameList(names, validation.NameCategoryCharacter)
	})

	names, err := wrapped(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Mara Voss", "Ira Thorn"}, names)
	assert.Equal(t, 2, calls)
}

func TestWrapDefaultsNameToFunctionIdentifier(t *testing.T) {
	e, _ := newTestEngine(t, &Policy{MaxAttempts: 1, InitialDelay: time.Millisecond})

	wrapped := Wrap(e, "", func(ctx context.Context) (string, error) {
		return "x", nil
	}, failingValidator("rejected"))

	_, err := wrapped(context.Background())

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.NotEmpty(t, terminal.Context)
}

func TestDoRequiresEngineProducerValidator(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	_, err := Do[string](context.Background(), nil, "x", nil, nil)
	assert.Error(t, err)

	_, err = Do[string](context.Background(), e, "x", nil, passingValidator)
	assert.Error(t, err)

	_, err = Do[string](context.Background(), e, "x", func(ctx context.Context) (string, error) { return "", nil }, nil)
	assert.Error(t, err)
}

func TestNewEngineDefaults(t *testing.T) {
	e, err := NewEngine(nil, nil)
	require.NoError(t, err)

	p := e.Policy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.True(t, p.ExponentialBackoff)
	assert.Equal(t, 2.0, p.BackoffMultiplier)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	_, err := NewEngine(&Policy{MaxAttempts: 3, InitialDelay: time.Second, BackoffMultiplier: 0.5}, nil)
	assert.Error(t, err)
}

func TestNewEngineDoesNotAliasCallerPolicy(t *testing.T) {
	p := &Policy{MaxAttempts: 2, InitialDelay: time.Millisecond}
	e, err := NewEngine(p, nil)
	require.NoError(t, err)

	p.MaxAttempts = 99
	assert.Equal(t, 2, e.Policy().MaxAttempts)
}
