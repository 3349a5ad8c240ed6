package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend failed")

type fakeNow struct{ t time.Time }

func (f *fakeNow) Now() time.Time { return f.t }

func run(b *Breaker, outcomes ...bool) {
	for _, ok := range outcomes {
		_ = b.Do(func() error {
			if ok {
				return nil
			}
			return errBackend
		})
	}
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		threshold     int
		outcomes      []bool
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			threshold:     3,
			outcomes:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name:          "opens after consecutive failures",
			threshold:     3,
			outcomes:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name:          "success resets the failure streak",
			threshold:     3,
			outcomes:      []bool{false, false, true, false, false},
			expectedState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeNow{t: time.Unix(0, 0)}
			b := New("test", Settings{FailureThreshold: tt.threshold, Cooldown: time.Minute, Now: clock.Now})

			run(b, tt.outcomes...)

			assert.Equal(t, tt.expectedState, b.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}
	b := New("storage", Settings{FailureThreshold: 1, Cooldown: time.Minute, Now: clock.Now})

	run(b, false)
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, uint32(1), b.Counts().Rejected)
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := &fakeNow{t: time.Unix(0, 0)}

	var transitions []string
	b := New("storage", Settings{
		FailureThreshold: 2,
		Cooldown:         10 * time.Second,
		Now:              clock.Now,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	run(b, false, false)
	assert.Equal(t, StateOpen, b.State())

	clock.t = clock.t.Add(10 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	run(b, false)
	assert.Equal(t, StateOpen, b.State())

	clock.t = clock.t.Add(10 * time.Second)
	run(b, true)
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{"closed->open", "half-open->open", "half-open->closed"}, transitions)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
