package clients

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(maxFailures, halfOpen int) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		Timeout:       time.Second,
		HalfOpenLimit: halfOpen,
	})
	cb.now = clock.now

	return cb, clock
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, 1)

	assert.True(t, cb.Allow())

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State(), "success resets the failure count")

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_ReleaseFreesProbeSlot(t *testing.T) {
	cb, clock := newTestBreaker(1, 1)

	cb.RecordFailure()
	clock.advance(time.Second)

	require.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "only one probe while half-open")

	cb.Release()
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.Allow())

	cb.Release()
	cb.Release()
	assert.Equal(t, 0, cb.inFlight)
}

func TestCircuitBreaker_Recovery(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []bool
		expected State
	}{
		{name: "probes succeed", outcomes: []bool{true, true}, expected: StateClosed},
		{name: "one probe succeeds", outcomes: []bool{true}, expected: StateHalfOpen},
		{name: "probe fails", outcomes: []bool{false}, expected: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock := newTestBreaker(1, 2)

			cb.RecordFailure()
			require.False(t, cb.Allow())

			clock.advance(2 * time.Second)
			require.True(t, cb.Allow())
			require.Equal(t, StateHalfOpen, cb.State())

			for _, ok := range tt.outcomes {
				if ok {
					cb.RecordSuccess()
				} else {
					cb.RecordFailure()
				}
			}

			assert.Equal(t, tt.expected, cb.State())
		})
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, clock := newTestBreaker(1, 2)

	cb.RecordFailure()
	clock.advance(2 * time.Second)

	assert.True(t, cb.Allow())
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_OnStateChangeIsSynchronous(t *testing.T) {
	cb, clock := newTestBreaker(1, 1)

	var transitions [][2]State
	cb.OnStateChange(func(from, to State) {
		transitions = append(transitions, [2]State{from, to})
	})

	cb.RecordFailure()
	clock.advance(2 * time.Second)
	cb.Allow()
	cb.RecordSuccess()

	assert.Equal(t, [][2]State{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, transitions)
}

func TestCircuitBreaker_Snapshot(t *testing.T) {
	cb, clock := newTestBreaker(3, 1)

	cb.RecordFailure()
	snap := cb.Snapshot()

	assert.Equal(t, StateClosed, snap.State)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, clock.t, snap.LastFailure)
}

func TestNewCircuitBreaker_RaisesLimits(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	assert.Equal(t, 1, cb.cfg.MaxFailures)
	assert.Equal(t, 1, cb.cfg.HalfOpenLimit)
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Second, HalfOpenLimit: 10})

	var wg sync.WaitGroup
	for i := range 500 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cb.Allow() {
				if i%2 == 0 {
					cb.RecordSuccess()
				} else {
					cb.RecordFailure()
				}
			}
		}()
	}

	wg.Wait()

	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, cb.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
