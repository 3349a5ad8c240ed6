package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling through while the breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold int
	// Cooldown is how long the breaker stays open before allowing one probe
	Cooldown time.Duration
	// Now returns the current time; defaults to time.Now
	Now func() time.Time
	// OnStateChange is called whenever the state changes, with the lock released
	OnStateChange func(name string, from State, to State)
}

// Counts holds the statistics for the circuit breaker
type Counts struct {
	Calls               uint32
	Failures            uint32
	Rejected            uint32
	ConsecutiveFailures uint32
}

// Breaker stops calling a failing dependency for a cooldown period.
// Half-open admits a single probe; its outcome closes or reopens the breaker.
type Breaker struct {
	name     string
	settings Settings

	mu       sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	probing  bool
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 3
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do calls fn unless the breaker is open
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState() {
	case StateOpen:
		b.counts.Rejected++
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			b.counts.Rejected++
			return ErrCircuitOpen
		}
		b.probing = true
	}

	b.counts.Calls++
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	from := b.currentState()
	b.probing = false

	to := from
	if success {
		b.counts.ConsecutiveFailures = 0
		if from == StateHalfOpen {
			to = StateClosed
		}
	} else {
		b.counts.Failures++
		b.counts.ConsecutiveFailures++
		if from == StateHalfOpen || int(b.counts.ConsecutiveFailures) >= b.settings.FailureThreshold {
			to = StateOpen
			b.openedAt = b.settings.Now()
		}
	}
	b.state = to
	b.mu.Unlock()

	if to != from && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

// currentState promotes open to half-open once the cooldown elapsed (must hold mu)
func (b *Breaker) currentState() State {
	if b.state == StateOpen && !b.settings.Now().Before(b.openedAt.Add(b.settings.Cooldown)) {
		b.state = StateHalfOpen
		b.probing = false
	}
	return b.state
}
