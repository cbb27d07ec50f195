// Package circuitbreaker stops calling a failing dependency for a while
// after repeated failures.
//
// A Breaker starts closed. MaxFailures consecutive failures open it, and
// every call fails fast with ErrOpen until Cooldown has passed. The next
// call is then let through as a trial (half-open): success closes the
// breaker, failure reopens it, and a trial abandoned by its caller leaves
// the breaker open.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrOpen is returned without calling the dependency while the breaker is open
	ErrOpen = errors.New("circuit breaker is open")
	// ErrTrialInFlight is returned while the half-open trial call is running
	ErrTrialInFlight = errors.New("circuit breaker trial call in flight")
)

// State is the breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds breaker configuration
type Config struct {
	// Name identifies the breaker in logs and metrics
	Name        string
	MaxFailures int
	Cooldown    time.Duration
	// OnStateChange, when set, is called synchronously after every
	// transition with the breaker's lock released.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns the configuration used for optional dependencies
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxFailures: 5,
		Cooldown:    10 * time.Second,
	}
}

// Breaker guards calls to one dependency
type Breaker struct {
	config Config
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

// New creates a closed breaker. Non-positive limits fall back to the
// defaults.
func New(config Config) *Breaker {
	defaults := DefaultConfig(config.Name)
	if config.MaxFailures <= 0 {
		config.MaxFailures = defaults.MaxFailures
	}
	if config.Cooldown <= 0 {
		config.Cooldown = defaults.Cooldown
	}

	return &Breaker{
		config: config,
		now:    time.Now,
	}
}

// Do calls fn unless the breaker is open. A context error from the
// caller's own context is not counted as a dependency failure.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	trial, err := b.acquire()
	if err != nil {
		return err
	}

	err = fn(ctx)
	b.release(trial, err != nil, ctx.Err() != nil)
	return err
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// acquire admits a call. trial is true for the single call let through
// once the cooldown has passed.
func (b *Breaker) acquire() (trial bool, err error) {
	b.mu.Lock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			b.mu.Unlock()
			return false, ErrOpen
		}
		from := b.transition(StateHalfOpen)
		b.mu.Unlock()
		b.notify(from, StateHalfOpen)
		return true, nil
	case StateHalfOpen:
		b.mu.Unlock()
		return false, ErrTrialInFlight
	}

	b.mu.Unlock()
	return false, nil
}

// release records the outcome of an admitted call. Only the trial call
// decides a half-open breaker. Calls admitted while closed that finish
// after the breaker left the closed state are ignored, as are failures
// of callers whose context ended.
func (b *Breaker) release(trial, failed, cancelled bool) {
	b.mu.Lock()

	var to State
	switch {
	case trial && failed && cancelled:
		// No verdict on the dependency. Back to open with the old
		// openedAt so the next call becomes the trial.
		b.state = StateOpen
		b.mu.Unlock()
		b.notify(StateHalfOpen, StateOpen)
		return
	case trial:
		to = StateClosed
		if failed {
			to = StateOpen
		}
	case b.state != StateClosed, failed && cancelled:
		b.mu.Unlock()
		return
	case failed:
		b.failures++
		if b.failures < b.config.MaxFailures {
			b.mu.Unlock()
			return
		}
		to = StateOpen
	default:
		b.failures = 0
		b.mu.Unlock()
		return
	}

	from := b.transition(to)
	b.mu.Unlock()
	b.notify(from, to)
}

// transition must be called with mu held
func (b *Breaker) transition(to State) State {
	from := b.state
	b.state = to
	b.failures = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	return from
}

func (b *Breaker) notify(from, to State) {
	if b.config.OnStateChange != nil && from != to {
		b.config.OnStateChange(b.config.Name, from, to)
	}
}
