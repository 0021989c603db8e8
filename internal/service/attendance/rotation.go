package attendance

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
)

// Rotation re-issues tokens on the configured interval until its context is
// cancelled or Stop is called. A failed issuance is retried after the last
// known interval, so the display never freezes on a dead code.
type Rotation struct {
	issuer  attendance.TokenIssuer
	updates chan attendance.IssuedToken

	mu         sync.RWMutex
	current    attendance.IssuedToken
	hasCurrent bool
	interval   time.Duration

	after func(time.Duration) <-chan time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

type RotationOption func(*Rotation)

// WithTimer replaces time.After, mainly for tests.
func WithTimer(after func(time.Duration) <-chan time.Time) RotationOption {
	return func(r *Rotation) { r.after = after }
}

// StartRotation issues the first token immediately and keeps rotating in a
// goroutine bound to ctx.
func StartRotation(ctx context.Context, issuer attendance.TokenIssuer, fallback time.Duration, opts ...RotationOption) *Rotation {
	if fallback <= 0 {
		fallback = settings.DefaultTokenRotationSeconds * time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &Rotation{
		issuer:   issuer,
		updates:  make(chan attendance.IssuedToken, 1),
		interval: fallback,
		after:    time.After,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.run(ctx)
	return r
}

func (r *Rotation) run(ctx context.Context) {
	defer close(r.done)
	defer close(r.updates)

	for {
		r.rotate(ctx)

		r.mu.RLock()
		wait := r.interval
		r.mu.RUnlock()

		select {
		case <-ctx.Done():
			return
		case <-r.after(wait):
		}
	}
}

func (r *Rotation) rotate(ctx context.Context) {
	issued, err := r.issuer.Issue(ctx)
	if err != nil {
		if ctx.Err() == nil || !errors.Is(err, ctx.Err()) {
			slog.Error("attendance token rotation failed, retrying next interval", "error", err)
		}
		return
	}

	r.mu.Lock()
	r.current = issued
	r.hasCurrent = true
	if issued.RotationSeconds > 0 {
		r.interval = time.Duration(issued.RotationSeconds) * time.Second
	}
	r.mu.Unlock()

	// Only the newest token matters to a display.
	select {
	case r.updates <- issued:
	default:
		select {
		case <-r.updates:
		default:
		}
		select {
		case r.updates <- issued:
		default:
		}
	}
}

// Updates delivers every newly issued token. The channel closes when the rotation stops.
func (r *Rotation) Updates() <-chan attendance.IssuedToken {
	return r.updates
}

// Current returns the most recently issued token, if any.
func (r *Rotation) Current() (attendance.IssuedToken, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.hasCurrent
}

// Remaining is the validity left on the current token at now, never negative.
func (r *Rotation) Remaining(now time.Time) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.hasCurrent {
		return 0
	}
	left := r.current.Token.ValidUntil.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Stop ends the rotation and waits for the goroutine to exit. Safe to call repeatedly.
func (r *Rotation) Stop() {
	r.stopOnce.Do(r.cancel)
	<-r.done
}
