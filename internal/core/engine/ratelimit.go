package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/worklane/worklane-cli/internal/core"
)

// Limiter classes matching the documented Worklane quotas.
const (
	ClassRegular = "regular"
	ClassReports = "reports"
)

const (
	// DefaultMaxRetries bounds throttle retries per call.
	DefaultMaxRetries = 5
	// DefaultBaseDelay seeds the exponential backoff.
	DefaultBaseDelay = time.Second
)

// ClassConfig bounds one limiter class.
type ClassConfig struct {
	Limit      int
	Window     time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultClasses provides the upstream-documented quotas per class.
var DefaultClasses = map[string]ClassConfig{
	ClassRegular: {Limit: 100, Window: 10 * time.Second},
	ClassReports: {Limit: 10, Window: 30 * time.Second},
}

// Limiter admits outbound calls so that no trailing window holds more than
// a class's limit, and retries throttled calls with backoff. The zero value
// uses DefaultClasses; all methods are safe for concurrent use.
type Limiter struct {
	Classes map[string]ClassConfig
	Clock   func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewLimiter builds a limiter from per-class overrides merged over the
// defaults. Zero fields in an override fall back to the default class
// config (or package defaults for retry settings).
func NewLimiter(overrides map[string]ClassConfig) *Limiter {
	classes := make(map[string]ClassConfig, len(DefaultClasses)+len(overrides))
	for name, cfg := range DefaultClasses {
		classes[name] = cfg
	}
	for name, cfg := range overrides {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		base := classes[name]
		if cfg.Limit > 0 {
			base.Limit = cfg.Limit
		}
		if cfg.Window > 0 {
			base.Window = cfg.Window
		}
		if cfg.MaxRetries > 0 {
			base.MaxRetries = cfg.MaxRetries
		}
		if cfg.BaseDelay > 0 {
			base.BaseDelay = cfg.BaseDelay
		}
		classes[name] = base
	}
	return &Limiter{Classes: classes}
}

// ClassForEndpoint maps an API endpoint to its limiter class.
func ClassForEndpoint(endpoint string) string {
	if strings.HasPrefix(strings.TrimSpace(endpoint), "/reports") {
		return ClassReports
	}
	return ClassRegular
}

// Acquire suspends until admitting one call would not exceed the class
// limit within its trailing window. The admission timestamp is recorded
// only on success; cancellation leaves the window untouched.
func (l *Limiter) Acquire(ctx context.Context, class string) error {
	if l == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := l.classConfig(class)
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil
	}

	for {
		l.mu.Lock()
		now := l.now()
		window := l.pruneLocked(class, now, cfg.Window)
		if len(window) < cfg.Limit {
			l.windows[class] = append(window, now)
			l.mu.Unlock()
			return nil
		}
		wait := cfg.Window - now.Sub(window[0])
		l.mu.Unlock()

		if wait <= 0 {
			// The oldest entry ages out on the next prune.
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		// Re-check: another goroutine may have taken the freed slot.
	}
}

// Do runs fn under admission control, retrying throttled calls. Each
// attempt re-acquires its slot. A ThrottledError from fn waits for the
// server hint when present, otherwise exponential backoff with jitter;
// once the retry budget is spent the call fails with a RateLimitError.
func (l *Limiter) Do(ctx context.Context, class string, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("engine: nil call")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if l == nil {
		return fn(ctx)
	}

	cfg := l.classConfig(class)
	var lastHint time.Duration

	for attempt := 0; ; attempt++ {
		if err := l.Acquire(ctx, class); err != nil {
			return err
		}

		err := fn(ctx)
		var throttled *core.ThrottledError
		if !errors.As(err, &throttled) {
			return err
		}

		lastHint = throttled.RetryAfter
		if attempt >= cfg.MaxRetries {
			return &core.RateLimitError{Class: class, Attempts: attempt + 1, LastHint: lastHint}
		}

		delay := throttled.RetryAfter
		if delay <= 0 {
			delay = backoffDelay(cfg.BaseDelay, attempt)
		}
		if err := sleepContext(ctx, delay); err != nil {
			return err
		}
	}
}

// ClassStatus is a point-in-time view of one limiter class.
type ClassStatus struct {
	Class      string        `json:"class"`
	Limit      int           `json:"limit"`
	Window     time.Duration `json:"window"`
	InWindow   int           `json:"in_window"`
	MaxRetries int           `json:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay"`
}

// Snapshot returns the current state of every configured class.
func (l *Limiter) Snapshot() []ClassStatus {
	if l == nil {
		return nil
	}

	classes := l.Classes
	if classes == nil {
		classes = DefaultClasses
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make([]ClassStatus, 0, len(classes))
	for name := range classes {
		cfg := l.classConfigLocked(name)
		out = append(out, ClassStatus{
			Class:      name,
			Limit:      cfg.Limit,
			Window:     cfg.Window,
			InWindow:   len(l.pruneLocked(name, now, cfg.Window)),
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseDelay,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}

// pruneLocked drops admissions older than the trailing window and returns
// the surviving slice. Callers hold l.mu.
func (l *Limiter) pruneLocked(class string, now time.Time, window time.Duration) []time.Time {
	if l.windows == nil {
		l.windows = make(map[string][]time.Time)
	}

	cutoff := now.Add(-window)
	stamps := l.windows[class]
	idx := 0
	for idx < len(stamps) && stamps[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		stamps = append(stamps[:0], stamps[idx:]...)
		l.windows[class] = stamps
	}
	return stamps
}

func (l *Limiter) classConfig(class string) ClassConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.classConfigLocked(class)
}

func (l *Limiter) classConfigLocked(class string) ClassConfig {
	classes := l.Classes
	if classes == nil {
		classes = DefaultClasses
	}

	cfg, ok := classes[class]
	if !ok {
		cfg = classes[ClassRegular]
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	return cfg
}

func (l *Limiter) now() time.Time {
	if l != nil && l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

// backoffDelay computes base·2^attempt plus jitter in [0, base).
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if attempt > 16 {
		attempt = 16
	}
	return base*(1<<attempt) + rand.N(base)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
