package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/telemetry"
)

// Opener builds the backend collaborators for the holder of token.
// It is called once per login.
type Opener func(ctx context.Context, token string) (Deps, error)

// RegistryConfig bounds how long sessions of a Registry live.
type RegistryConfig struct {
	IdleTimeout     time.Duration `env:"GATEKIT_SESSION_IDLE_TIMEOUT" envDefault:"30m"`    // IdleTimeout closes sessions not used for this long. 0 disables.
	MaxLifetime     time.Duration `env:"GATEKIT_SESSION_MAX_LIFETIME" envDefault:"12h"`    // MaxLifetime closes sessions this long after login. 0 disables.
	CleanupInterval time.Duration `env:"GATEKIT_SESSION_CLEANUP_INTERVAL" envDefault:"1m"` // CleanupInterval is the period of the background sweep. 0 disables it.
}

// DefaultRegistryConfig returns the env defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		IdleTimeout:     30 * time.Minute,
		MaxLifetime:     12 * time.Hour,
		CleanupInterval: time.Minute,
	}
}

// Registry keeps one Session per signed-in credential for servers that
// gate many users at once. Login opens a session, Logout or expiry closes it.
// Credentials are only kept as SHA-256 digests.
type Registry struct {
	open     Opener
	cfg      RegistryConfig
	sessOpts []Option
	now      func() time.Time
	rec      telemetry.Recorder

	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type entry struct {
	s        *Session
	openedAt time.Time
	lastSeen time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSessionOptions are applied to every session the registry opens.
func WithSessionOptions(opts ...Option) RegistryOption {
	return func(r *Registry) { r.sessOpts = append(r.sessOpts, opts...) }
}

// WithRegistryClock replaces time.Now for expiry decisions.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func WithRegistryTelemetry(rec telemetry.Recorder) RegistryOption {
	return func(r *Registry) { r.rec = rec }
}

// NewRegistry creates a Registry and starts its cleanup loop. Panics if open is nil.
func NewRegistry(open Opener, cfg RegistryConfig, opts ...RegistryOption) *Registry {
	if open == nil {
		panic("session: Opener is required")
	}

	r := &Registry{
		open:     open,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*entry),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.rec = telemetry.OrNop(r.rec)

	if cfg.CleanupInterval > 0 {
		r.wg.Add(1)
		go r.cleanupLoop(cfg.CleanupInterval)
	}
	return r
}

// Login returns the live session of token, opening a new one when there is none.
func (r *Registry) Login(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	key := digest(token)

	if s, ok := r.lookup(key); ok {
		return s, nil
	}

	deps, err := r.open(ctx, token)
	if err != nil {
		r.rec.Record(ctx, telemetry.SessionOpenFailed, logger.Component("session"), logger.Error(err))
		return nil, err
	}
	s, err := New(deps, r.sessOpts...)
	if err != nil {
		r.rec.Record(ctx, telemetry.SessionOpenFailed, logger.Component("session"), logger.Error(err))
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.Close()
		return nil, ErrRegistryClosed
	}
	// a concurrent login of the same credential won the race
	if e, ok := r.sessions[key]; ok && !e.s.Closed() {
		e.lastSeen = r.now()
		r.mu.Unlock()
		s.Close()
		return e.s, nil
	}
	now := r.now()
	r.sessions[key] = &entry{s: s, openedAt: now, lastSeen: now}
	active := len(r.sessions)
	r.mu.Unlock()

	r.rec.Record(ctx, telemetry.SessionOpened,
		logger.Component("session"),
		logger.SessionID(s.ID),
		slog.Int("active_sessions", active),
	)
	return s, nil
}

// Lookup returns the live session of token without opening one.
func (r *Registry) Lookup(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	return r.lookup(digest(token))
}

// Logout closes the session of token. It reports whether there was one.
func (r *Registry) Logout(token string) bool {
	if token == "" {
		return false
	}
	key := digest(token)

	r.mu.Lock()
	e, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if ok {
		e.s.Close()
	}
	return ok
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes every session past its idle timeout or lifetime and returns how many it closed.
func (r *Registry) Sweep() int {
	now := r.now()

	var expired []*Session
	r.mu.Lock()
	for key, e := range r.sessions {
		if r.expired(e, now) {
			expired = append(expired, e.s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
		r.rec.Record(context.Background(), telemetry.SessionExpired,
			logger.Component("session"),
			logger.SessionID(s.ID),
		)
	}
	return len(expired)
}

// Close stops the cleanup loop and closes every session. Login fails afterwards.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()

		r.mu.Lock()
		r.closed = true
		sessions := r.sessions
		r.sessions = make(map[string]*entry)
		r.mu.Unlock()

		for _, e := range sessions {
			e.s.Close()
		}
	})
}

func (r *Registry) lookup(key string) (*Session, bool) {
	now := r.now()

	r.mu.Lock()
	e, ok := r.sessions[key]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	if e.s.Closed() || r.expired(e, now) {
		delete(r.sessions, key)
		r.mu.Unlock()
		e.s.Close()
		return nil, false
	}
	e.lastSeen = now
	r.mu.Unlock()

	return e.s, true
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	if r.cfg.IdleTimeout > 0 && now.Sub(e.lastSeen) >= r.cfg.IdleTimeout {
		return true
	}
	return r.cfg.MaxLifetime > 0 && now.Sub(e.openedAt) >= r.cfg.MaxLifetime
}

func (r *Registry) cleanupLoop(every time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.done:
			return
		}
	}
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
