// Package session owns the authentication identity and token lifecycle.
// The session is restored from durable storage once at startup and held in
// memory; every gated operation reads it through Current.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chirp/internal/core"
)

type Manager struct {
	Logger *slog.Logger
	API    core.AuthAPI
	Store  core.SessionStore

	mu      sync.Mutex
	current *core.Session
}

func (m *Manager) Init(ctx context.Context) error {
	m.Logger = m.Logger.With("component", "session.Manager")

	sess, err := m.Store.Load(ctx)
	if err != nil {
		// A broken session database means starting logged out, not a
		// broken client.
		m.Logger.Warn("could not restore session", "error", err)
		return nil
	}
	m.current = sess

	return nil
}

// Login authenticates against the backend and persists the session fields
// atomically. The bearer credential has no other source.
func (m *Manager) Login(ctx context.Context, username, password string) (*core.Session, error) {
	sess, err := m.API.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := m.Store.Save(ctx, *sess); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.Logger.Info("logged in", "user", sess.Username, "admin", sess.IsAdmin)

	return m.Current(), nil
}

// Logout clears all stored session fields unconditionally. Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	return m.Store.Clear(ctx)
}

// Current returns a copy of the session, or nil when logged out.
func (m *Manager) Current() *core.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	sess := *m.current
	return &sess
}

// IsAdmin treats a missing session or flag as deny, never as pending.
func (m *Manager) IsAdmin() bool {
	sess := m.Current()
	return sess != nil && sess.IsAdmin
}

// Invalidate is the forced logout triggered by an unauthorized backend
// response. A separate context because the caller's may already be
// canceled.
func (m *Manager) Invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := m.Logout(ctx); err != nil {
		m.Logger.Warn("could not clear stored session", "error", err)
	}
}
