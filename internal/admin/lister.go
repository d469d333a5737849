// Package admin exposes the admin-only user listing. The capability check
// is local and strict: a false or missing admin flag denies, it never
// waits for anything to resolve.
package admin

import (
	"context"
	"log/slog"

	"chirp/internal/core"
	"chirp/internal/session"
)

type Lister struct {
	Logger  *slog.Logger
	API     core.SocialAPI
	Session *session.Manager
}

func (l *Lister) Init(_ context.Context) error {
	l.Logger = l.Logger.With("component", "admin.Lister")
	return nil
}

func (l *Lister) Users(ctx context.Context) ([]*core.AdminUser, error) {
	if l.Session.Current() == nil {
		return nil, core.ErrNoSession
	}
	if !l.Session.IsAdmin() {
		return nil, core.ErrAdminOnly
	}

	return l.API.AdminUsers(ctx)
}
