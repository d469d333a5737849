package core

import "errors"

var (
	// ErrInvalidCredentials is returned by login when the backend rejects
	// the username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the backend rejected the bearer token. The API
	// layer already invalidated the session when this surfaces.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork means the request never completed.
	ErrNetwork = errors.New("network failure")

	// ErrValidation means the backend rejected the payload.
	ErrValidation = errors.New("validation failed")

	// ErrConflict means the action was rejected because of the current
	// server-side state, e.g. a double follow.
	ErrConflict = errors.New("conflict")

	ErrNotFound = errors.New("not found")

	// ErrNoSession gates every personalized operation: no session, no
	// request.
	ErrNoSession = errors.New("no active session, log in first")

	ErrAdminOnly = errors.New("admin capability required")

	ErrSelfFollow = errors.New("cannot follow your own profile")

	// ErrNotSelf rejects profile edits on somebody else's profile.
	ErrNotSelf = errors.New("profile belongs to another user")
)
