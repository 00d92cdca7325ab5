// Package repository defines the sentinel errors shared by the host
// directory and the session snapshot store.  Handlers use them to tell a
// missing record apart from an infrastructure failure.
package repository

import "errors"

// ErrHostNotFound is returned when no host matches an identifier or token.
// Handlers should translate this into an HTTP 404 response.
var ErrHostNotFound = errors.New("host not found")

// ErrSessionNotStored is returned when the snapshot store has no record for
// a session id, either because it was never saved or because it expired.
var ErrSessionNotStored = errors.New("session not stored")

// ErrPlatformStatsMissing is returned when no brand-level statistics have
// been recorded yet.
var ErrPlatformStatsMissing = errors.New("platform stats missing")
