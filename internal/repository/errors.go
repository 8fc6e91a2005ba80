// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the service layer to
// distinguish between failure scenarios without inspecting driver
// specific errors.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist or is
// not visible to the caller (for example another user's request).
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// row it may not touch.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as a duplicate venue name.  Handlers
// translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering or editing a user with an
// email address that is already taken.
var ErrEmailExists = errors.New("email already exists")
