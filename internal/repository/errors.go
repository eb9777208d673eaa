// Package repository defines error types that are reused across the
// repository layer. These sentinel values allow higher layers such as
// the auth service to distinguish between different failure scenarios
// without inspecting driver-specific error strings themselves.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a unique index
// (username or email already taken). The service layer translates this
// into its conflict error so the race between the existence pre-check
// and the insert still surfaces as a 409 to the client.
var ErrDuplicate = errors.New("duplicate key")
