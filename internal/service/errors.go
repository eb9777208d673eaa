// Package service implements the authentication core: registration,
// credential verification, session-token issuance, rotation and
// revocation. Handlers translate the typed errors defined here into HTTP
// statuses; nothing in this package knows about the wire format.
package service

import "fmt"

// Kind classifies a service failure so the boundary can map it to a
// status code without parsing messages.
type Kind string

const (
	KindValidation     Kind = "validation"     // malformed/missing caller input
	KindConflict       Kind = "conflict"       // uniqueness violation
	KindNotFound       Kind = "not_found"      // no matching identity
	KindAuthentication Kind = "authentication" // credential or token verification failure
	KindUpload         Kind = "upload"         // required media asset failed to upload
	KindInternal       Kind = "internal"       // invariant violation, not caller-recoverable
)

// Error is the failure type returned by every AuthService operation. It
// carries a machine-distinguishable Kind plus a human-readable message;
// the triggering error, when any, is wrapped for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func errValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func errConflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func errNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func errAuthentication(msg string, cause error) *Error {
	return &Error{Kind: KindAuthentication, Message: msg, cause: cause}
}

func errUpload(msg string, cause error) *Error {
	return &Error{Kind: KindUpload, Message: msg, cause: cause}
}

func errInternal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}
