package auth

import "errors"

// Kind classifies a request-level failure. Every error that crosses an API
// boundary carries one of these so handlers can produce the uniform
// {success:false, message} payload without inspecting error strings.
type Kind int

const (
	// KindInternal is the fallback for unclassified errors
	KindInternal Kind = iota
	// KindValidation marks malformed or missing input
	KindValidation
	// KindDuplicateEmail marks registration with an email already in use
	KindDuplicateEmail
	// KindNotFound marks a lookup that matched nothing
	KindNotFound
	// KindInvalidCredentials marks a secret that does not match the stored hash
	KindInvalidCredentials
	// KindUnauthenticated marks a request that presented no token at all
	KindUnauthenticated
	// KindUnauthorized marks a token that is invalid or whose subject is gone,
	// or an operation the authenticated user may not perform
	KindUnauthorized
)

// Error is a kind-tagged error with a user-facing message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E builds a kind-tagged error
func E(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the Kind of err, or KindInternal if it carries none
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
