package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSigningKeyMissing indicates the token signing secret was not configured
	ErrSigningKeyMissing = errors.New("signing key missing")
)

// Rejections are the expected outcomes of a failed verification. They are
// returned as values and never wrap an infrastructure failure.
var (
	// ErrInvalidCredentials covers an unknown username, a wrong password and a
	// token whose subject no longer resolves to an account
	ErrInvalidCredentials = &Rejection{Reason: ReasonInvalidCredentials}

	// ErrTokenExpired indicates the token's expiration instant has passed
	ErrTokenExpired = &Rejection{Reason: ReasonExpired}

	// ErrTokenInvalid indicates the token failed to decode or its signature did not verify
	ErrTokenInvalid = &Rejection{Reason: ReasonMalformedOrUnsigned}
)

// RejectionReason is the fixed vocabulary of verification failures
type RejectionReason string

const (
	ReasonInvalidCredentials  RejectionReason = "invalid_credentials"
	ReasonExpired             RejectionReason = "expired"
	ReasonMalformedOrUnsigned RejectionReason = "malformed_or_unsigned"
)

// Rejection is a verification failure the caller is expected to handle.
type Rejection struct {
	Reason RejectionReason
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonInvalidCredentials:
		return "invalid credentials"
	case ReasonExpired:
		return "token expired"
	case ReasonMalformedOrUnsigned:
		return "token invalid"
	default:
		return "rejected: " + string(r.Reason)
	}
}

// Is matches any rejection carrying the same reason.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	if !ok {
		return false
	}
	return t.Reason == r.Reason
}

// IsRejection reports whether err is a verification rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// ReasonOf returns the rejection reason carried by err, if any.
func ReasonOf(err error) (RejectionReason, bool) {
	var r *Rejection
	if !errors.As(err, &r) {
		return "", false
	}
	return r.Reason, true
}
