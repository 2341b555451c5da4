package service

import (
	"errors"
	"fmt"
)

const GenericVerificationMessage = "Certificate verification failed. Please try again."

var (
	// ErrEmptyInput is returned before any network call when the number is blank.
	ErrEmptyInput = errors.New("please enter a certificate number")

	// ErrMissingTemplate: the API verified the certificate but sent no artwork
	// for a type that cannot fall back to the quiz placeholder.
	ErrMissingTemplate = errors.New("certificate template is not available for this certificate")
)

// VerificationFailedError covers transport failures, non-2xx answers, unsuccessful
// envelopes and malformed bodies. Message is safe to show to the user.
type VerificationFailedError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *VerificationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verification failed: %s: %v", e.Message, e.Err)
	}
	return "verification failed: " + e.Message
}

func (e *VerificationFailedError) Unwrap() error { return e.Err }

func newFailed(status int, message string, err error) *VerificationFailedError {
	if message == "" {
		message = GenericVerificationMessage
	}
	return &VerificationFailedError{Message: message, StatusCode: status, Err: err}
}

// UserMessage returns the text shown inline for any verification error.
func UserMessage(err error) string {
	var vf *VerificationFailedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return ErrEmptyInput.Error()
	case errors.Is(err, ErrMissingTemplate):
		return ErrMissingTemplate.Error()
	case errors.As(err, &vf):
		return vf.Message
	default:
		return GenericVerificationMessage
	}
}
