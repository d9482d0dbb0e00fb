package auth

import (
	"errors"
	"fmt"
)

// Messages shown to the user for failed authentication attempts.
const (
	MessageEmailExists     = "This email exists already"
	MessageEmailNotFound   = "This email does not exist."
	MessageInvalidPassword = "This password is not correct."
	MessageUnknown         = "An unknown error occurred!"
)

// Error codes reported by the identity service.
const (
	CodeEmailExists     = "EMAIL_EXISTS"
	CodeEmailNotFound   = "EMAIL_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
)

var credentialMessages = map[string]string{
	CodeEmailExists:     MessageEmailExists,
	CodeEmailNotFound:   MessageEmailNotFound,
	CodeInvalidPassword: MessageInvalidPassword,
}

// TransportError wraps a failure to reach the identity service.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CredentialError is one of the known credential errors reported by the identity service.
type CredentialError struct {
	Code string
}

func (e *CredentialError) Error() string {
	return "identity service rejected credentials: " + e.Code
}

// UnknownError covers any other failure, including malformed responses.
type UnknownError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *UnknownError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unknown identity error (status %d): %s: %v", e.StatusCode, e.Detail, e.Err)
	}
	return fmt.Sprintf("unknown identity error (status %d): %s", e.StatusCode, e.Detail)
}

func (e *UnknownError) Unwrap() error { return e.Err }

// classifyCode maps an error code from the identity service to an error.
func classifyCode(statusCode int, code string) error {
	if _, ok := credentialMessages[code]; ok {
		return &CredentialError{Code: code}
	}
	return &UnknownError{StatusCode: statusCode, Detail: code}
}

// FailureFromError converts any error into a displayable failure outcome.
func FailureFromError(err error) AuthenticateFailure {
	var credErr *CredentialError
	if errors.As(err, &credErr) {
		if msg, ok := credentialMessages[credErr.Code]; ok {
			return AuthenticateFailure{Message: msg, Cause: err}
		}
	}
	return AuthenticateFailure{Message: MessageUnknown, Cause: err}
}
