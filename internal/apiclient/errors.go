package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where a request failed.
type Kind int

const (
	// KindNetwork means the request never produced an HTTP response.
	KindNetwork Kind = iota + 1
	// KindProtocol means the response was not a well-formed envelope.
	KindProtocol
	// KindSessionExpired means no valid access token could be obtained.
	KindSessionExpired
	// KindDomain means the service rejected the request with an error code.
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindProtocol:
		return "protocol"
	case KindSessionExpired:
		return "session_expired"
	case KindDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Category is the first segment of a service error code.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryConflict   Category = "conflict"
	CategoryResource   Category = "resource"
	CategorySystem     Category = "system"
	CategoryPermission Category = "permission"
)

// CodeSessionExpired is the code attached to session-expired failures.
const CodeSessionExpired = "auth.refresh_token.invalid"

const (
	defaultMessage        = "Something went wrong"
	sessionExpiredMessage = "Session expired. Please sign in again."
	networkMessage        = "Could not reach the server. Check your connection and try again."
)

var (
	// ErrSessionExpired is wrapped by every KindSessionExpired error.
	ErrSessionExpired = errors.New("session expired")
	// ErrMalformedEnvelope is wrapped by protocol errors for unparseable bodies.
	ErrMalformedEnvelope = errors.New("malformed response envelope")
)

// Error is returned for every failed API call.
type Error struct {
	Kind       Kind
	StatusCode int
	// Code is the service error code, e.g. "resource.group.not_found".
	Code string
	// Message is the user-facing text.
	Message string
	// RawMessage is the text the service sent, joined when it was a list.
	RawMessage string
	Details    json.RawMessage
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNetwork && e.Err != nil:
		return fmt.Sprintf("network error: %v", e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Category returns the category of the error code, or "" when there is none.
func (e *Error) Category() Category {
	if e.Code == "" {
		return ""
	}
	return CategoryOf(e.Code)
}

// IsSessionExpired reports whether err means the user must sign in again.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func sessionExpired(cause error) *Error {
	err := ErrSessionExpired
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrSessionExpired, cause)
	}
	return &Error{
		Kind:       KindSessionExpired,
		StatusCode: http.StatusUnauthorized,
		Code:       CodeSessionExpired,
		Message:    Message(CodeSessionExpired, sessionExpiredMessage),
		RawMessage: sessionExpiredMessage,
		Err:        err,
	}
}

func networkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: networkMessage,
		Err:     err,
	}
}
