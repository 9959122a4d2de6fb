package igdb

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials reports that neither an access token nor a client
// id/secret pair was configured.
var ErrMissingCredentials = errors.New("igdb: client credentials are not configured")

// AuthError reports a failed token exchange. It is fatal to client
// construction.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("igdb: token exchange: %v (status %d, body %q)", e.Err, e.Status, e.Body)
	}
	return fmt.Sprintf("igdb: token exchange failed with status %d: %s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError reports a non-success status from a bulk fetch. It carries the
// endpoint, the request body, and the raw response so a failed query can be
// replayed by hand.
type APIError struct {
	Endpoint    string
	RequestBody string
	Status      int
	Response    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("igdb: %s request failed with status %d (query %q): %s",
		e.Endpoint, e.Status, e.RequestBody, e.Response)
}

// DecodeError reports a response body that does not match the expected
// schema. It usually signals an upstream API change rather than a transient
// failure.
type DecodeError struct {
	Endpoint    string
	RequestBody string
	Response    string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("igdb: decode %s response (query %q): %v: %s",
		e.Endpoint, e.RequestBody, e.Err, e.Response)
}

func (e *DecodeError) Unwrap() error { return e.Err }
