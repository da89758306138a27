package client

import "fmt"

// ConnectError reports a transport failure: timeout, refused connection, DNS.
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s: cannot connect: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AuthError reports that the charger rejected the credentials (HTTP 401).
type AuthError struct {
	Endpoint   string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed (%d)", e.Endpoint, e.StatusCode)
}

// ProtocolError reports a non-2xx response other than 401, or a body that is
// not the expected JSON object. StatusCode is zero for decode failures.
type ProtocolError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
