package client

import (
	"context"
	"errors"
)

// SetupResult is the outcome of a setup-time connectivity check.
type SetupResult string

const (
	ResultOK            SetupResult = "ok"
	ResultInvalidAuth   SetupResult = "invalid_auth"
	ResultCannotConnect SetupResult = "cannot_connect"
	ResultUnknown       SetupResult = "unknown"
)

// Validate performs a single GET /status with the given credentials to decide
// whether a new charger configuration should be accepted. The body is not
// parsed; any 2xx answer is enough.
func Validate(ctx context.Context, cfg ClientConfig) (SetupResult, error) {
	c, err := NewDefaultClient(cfg)
	if err != nil {
		return ResultUnknown, err
	}
	defer c.Close()

	_, err = c.doGet(ctx, EndpointStatus)
	return Classify(err), err
}

// Classify maps an error returned by this package to a SetupResult.
func Classify(err error) SetupResult {
	if err == nil {
		return ResultOK
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return ResultInvalidAuth
	}

	var connErr *ConnectError
	var protoErr *ProtocolError
	if errors.As(err, &connErr) || errors.As(err, &protoErr) {
		return ResultCannotConnect
	}

	return ResultUnknown
}
