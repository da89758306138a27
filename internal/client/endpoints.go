package client

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	EndpointStatus = "status"
	EndpointPower  = "power"
	EndpointStart  = "start"
	EndpointStop   = "stop"
)

// GetStatus fetches /status and returns the decoded JSON object unchanged.
func (c *DefaultClient) GetStatus(ctx context.Context) (map[string]any, error) {
	return c.getObject(ctx, EndpointStatus)
}

// GetPower fetches /power and returns the decoded JSON object unchanged.
func (c *DefaultClient) GetPower(ctx context.Context) (map[string]any, error) {
	return c.getObject(ctx, EndpointPower)
}

// Start asks the charger to begin charging. The response body is ignored.
func (c *DefaultClient) Start(ctx context.Context) error {
	_, err := c.doGet(ctx, EndpointStart)
	return err
}

// Stop asks the charger to stop charging. The response body is ignored.
func (c *DefaultClient) Stop(ctx context.Context) error {
	_, err := c.doGet(ctx, EndpointStop)
	return err
}

func (c *DefaultClient) getObject(ctx context.Context, endpoint string) (map[string]any, error) {
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeObject(endpoint, body)
}

// decodeObject parses body as a non-empty JSON object.
func decodeObject(endpoint string, body []byte) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ProtocolError{Endpoint: endpoint, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(result) == 0 {
		return nil, &ProtocolError{Endpoint: endpoint, Err: fmt.Errorf("empty JSON object")}
	}
	return result, nil
}
