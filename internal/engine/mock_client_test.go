package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockChargerClient implements client.ChargerClient for testing. Every call is
// recorded by endpoint name in Calls.
type MockChargerClient struct {
	StatusFn func(ctx context.Context) (map[string]any, error)
	PowerFn  func(ctx context.Context) (map[string]any, error)
	StartFn  func(ctx context.Context) error
	StopFn   func(ctx context.Context) error

	mu     sync.Mutex
	calls  []string
	closed bool
}

func (m *MockChargerClient) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

// Calls returns a copy of the recorded call sequence.
func (m *MockChargerClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Count returns how many times name was called.
func (m *MockChargerClient) Count(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockChargerClient) GetStatus(ctx context.Context) (map[string]any, error) {
	m.record("status")
	if m.StatusFn != nil {
		return m.StatusFn(ctx)
	}
	return abc1Status(), nil
}

func (m *MockChargerClient) GetPower(ctx context.Context) (map[string]any, error) {
	m.record("power")
	if m.PowerFn != nil {
		return m.PowerFn(ctx)
	}
	return abc1Power(), nil
}

func (m *MockChargerClient) Start(ctx context.Context) error {
	m.record("start")
	if m.StartFn != nil {
		return m.StartFn(ctx)
	}
	return nil
}

func (m *MockChargerClient) Stop(ctx context.Context) error {
	m.record("stop")
	if m.StopFn != nil {
		return m.StopFn(ctx)
	}
	return nil
}

func (m *MockChargerClient) BaseURL() string {
	return "http://mock"
}

func (m *MockChargerClient) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *MockChargerClient) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func abc1Status() map[string]any {
	return map[string]any{
		"charger_id":       "ABC1",
		"mains_voltage":    230.0,
		"is_car_connected": false,
		"cdr":              map[string]any{"chg_energy": 12.5},
	}
}

func abc1Power() map[string]any {
	return map[string]any{
		"power_stat": map[string]any{"voltage1": 231.0},
	}
}

// fastOptions keeps tests quick while preserving ordering semantics.
func fastOptions() Options {
	return Options{
		PollInterval: 20 * time.Millisecond,
		Pace:         time.Millisecond,
		SettleDelay:  5 * time.Millisecond,
		SetupRetry:   5 * time.Millisecond,
	}
}

var errMockFailure = errors.New("mock failure")
