package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/dm/voltie-go/internal/client"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"auth", &client.AuthError{Endpoint: "/status", StatusCode: 401}, "Authentication failed (401)"},
		{"wrapped auth", fmt.Errorf("refresh: %w", &client.AuthError{Endpoint: "/status", StatusCode: 401}), "Authentication failed (401)"},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), "Timeout"},
		{"connect", &client.ConnectError{Endpoint: "/status", Err: errors.New("dial tcp: connection refused")}, "Connection failed"},
		{"connect timeout", &client.ConnectError{Endpoint: "/status", Err: errors.New("i/o timeout")}, "Timeout"},
		{"http status", &client.ProtocolError{Endpoint: "/power", StatusCode: 500, Err: errors.New("unexpected status")}, "Unexpected response (500)"},
		{"bad body", &client.ProtocolError{Endpoint: "/power", Err: errors.New("invalid character")}, "Invalid response"},
		{"short unknown", errors.New("some random error"), "some random error"},
		{"long unknown", errors.New(strings.Repeat("a", 52)), strings.Repeat("a", 40) + "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyError(tc.err))
		})
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"garage", "garage"},
		{"ABC\x1b[2J1", "ABC[2J1"},
		{"line\nbreak\ttab", "linebreaktab"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitize(tc.in), "%q", tc.in)
	}
}

func headerLineCount(rendered string) int {
	return len(strings.Split(rendered, "\n"))
}

func TestRenderHeader_Ready(t *testing.T) {
	app, _ := newReadyApp(t)
	app.width = 100

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "Voltie garage (ABC1)")
	assert.Contains(t, out, "● CHARGING")
	assert.Contains(t, out, "Poll: 5s")
	assert.Equal(t, 1, headerLineCount(out))
}

func TestRenderHeader_NotReadyWithError(t *testing.T) {
	app, stub := newTestApp(t)
	stub.fetchErr = &client.AuthError{Endpoint: "/status", StatusCode: 401}
	_ = app.inst.Cache.Refresh(context.Background())
	app.applyState(app.inst.Cache.State())
	app.width = 120

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "Connecting to http://charger.local...")
	assert.Contains(t, out, "● OFFLINE  Authentication failed (401)")
	assert.Contains(t, out, "r: retry now")
}

func TestRenderHeader_NarrowWidthSingleLine(t *testing.T) {
	app, _ := newReadyApp(t)
	app.width = 30

	out := renderHeader(app)
	assert.Equal(t, 1, headerLineCount(out))
	assert.LessOrEqual(t, lipgloss.Width(out), 30)
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{30 * time.Second, "30s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m"},
		{2 * time.Minute, "2m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatDuration(tc.d), tc.d.String())
	}
}
