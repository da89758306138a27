package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/voltie-go/internal/client"
	"github.com/dm/voltie-go/internal/model"
)

type chargeState int

const (
	chargeUnknown chargeState = iota
	chargeIdle
	chargeConnected
	chargeCharging
)

func (s chargeState) String() string {
	switch s {
	case chargeIdle:
		return "IDLE"
	case chargeConnected:
		return "CAR CONNECTED"
	case chargeCharging:
		return "CHARGING"
	default:
		return "UNKNOWN"
	}
}

// stateOf derives the charging state shown in the header and overview.
func stateOf(s *model.Snapshot) chargeState {
	if s == nil {
		return chargeUnknown
	}
	if on, _ := s.Bool(model.SourceStatus, "is_charging"); on {
		return chargeCharging
	}
	if on, _ := s.Bool(model.SourceStatus, "is_car_connected"); on {
		return chargeConnected
	}
	return chargeIdle
}

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   charger name and id (or "Connecting to <URL>..." before the first snapshot)
//	center: colored "● STATE" indicator (or "● OFFLINE  <error>" after a failed refresh)
//	right:  "Last: HH:MM:SS  Poll: Ns"
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	st := app.state
	var left, center, right string

	if !st.Ready() {
		left = "Connecting to " + app.inst.Client.BaseURL() + "..."
		if st.LastError != nil {
			center = StyleError.Render("● OFFLINE  " + classifyError(st.LastError))
			right = StyleError.Render("r: retry now")
		}
	} else {
		left = "Voltie " + sanitize(app.inst.Name)
		if id, ok := st.Snapshot.String(model.SourceStatus, "charger_id"); ok && id != "" {
			left += " (" + sanitize(id) + ")"
		}

		if st.LastError != nil {
			center = StyleError.Render("● OFFLINE  " + classifyError(st.LastError))
		} else {
			cs := stateOf(st.Snapshot)
			center = StateStyle(cs).Render("● " + cs.String())
		}
		right = StyleDim.Render(fmt.Sprintf("Last: %s  Poll: %s",
			st.LastSuccess.Format("15:04:05"), formatDuration(app.inst.Cache.Interval())))
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	// truncate rather than wrap so the header stays one line
	row = lipgloss.NewStyle().MaxWidth(max(innerWidth, 1)).Render(row)
	return StyleHeader.Width(width).MaxWidth(width).Render(row)
}

// classifyError turns a refresh or command error into a short header label.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	var authErr *client.AuthError
	var protoErr *client.ProtocolError
	var connErr *client.ConnectError
	switch {
	case errors.As(err, &authErr):
		return fmt.Sprintf("Authentication failed (%d)", authErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.As(err, &protoErr):
		if protoErr.StatusCode != 0 {
			return fmt.Sprintf("Unexpected response (%d)", protoErr.StatusCode)
		}
		return "Invalid response"
	case errors.As(err, &connErr):
		if strings.Contains(strings.ToLower(connErr.Error()), "timeout") {
			return "Timeout"
		}
		return "Connection failed"
	}
	msg := sanitize(err.Error())
	if len(msg) > 40 {
		msg = msg[:40] + "..."
	}
	return msg
}

// sanitize drops control characters so charger-supplied strings cannot break
// the layout.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// formatDuration formats a poll interval as a compact string, e.g. "5s" or "2m".
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
