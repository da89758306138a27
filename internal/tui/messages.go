package tui

import (
	"time"

	"github.com/dm/voltie-go/internal/engine"
)

// StateMsg delivers a cache state published after a refresh attempt.
type StateMsg struct{ State engine.State }

// RefreshDoneMsg signals the end of a manual refresh.
type RefreshDoneMsg struct{ Err error }

// CommandMsg carries the outcome of a start or stop command.
type CommandMsg struct{ Result engine.CommandResult }

// ClockMsg redraws relative times once per second.
type ClockMsg time.Time
