package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/voltie-go/internal/engine"
	"github.com/dm/voltie-go/internal/entity"
	"github.com/dm/voltie-go/internal/model"
)

const (
	refreshTimeout = 30 * time.Second
	commandTimeout = 60 * time.Second
)

type panel int

const (
	panelPhases panel = iota
	panelReadings
)

// App is the root Bubble Tea model for the charger dashboard. It never polls
// the charger itself: states arrive from the instance's cache subscription
// and commands go through the instance's controller.
type App struct {
	inst        *engine.Instance
	states      chan engine.State
	done        chan struct{}
	unsubscribe func()
	closeOnce   sync.Once

	state    engine.State
	lastSnap *model.Snapshot
	history  *model.Trend
	clock    time.Time

	// Action state
	refreshing  bool
	busy        bool
	confirmStop bool
	status      string
	statusErr   bool

	// Layout
	width, height int
	panel         panel
	readings      tableModel

	// UI state
	showHelp bool
}

// NewApp creates an App bound to inst and subscribes to its cache.
// Call Close when the program exits.
func NewApp(inst *engine.Instance) *App {
	app := &App{
		inst:     inst,
		states:   make(chan engine.State, 1),
		done:     make(chan struct{}),
		history:  model.NewTrend(0),
		clock:    time.Now(),
		readings: newReadingsTable(),
	}
	app.applyState(inst.Cache.State())
	app.unsubscribe = inst.Cache.Subscribe(app.offer)
	return app
}

// offer hands st to the UI without blocking the cache. A state the UI has not
// picked up yet is replaced by the newer one.
func (app *App) offer(st engine.State) {
	for {
		select {
		case app.states <- st:
			return
		default:
		}
		select {
		case <-app.states:
		default:
		}
	}
}

// Close detaches the App from the cache.
func (app *App) Close() {
	app.closeOnce.Do(func() {
		app.unsubscribe()
		close(app.done)
	})
}

// Init implements tea.Model.
func (app *App) Init() tea.Cmd {
	return tea.Batch(waitForState(app.states, app.done), clockCmd())
}

// Update implements tea.Model. It is the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		app.readings.pageSize = readingsPageSize(msg.Height)
		app.readings.clampPage(len(entity.Catalogue()))

	case StateMsg:
		app.applyState(msg.State)
		return app, waitForState(app.states, app.done)

	case RefreshDoneMsg:
		app.refreshing = false
		if msg.Err != nil {
			app.setStatus("Refresh failed: "+classifyError(msg.Err), true)
		}

	case CommandMsg:
		app.busy = false
		res := msg.Result
		if res.Err != nil {
			app.setStatus(commandLabel(res.Command)+" failed: "+classifyError(res.Err), true)
		} else {
			app.setStatus(commandLabel(res.Command)+" sent", false)
		}

	case ClockMsg:
		app.clock = time.Time(msg)
		return app, clockCmd()

	case tea.KeyMsg:
		return app.handleKey(msg)
	}

	return app, nil
}

func (app *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if app.confirmStop {
		switch {
		case key.Matches(msg, keys.Confirm):
			app.confirmStop = false
			return app, app.command(engine.CommandStop)
		case key.Matches(msg, keys.Cancel):
			app.confirmStop = false
		case msg.String() == "ctrl+c":
			return app, tea.Quit
		}
		return app, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return app, tea.Quit
	case key.Matches(msg, keys.Refresh):
		if app.refreshing {
			return app, nil
		}
		app.refreshing = true
		return app, refreshCmd(app.inst)
	case key.Matches(msg, keys.Start):
		return app, app.command(engine.CommandStart)
	case key.Matches(msg, keys.Stop):
		if !app.busy {
			app.confirmStop = true
		}
	case key.Matches(msg, keys.Tab):
		if app.panel == panelPhases {
			app.panel = panelReadings
		} else {
			app.panel = panelPhases
		}
	case key.Matches(msg, keys.Help):
		app.showHelp = !app.showHelp
	default:
		if app.panel == panelReadings {
			app.readings = app.readings.Update(msg)
			app.readings.clampPage(len(entity.Catalogue()))
		}
	}
	return app, nil
}

// command starts cmd unless another command is still settling.
func (app *App) command(cmd engine.Command) tea.Cmd {
	if app.busy {
		return nil
	}
	app.busy = true
	app.setStatus(commandLabel(cmd)+"...", false)
	return commandCmd(app.inst, cmd)
}

func (app *App) applyState(st engine.State) {
	app.state = st
	if st.Snapshot != nil && st.Snapshot != app.lastSnap {
		app.history.Push(model.PointFromSnapshot(st.Snapshot))
		app.lastSnap = st.Snapshot
	}
}

func (app *App) setStatus(s string, isErr bool) {
	app.status = s
	app.statusErr = isErr
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	var parts []string

	parts = append(parts, renderHeader(app))
	if app.confirmStop {
		parts = append(parts, renderStopConfirm(app))
		parts = append(parts, renderFooter(app))
		return strings.Join(parts, "\n")
	}
	if o := renderOverview(app); o != "" {
		parts = append(parts, o)
	}
	if m := renderMetricsRow(app); m != "" {
		parts = append(parts, m)
	}
	switch app.panel {
	case panelReadings:
		if r := renderReadings(app); r != "" {
			parts = append(parts, r)
		}
	default:
		if p := renderPhases(app); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

// waitForState blocks until the cache publishes a new state or the App closes.
func waitForState(states <-chan engine.State, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-states:
			return StateMsg{State: st}
		case <-done:
			return nil
		}
	}
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ClockMsg(t)
	})
}

// refreshCmd forces an immediate refresh of the instance's cache. The new
// state itself arrives through the subscription.
func refreshCmd(inst *engine.Instance) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return RefreshDoneMsg{Err: inst.Cache.ForcedRefresh(ctx)}
	}
}

// commandCmd runs cmd through the controller, including its settle delay and
// follow-up refresh.
func commandCmd(inst *engine.Instance, cmd engine.Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		inst.Controller.Execute(ctx, cmd)
		return CommandMsg{Result: inst.Controller.LastCommand()}
	}
}

func commandLabel(cmd engine.Command) string {
	switch cmd {
	case engine.CommandStart:
		return "Start"
	case engine.CommandStop:
		return "Stop"
	}
	return string(cmd)
}
