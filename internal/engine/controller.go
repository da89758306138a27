package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dm/voltie-go/internal/client"
)

// DefaultSettleDelay is how long the charger needs after a start/stop before
// its status endpoint reflects the change.
const DefaultSettleDelay = 3 * time.Second

// Command is a control action understood by the charger.
type Command string

const (
	CommandStart Command = "start"
	CommandStop  Command = "stop"
)

// CommandResult records the outcome of the most recent command.
type CommandResult struct {
	Command Command
	At      time.Time
	Err     error
}

// Controller sends start/stop commands and refreshes the cache once the
// charger has settled. Command failures are logged and recorded, never
// returned.
type Controller struct {
	client client.ChargerClient
	cache  *Cache
	settle time.Duration
	log    zerolog.Logger

	mu   sync.Mutex
	last CommandResult
}

func NewController(c client.ChargerClient, cache *Cache, opts Options, log zerolog.Logger) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		client: c,
		cache:  cache,
		settle: opts.SettleDelay,
		log:    log,
	}
}

// TurnOn asks the charger to start charging.
func (c *Controller) TurnOn(ctx context.Context) {
	c.execute(ctx, CommandStart)
}

// TurnOff asks the charger to stop charging.
func (c *Controller) TurnOff(ctx context.Context) {
	c.execute(ctx, CommandStop)
}

// Execute runs cmd. Unknown commands are recorded as failures.
func (c *Controller) Execute(ctx context.Context, cmd Command) {
	c.execute(ctx, cmd)
}

// LastCommand returns the outcome of the most recent command. The zero value
// means no command has been sent.
func (c *Controller) LastCommand() CommandResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Controller) execute(ctx context.Context, cmd Command) {
	c.log.Info().Str("command", string(cmd)).Str("host", c.client.BaseURL()).Msg("sending command")

	var err error
	switch cmd {
	case CommandStart:
		err = c.client.Start(ctx)
	case CommandStop:
		err = c.client.Stop(ctx)
	default:
		err = &UnknownCommandError{Command: cmd}
	}
	c.record(cmd, err)
	if err != nil {
		c.log.Error().Err(err).Str("command", string(cmd)).Msg("error communicating with charger")
		return
	}

	if err := sleepCtx(ctx, c.settle); err != nil {
		return
	}
	// Refresh failures are already recorded in the cache state.
	_ = c.cache.ForcedRefresh(ctx)
}

func (c *Controller) record(cmd Command, err error) {
	c.mu.Lock()
	c.last = CommandResult{Command: cmd, At: time.Now(), Err: err}
	c.mu.Unlock()
}

// UnknownCommandError is recorded when Execute receives a command the charger
// does not support.
type UnknownCommandError struct {
	Command Command
}

func (e *UnknownCommandError) Error() string {
	return "unknown command " + string(e.Command)
}
