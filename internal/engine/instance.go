package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dm/voltie-go/internal/client"
)

// DefaultSetupRetry is the delay between setup attempts for a charger whose
// first refresh failed.
const DefaultSetupRetry = 30 * time.Second

// Instance wires together everything that belongs to one configured charger.
type Instance struct {
	Name       string
	Client     client.ChargerClient
	Cache      *Cache
	Controller *Controller

	setupRetry time.Duration
	log        zerolog.Logger
}

// NewInstance creates an instance for the named charger. log should already
// carry any fields identifying the charger.
func NewInstance(name string, c client.ChargerClient, opts Options, log zerolog.Logger) *Instance {
	opts = opts.withDefaults()
	cache := NewCache(c, opts, log)
	return &Instance{
		Name:       name,
		Client:     c,
		Cache:      cache,
		Controller: NewController(c, cache, opts, log),
		setupRetry: opts.SetupRetry,
		log:        log,
	}
}

// Setup performs the first refresh. A non-nil error wraps ErrNotReady.
func (i *Instance) Setup(ctx context.Context) error {
	return i.Cache.FirstRefresh(ctx)
}

// Run retries Setup until it succeeds, then refreshes periodically until ctx
// is cancelled.
func (i *Instance) Run(ctx context.Context) error {
	for {
		err := i.Setup(ctx)
		if err == nil {
			i.log.Info().Msg("charger ready")
			break
		}
		i.log.Warn().Err(err).Dur("retry_in", i.setupRetry).Msg("setup failed")
		if sleepCtx(ctx, i.setupRetry) != nil {
			return nil
		}
	}
	return i.Cache.Run(ctx)
}

// Close releases the client's idle connections.
func (i *Instance) Close() {
	i.Client.Close()
}
