package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dm/voltie-go/internal/client"
	"github.com/dm/voltie-go/internal/model"
)

// DefaultPollInterval is the fixed cadence of periodic refreshes.
const DefaultPollInterval = 5 * time.Second

// ErrNotReady is returned (wrapped) by FirstRefresh when the charger could not
// be reached during setup.
var ErrNotReady = errors.New("charger not ready")

// State is an immutable view of the cache. Snapshot is nil until the first
// successful fetch and is never cleared by a later failure.
type State struct {
	Snapshot    *model.Snapshot
	LastError   error
	LastAttempt time.Time
	LastSuccess time.Time
	NextDue     time.Time
}

// Ready reports whether a snapshot has ever been fetched.
func (s State) Ready() bool {
	return s.Snapshot != nil
}

// Cache owns the latest Snapshot of one charger. Refreshes are serialized;
// reads are lock-free and never trigger I/O.
type Cache struct {
	client   client.ChargerClient
	interval time.Duration
	pace     time.Duration
	log      zerolog.Logger

	state     atomic.Pointer[State]
	refreshMu sync.Mutex
	resetCh   chan struct{}

	listenersMu sync.Mutex
	listeners   map[int]func(State)
	nextID      int
}

// NewCache creates an empty cache. Nothing is fetched until FirstRefresh,
// Refresh or Run is called.
func NewCache(c client.ChargerClient, opts Options, log zerolog.Logger) *Cache {
	opts = opts.withDefaults()
	cache := &Cache{
		client:    c,
		interval:  opts.PollInterval,
		pace:      opts.Pace,
		log:       log,
		resetCh:   make(chan struct{}, 1),
		listeners: make(map[int]func(State)),
	}
	cache.state.Store(&State{})
	return cache
}

// Read returns the current snapshot, or false if none has been fetched yet.
func (c *Cache) Read() (*model.Snapshot, bool) {
	s := c.state.Load().Snapshot
	return s, s != nil
}

// State returns the snapshot together with the refresh metadata.
func (c *Cache) State() State {
	return *c.state.Load()
}

// Interval returns the periodic refresh cadence.
func (c *Cache) Interval() time.Duration {
	return c.interval
}

// FirstRefresh performs the setup-time fetch. On failure the returned error
// wraps both ErrNotReady and the underlying client error.
func (c *Cache) FirstRefresh(ctx context.Context) error {
	if err := c.refresh(ctx, "first"); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

// Refresh fetches a new snapshot. On failure the previous snapshot is kept
// and the error is recorded in State.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.refresh(ctx, "refresh")
}

// ForcedRefresh is an out-of-band Refresh. It also restarts the periodic
// schedule so the next tick is a full interval away.
func (c *Cache) ForcedRefresh(ctx context.Context) error {
	err := c.refresh(ctx, "forced")
	select {
	case c.resetCh <- struct{}{}:
	default:
	}
	return err
}

func (c *Cache) refresh(ctx context.Context, reason string) error {
	_, err := c.fetchAndStore(ctx, reason, false)
	// listeners run outside refreshMu so a slow one never holds up the next
	// refresh, and one that refreshes itself cannot deadlock
	c.notify(*c.state.Load())
	return err
}

// tick is the periodic refresh. It does nothing if a forced refresh ran since
// the tick fired, so the charger never sees two cycles back to back.
func (c *Cache) tick(ctx context.Context) {
	if ran, _ := c.fetchAndStore(ctx, "tick", true); ran {
		c.notify(*c.state.Load())
	}
}

func (c *Cache) fetchAndStore(ctx context.Context, reason string, onlyIfDue bool) (bool, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if onlyIfDue && !c.tickDue(time.Now()) {
		c.log.Debug().Msg("skipping tick after forced refresh")
		return false, nil
	}

	prev := c.state.Load()
	started := time.Now()
	snap, err := FetchSnapshot(ctx, c.client, c.pace)

	next := &State{
		Snapshot:    prev.Snapshot,
		LastSuccess: prev.LastSuccess,
		LastAttempt: started,
		NextDue:     started.Add(c.interval),
	}
	if err != nil {
		next.LastError = err
		c.log.Warn().Err(err).Str("reason", reason).Msg("refresh failed")
	} else {
		next.Snapshot = snap
		next.LastSuccess = snap.FetchedAt
		c.log.Debug().
			Str("reason", reason).
			Dur("took", time.Since(started)).
			Interface("status", snap.Status).
			Interface("power", snap.Power).
			Msg("refreshed")
	}
	c.state.Store(next)
	return true, err
}

// Subscribe registers fn to be called after every refresh attempt, successful
// or not, with the state current at that moment. fn runs on the refreshing
// goroutine after the refresh lock is released; it delays only the caller of
// that refresh. Use SubscribeLatest for consumers doing I/O. The returned
// function removes the registration.
func (c *Cache) Subscribe(fn func(State)) (unsubscribe func()) {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners, id)
			c.listenersMu.Unlock()
		})
	}
}

// SubscribeLatest runs fn on its own goroutine. Updates arriving while fn is
// busy are coalesced and fn sees only the newest state. Unsubscribing waits
// for a running fn to return.
func (c *Cache) SubscribeLatest(fn func(State)) (unsubscribe func()) {
	var (
		mu      sync.Mutex
		pending = make(chan State, 1)
		done    = make(chan struct{})
		exited  = make(chan struct{})
	)
	remove := c.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-pending:
		default:
		}
		pending <- s
	})

	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case s := <-pending:
				fn(s)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			remove()
			close(done)
			<-exited
		})
	}
}

func (c *Cache) notify(s State) {
	c.listenersMu.Lock()
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Run refreshes on a fixed ticker until ctx is cancelled. Failures are
// recorded and never stop the loop.
func (c *Cache) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.resetCh:
			ticker.Reset(c.interval)
			// a tick that fired during the forced refresh is stale
			select {
			case <-ticker.C:
			default:
			}
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tickDue reports whether a periodic refresh should run at now. A forced
// refresh pushes NextDue a full interval out.
func (c *Cache) tickDue(now time.Time) bool {
	return c.state.Load().NextDue.Sub(now) <= c.interval/2
}
