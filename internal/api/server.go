package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dm/voltie-go/internal/engine"
	"github.com/dm/voltie-go/internal/store"
)

// HistoryReader is satisfied by *store.Recorder.
type HistoryReader interface {
	Recent(ctx context.Context, charger string, limit int) ([]store.Row, error)
}

type Options struct {
	// History is optional; without it the history route answers 404.
	History HistoryReader
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	Log      zerolog.Logger
}

// Server exposes charger readings and controls over HTTP.
type Server struct {
	app       *fiber.App
	ctx       context.Context
	instances map[string]*engine.Instance
	order     []string
	history   HistoryReader
	log       zerolog.Logger

	// one command per charger at a time
	busy     map[string]*atomic.Bool
	commands sync.WaitGroup
}

// New builds the HTTP server. Commands started through the API run under ctx
// so they are abandoned on shutdown.
func New(ctx context.Context, instances []*engine.Instance, opts Options) *Server {
	s := &Server{
		ctx:       ctx,
		instances: make(map[string]*engine.Instance, len(instances)),
		busy:      make(map[string]*atomic.Bool, len(instances)),
		history:   opts.History,
		log:       opts.Log,
	}
	for _, inst := range instances {
		s.instances[inst.Name] = inst
		s.busy[inst.Name] = new(atomic.Bool)
		s.order = append(s.order, inst.Name)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "voltie",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())

	s.app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	if opts.Gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	g := s.app.Group("/api/chargers")
	g.Get("/", s.listChargers)
	g.Get("/:name", s.getCharger)
	g.Get("/:name/snapshot", s.getSnapshot)
	g.Get("/:name/history", s.getHistory)
	g.Post("/:name/refresh", s.postRefresh)
	g.Post("/:name/start", s.postCommand(engine.CommandStart))
	g.Post("/:name/stop", s.postCommand(engine.CommandStop))

	return s
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("api listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits up to timeout for in-flight
// requests, then for commands started through the API. Those run under the
// context given to New and end once it is cancelled.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.app.ShutdownWithTimeout(timeout)
	s.commands.Wait()
	return err
}

func (s *Server) lookup(c *fiber.Ctx) (*engine.Instance, error) {
	inst, ok := s.instances[c.Params("name")]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "unknown charger "+c.Params("name"))
	}
	return inst, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
