package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dm/voltie-go/internal/engine"
	"github.com/dm/voltie-go/internal/entity"
)

type commandView struct {
	Command string    `json:"command"`
	At      time.Time `json:"at"`
	Error   string    `json:"error,omitempty"`
}

type chargerView struct {
	Name        string       `json:"name"`
	Host        string       `json:"host"`
	Ready       bool         `json:"ready"`
	LastError   string       `json:"last_error,omitempty"`
	LastAttempt *time.Time   `json:"last_attempt,omitempty"`
	LastSuccess *time.Time   `json:"last_success,omitempty"`
	NextDue     *time.Time   `json:"next_due,omitempty"`
	LastCommand *commandView `json:"last_command,omitempty"`
}

type readingView struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Value       any    `json:"value"`
	State       string `json:"state"`
	Available   bool   `json:"available"`
	Unit        string `json:"unit,omitempty"`
	DeviceClass string `json:"device_class,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func viewOf(inst *engine.Instance) chargerView {
	st := inst.Cache.State()
	v := chargerView{
		Name:        inst.Name,
		Host:        inst.Client.BaseURL(),
		Ready:       st.Ready(),
		LastAttempt: timePtr(st.LastAttempt),
		LastSuccess: timePtr(st.LastSuccess),
		NextDue:     timePtr(st.NextDue),
	}
	if st.LastError != nil {
		v.LastError = st.LastError.Error()
	}
	if last := inst.Controller.LastCommand(); last.Command != "" {
		v.LastCommand = &commandView{Command: string(last.Command), At: last.At}
		if last.Err != nil {
			v.LastCommand.Error = last.Err.Error()
		}
	}
	return v
}

func (s *Server) listChargers(c *fiber.Ctx) error {
	out := make([]chargerView, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, viewOf(s.instances[name]))
	}
	return c.JSON(out)
}

func (s *Server) getCharger(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	snap, _ := inst.Cache.Read()
	readings := make(map[string]readingView)
	for _, r := range entity.Project(snap) {
		readings[r.Key] = readingView{
			Name:        r.DisplayName(inst.Name),
			Kind:        string(r.Kind),
			Value:       r.Value,
			State:       r.State(),
			Available:   r.Available,
			Unit:        r.Unit,
			DeviceClass: r.DeviceClass,
		}
	}
	return c.JSON(fiber.Map{
		"charger":  viewOf(inst),
		"device":   entity.Device(inst.Name),
		"readings": readings,
	})
}

func (s *Server) getSnapshot(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	snap, ok := inst.Cache.Read()
	if !ok {
		return fiber.NewError(fiber.StatusServiceUnavailable, "charger not ready")
	}
	return c.JSON(fiber.Map{
		"status":     snap.Status,
		"power":      snap.Power,
		"fetched_at": snap.FetchedAt,
	})
}

func (s *Server) getHistory(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	if s.history == nil {
		return fiber.NewError(fiber.StatusNotFound, "history store disabled")
	}
	rows, err := s.history.Recent(c.UserContext(), inst.Name, c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (s *Server) postRefresh(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	if err := inst.Cache.ForcedRefresh(c.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(viewOf(inst))
}

// postCommand accepts the command and runs it in the background; its outcome
// shows up as last_command on the charger view. While a command is settling a
// second one is refused with 409.
func (s *Server) postCommand(cmd engine.Command) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inst, err := s.lookup(c)
		if err != nil {
			return err
		}
		busy := s.busy[inst.Name]
		if !busy.CompareAndSwap(false, true) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "a command is already running for " + inst.Name,
				"charger": viewOf(inst),
			})
		}
		s.commands.Add(1)
		go func() {
			defer s.commands.Done()
			defer busy.Store(false)
			inst.Controller.Execute(s.ctx, cmd)
		}()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"charger": inst.Name,
			"command": string(cmd),
		})
	}
}
