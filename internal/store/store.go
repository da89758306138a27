package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/dm/voltie-go/internal/engine"
	"github.com/dm/voltie-go/internal/model"
)

const recordTimeout = 5 * time.Second

var ErrNoSnapshot = errors.New("no snapshot to record")

// Row is one recorded snapshot. Readings the charger did not report are nil.
type Row struct {
	Charger       string    `db:"charger" json:"charger"`
	FetchedAtMs   int64     `db:"fetched_at" json:"-"`
	FetchedAt     time.Time `db:"-" json:"fetched_at"`
	ChargePower   *float64  `db:"charge_power" json:"charge_power"`
	ChargeCurrent *float64  `db:"charge_current" json:"charge_current"`
	SessionEnergy *float64  `db:"session_energy" json:"session_energy"`
	MainsVoltage  *float64  `db:"mains_voltage" json:"mains_voltage"`
	IsCharging    bool      `db:"is_charging" json:"is_charging"`
	CarConnected  bool      `db:"car_connected" json:"car_connected"`
	StatusJSON    string    `db:"status_json" json:"-"`
	PowerJSON     string    `db:"power_json" json:"-"`
}

// Snapshot decodes the stored endpoint bodies back into a Snapshot.
func (r Row) Snapshot() (*model.Snapshot, error) {
	s := &model.Snapshot{FetchedAt: r.FetchedAt}
	if err := json.Unmarshal([]byte(r.StatusJSON), &s.Status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	if err := json.Unmarshal([]byte(r.PowerJSON), &s.Power); err != nil {
		return nil, fmt.Errorf("decode power: %w", err)
	}
	return s, nil
}

// Subscriber is satisfied by *engine.Cache.
type Subscriber interface {
	SubscribeLatest(fn func(engine.State)) (unsubscribe func())
}

// Recorder persists snapshots to a SQL database.
type Recorder struct {
	db  *sqlx.DB
	log zerolog.Logger

	mu   sync.Mutex
	last map[string]*model.Snapshot
}

// Open connects to the database and creates the schema if needed. driver is
// "sqlite3" or "pgx".
func Open(ctx context.Context, driver, dsn string, log zerolog.Logger) (*Recorder, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, createReadingsSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	log.Info().Str("driver", driver).Msg("history store ready")
	return &Recorder{db: db, log: log, last: make(map[string]*model.Snapshot)}, nil
}

// Record stores s under the given charger name.
func (r *Recorder) Record(ctx context.Context, charger string, s *model.Snapshot) error {
	if s == nil {
		return ErrNoSnapshot
	}
	status, err := json.Marshal(s.Status)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	power, err := json.Marshal(s.Power)
	if err != nil {
		return fmt.Errorf("encode power: %w", err)
	}
	charging, _ := s.Bool(model.SourceStatus, "is_charging")
	connected, _ := s.Bool(model.SourceStatus, "is_car_connected")

	_, err = r.db.ExecContext(ctx, r.db.Rebind(insertReadingSQL),
		charger, s.FetchedAt.UnixMilli(),
		number(s, "charge_power"),
		number(s, "charge_current"),
		number(s, "cdr", "chg_energy"),
		number(s, "mains_voltage"),
		boolInt(charging), boolInt(connected),
		string(status), string(power),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Recent returns up to limit rows for charger, newest first.
func (r *Recorder) Recent(ctx context.Context, charger string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []Row
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(selectRecentSQL), charger, limit); err != nil {
		return nil, fmt.Errorf("select readings: %w", err)
	}
	for i := range rows {
		rows[i].FetchedAt = time.UnixMilli(rows[i].FetchedAtMs)
	}
	return rows, nil
}

// Prune deletes rows fetched before cutoff and returns how many were removed.
func (r *Recorder) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(deleteOlderSQL), cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune readings: %w", err)
	}
	return res.RowsAffected()
}

// Attach records new snapshots published by src under charger. Inserts run
// off the polling goroutine; if the database falls behind, only the newest
// snapshot is kept. Failed refreshes that still carry the previous snapshot
// are not recorded twice.
func (r *Recorder) Attach(charger string, src Subscriber) (detach func()) {
	return src.SubscribeLatest(func(st engine.State) {
		if st.Snapshot == nil {
			return
		}
		r.mu.Lock()
		seen := r.last[charger] == st.Snapshot
		r.last[charger] = st.Snapshot
		r.mu.Unlock()
		if seen {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := r.Record(ctx, charger, st.Snapshot); err != nil {
			r.log.Error().Err(err).Str("charger", charger).Msg("record snapshot")
		}
	})
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

func number(s *model.Snapshot, path ...string) *float64 {
	v, ok := s.Number(model.SourceStatus, path...)
	if !ok {
		return nil
	}
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
