// Package supervisor wires the accounting core to the telemetry,
// persistence and capping collaborators and runs the three long-lived
// workers (thermal, voltage-poll, credit) plus the exactly-once final
// save on shutdown.
package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/voltcapd/voltcapd/internal/config"
	"github.com/voltcapd/voltcapd/internal/telemetry"
	"github.com/voltcapd/voltcapd/internal/types"
)

// Accounting is the subset of *accounting.Core the supervisor drives.
// Expressed as an interface so tests can substitute a fake core.
type Accounting interface {
	OnRail(snap telemetry.RailSnapshot)
	CombinedUpdate(snap telemetry.RailSnapshot, ev telemetry.ThermalEvent)
	Credit(seconds float64)
	Balance() types.Points
}

// Persister saves the running balance. *persistence.Store implements it.
type Persister interface {
	Save(balance types.Points) error
}

// ThermalReceiver blocks until a thermal event is available.
// *telemetry.ThermalSubscriber implements it.
type ThermalReceiver interface {
	Receive() (telemetry.ThermalEvent, error)
}

// RailReader reads one rail-stats snapshot. telemetry.ReadRailStats has
// this shape; tests substitute a stub.
type RailReader func(path string) (telemetry.RailSnapshot, error)

// Supervisor owns the three worker loops and the mutable sleep/save
// intervals the debug FIFO can retune at runtime.
type Supervisor struct {
	cfg      config.Config
	core     Accounting
	store    Persister
	thermal  ThermalReceiver
	readRail RailReader
	log      *slog.Logger

	mu            sync.Mutex
	sleepInterval time.Duration
	saveInterval  time.Duration
}

// New constructs a Supervisor. thermal may be nil to disable the
// thermal worker (e.g. in environments without a thermal zone, or in
// tests that only exercise the poll/credit workers).
func New(cfg config.Config, core Accounting, store Persister, thermal ThermalReceiver, log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{
		cfg:           cfg,
		core:          core,
		store:         store,
		thermal:       thermal,
		readRail:      telemetry.ReadRailStats,
		log:           log,
		sleepInterval: minDuration(cfg.UpdateInterval, cfg.SaveInterval),
		saveInterval:  cfg.SaveInterval,
	}
}

// SetRailReader overrides how rail-stats snapshots are read; used by
// tests to avoid touching the real filesystem.
func (s *Supervisor) SetRailReader(r RailReader) {
	s.readRail = r
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// SleepInterval returns the credit worker's current sleep cadence.
func (s *Supervisor) SleepInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sleepInterval
}

// SetSleepInterval retunes the credit worker's sleep cadence (the debug
// FIFO's write_sleep_time command).
func (s *Supervisor) SetSleepInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleepInterval = d
}

// SaveInterval returns the cadence at which accumulated credit-worker
// time triggers a persistence save.
func (s *Supervisor) SaveInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveInterval
}

// SetSaveInterval retunes the save cadence (the debug FIFO's
// write_save_time command).
func (s *Supervisor) SetSaveInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveInterval = d
}

// Run starts the workers and blocks until ctx is cancelled, then performs
// the exactly-once final save before returning.
func (s *Supervisor) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	if s.thermal != nil {
		wg.Add(1)
		go func() { defer wg.Done(); s.thermalWorker(ctx) }()
	}
	wg.Add(2)
	go func() { defer wg.Done(); s.pollWorker(ctx) }()
	go func() { defer wg.Done(); s.creditWorker(ctx) }()

	<-ctx.Done()
	wg.Wait()

	if err := s.store.Save(s.core.Balance()); err != nil {
		s.log.Warn("final save on shutdown failed", "err", err)
		return err
	}
	s.log.Info("saved state on shutdown")
	return nil
}

// thermalWorker blocks on the thermal socket; on each event it takes a
// fresh rail snapshot and applies both as one combined update, so the
// rail debit posts against the pre-event temperature bin.
func (s *Supervisor) thermalWorker(ctx context.Context) {
	type received struct {
		ev  telemetry.ThermalEvent
		err error
	}
	events := make(chan received)

	go func() {
		for {
			ev, err := s.thermal.Receive()
			select {
			case events <- received{ev, err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case r := <-events:
			if r.err != nil {
				s.log.Warn("thermal receive failed", "err", r.err)
				continue
			}
			snap, err := s.readRail(s.cfg.RailStatsPath)
			if err != nil {
				s.log.Warn("rail-stats read failed on thermal event", "err", err)
				snap = telemetry.RailSnapshot{}
			}
			s.core.CombinedUpdate(snap, r.ev)
		}
	}
}

// pollWorker takes a rail snapshot every PollInterval and applies it
// alone, with no thermal change.
func (s *Supervisor) pollWorker(ctx context.Context) {
	t := time.NewTicker(s.cfg.PollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap, err := s.readRail(s.cfg.RailStatsPath)
			if err != nil {
				s.log.Warn("rail-stats poll failed", "err", err)
				continue
			}
			s.core.OnRail(snap)
		}
	}
}

// creditWorker sleeps for the current sleep interval using a monotonic
// clock, credits the actually-elapsed time (time.Since carries a
// monotonic reading, so wall-clock adjustments never skew accrual), and
// saves once the accumulated elapsed time crosses the save interval.
func (s *Supervisor) creditWorker(ctx context.Context) {
	var saveAccum time.Duration

	for {
		interval := s.SleepInterval()
		start := time.Now()

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		elapsed := time.Since(start)
		s.core.Credit(elapsed.Seconds())

		saveAccum += elapsed
		if saveAccum >= s.SaveInterval() {
			saveAccum = 0
			if err := s.store.Save(s.core.Balance()); err != nil {
				s.log.Warn("periodic save failed", "err", err)
			}
		}
	}
}
