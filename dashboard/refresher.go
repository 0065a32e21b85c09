package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultSchedule sets the default dataset refresh cron schedule.
var DefaultSchedule = "@every 5m"

var (
	ErrAlreadyRunning = errors.New("refresher already running")
	ErrNotRunning     = errors.New("refresher not running")
)

type RefresherConfig struct {
	Loader   Loader
	Schedule string
	Timeout  time.Duration
}

// Refresher reloads the dashboard dataset on a cron schedule and serves
// the latest snapshot.  Snapshots are never mutated once published.
type Refresher struct {
	Config RefresherConfig

	cron    *cron.Cron
	current *Dataset
	mu      sync.RWMutex
	runMu   sync.Mutex
}

func NewRefresher(cfg RefresherConfig) *Refresher {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	r := &Refresher{
		Config: cfg,
	}
	return r
}

// Start loads an initial snapshot and schedules periodic refreshes.
func (r *Refresher) Start() error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.cron != nil {
		return ErrAlreadyRunning
	}

	if err := r.Refresh(); err != nil {
		return err
	}

	c := cron.New()
	log.WithField("schedule", r.Config.Schedule).Debug("Adding dataset refresh to cron")
	if _, err := c.AddFunc(r.Config.Schedule, func() {
		if err := r.Refresh(); err != nil {
			log.Errorf("Dataset refresh failed: %s", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling refresh %q: %s", r.Config.Schedule, err)
	}
	c.Start()
	r.cron = c
	return nil
}

func (r *Refresher) Stop() error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.cron == nil {
		return ErrNotRunning
	}
	<-r.cron.Stop().Done()
	r.cron = nil
	return nil
}

// Refresh loads a new snapshot immediately.  On failure the previous
// snapshot stays in place.
func (r *Refresher) Refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.Config.Timeout)
	defer cancel()

	ds, err := r.Config.Loader.Load(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.current = ds
	r.mu.Unlock()

	log.WithField("source", ds.Source).WithField("projects", len(ds.Projects)).Debug("Dataset refreshed")
	return nil
}

// Current returns the latest snapshot, or nil before the first load.
func (r *Refresher) Current() *Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
