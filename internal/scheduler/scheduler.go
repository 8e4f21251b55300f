package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type CityWarmer interface {
	WarmCities(ctx context.Context, cities []string) error
}

type SessionPruner interface {
	PruneIdle(ttl time.Duration) int
}

// Scheduler runs the periodic jobs: refreshing the cached view models of the
// default cities and dropping idle sessions.
type Scheduler struct {
	cron      *cron.Cron
	warmer    CityWarmer
	pruner    SessionPruner
	logger    *zap.Logger
	cities    []string
	interval  time.Duration
	idleTTL   time.Duration
	warmEntry cron.EntryID
	mu        sync.Mutex
	running   bool
	lastRun   time.Time
}

func NewScheduler(warmer CityWarmer, pruner SessionPruner, cities []string, interval, idleTTL time.Duration, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		), cron.WithLogger(cl)),
		warmer:   warmer,
		pruner:   pruner,
		logger:   logger,
		cities:   cities,
		interval: interval,
		idleTTL:  idleTTL,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if len(s.cities) > 0 {
		id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runFetch)
		if err != nil {
			return fmt.Errorf("failed to schedule warm-up: %w", err)
		}
		s.warmEntry = id
	} else {
		s.logger.Info("No default cities configured, skipping warm-up job")
	}

	if s.pruner != nil && s.idleTTL > 0 {
		if _, err := s.cron.AddFunc("@every 1m", s.runPrune); err != nil {
			return fmt.Errorf("failed to schedule session pruning: %w", err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Strings("cities", s.cities))

	// Run immediately on start
	if len(s.cities) > 0 {
		go s.runFetch()
	}
	return nil
}

func (s *Scheduler) runFetch() {
	s.mu.Lock()
	s.lastRun = time.Now()
	cities := append([]string(nil), s.cities...)
	s.mu.Unlock()

	startTime := time.Now()
	s.logger.Info("Starting scheduled weather fetch",
		zap.Time("start_time", startTime),
		zap.Strings("cities", cities))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := s.warmer.WarmCities(ctx, cities); err != nil {
		s.logger.Error("Scheduled weather fetch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
	} else {
		s.logger.Info("Scheduled weather fetch completed",
			zap.Duration("duration", time.Since(startTime)))
	}
}

func (s *Scheduler) runPrune() {
	s.pruner.PruneIdle(s.idleTTL)
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering weather fetch")
	go s.runFetch()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nextRun time.Time
	if s.warmEntry != 0 {
		nextRun = s.cron.Entry(s.warmEntry).Next
	}

	return map[string]interface{}{
		"running":  s.running,
		"interval": s.interval.String(),
		"last_run": s.lastRun,
		"next_run": nextRun,
		"cities":   s.cities,
	}
}

func (s *Scheduler) UpdateCities(cities []string) {
	s.mu.Lock()
	s.cities = cities
	s.mu.Unlock()

	s.logger.Info("Scheduler cities updated", zap.Strings("cities", cities))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
