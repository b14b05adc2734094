package worker

import (
	"sync"
	"time"

	"github.com/iabalyuk/geoguide/storage"
	"go.uber.org/zap"
)

const (
	defaultInterval       = time.Hour
	defaultDetailCacheTTL = 7 * 24 * time.Hour
)

// SessionCounter reports how many dialogue sessions are live
type SessionCounter interface {
	Len() int
}

// Stats is the outcome of one maintenance pass
type Stats struct {
	PrunedDetails int
	CachedDetails int
	Sessions      int
	LastUpdated   time.Time
}

// BackgroundWorker periodically prunes the place detail cache and reports usage
type BackgroundWorker struct {
	storage        storage.StorageInterface
	sessions       SessionCounter
	logger         *zap.Logger
	interval       time.Duration
	detailCacheTTL time.Duration

	stopCh       chan struct{}
	wg           sync.WaitGroup
	isRunning    bool
	runningMutex sync.Mutex

	statsMutex sync.RWMutex
	lastStats  Stats
}

// NewBackgroundWorkerConfig represents the configuration for the background worker
type NewBackgroundWorkerConfig struct {
	Storage        storage.StorageInterface
	Sessions       SessionCounter
	Logger         *zap.Logger
	Interval       time.Duration // How often to run a pass
	DetailCacheTTL time.Duration // Details older than this are pruned
}

// NewBackgroundWorker creates a new background worker instance
func NewBackgroundWorker(config NewBackgroundWorkerConfig) *BackgroundWorker {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "worker"))

	interval := config.Interval
	if interval <= 0 {
		interval = defaultInterval
		logger.Debug("Invalid or zero Interval provided, using default", zap.Duration("interval", interval))
	}
	ttl := config.DetailCacheTTL
	if ttl <= 0 {
		ttl = defaultDetailCacheTTL
	}

	return &BackgroundWorker{
		storage:        config.Storage,
		sessions:       config.Sessions,
		logger:         logger,
		interval:       interval,
		detailCacheTTL: ttl,
		stopCh:         make(chan struct{}),
	}
}

// Start starts the background worker
func (w *BackgroundWorker) Start() {
	w.runningMutex.Lock()
	defer w.runningMutex.Unlock()

	if w.isRunning {
		return
	}

	w.isRunning = true
	w.wg.Add(1)
	go w.run()
}

// Stop stops the background worker and waits for the current pass to finish
func (w *BackgroundWorker) Stop() {
	w.runningMutex.Lock()
	if !w.isRunning {
		w.runningMutex.Unlock()
		return
	}
	w.logger.Info("Stopping background worker...")
	close(w.stopCh)
	w.isRunning = false
	w.runningMutex.Unlock()

	w.wg.Wait()
	w.logger.Info("Background worker stopped")
}

// run is the main worker loop
func (w *BackgroundWorker) run() {
	defer w.wg.Done()
	w.logger.Info("Background worker run loop started", zap.Duration("interval", w.interval))

	w.Sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep()
		case <-w.stopCh:
			w.logger.Debug("Background worker run loop stopping")
			return
		}
	}
}

// Sweep runs one maintenance pass and returns its stats
func (w *BackgroundWorker) Sweep() Stats {
	var stats Stats
	if w.storage != nil {
		stats.PrunedDetails = w.storage.PruneOlderThan(w.detailCacheTTL)
		stats.CachedDetails = w.storage.Count()
		stats.LastUpdated = w.storage.GetLastUpdated()
	}
	if w.sessions != nil {
		stats.Sessions = w.sessions.Len()
	}

	w.statsMutex.Lock()
	w.lastStats = stats
	w.statsMutex.Unlock()

	fields := []zap.Field{
		zap.Int("pruned_details", stats.PrunedDetails),
		zap.Int("cached_details", stats.CachedDetails),
		zap.Int("sessions", stats.Sessions),
	}
	if !stats.LastUpdated.IsZero() {
		fields = append(fields, zap.Time("cache_last_updated", stats.LastUpdated))
	}
	w.logger.Info("Maintenance pass finished", fields...)
	return stats
}

// LastStats returns the stats of the most recent pass
func (w *BackgroundWorker) LastStats() Stats {
	w.statsMutex.RLock()
	defer w.statsMutex.RUnlock()
	return w.lastStats
}
