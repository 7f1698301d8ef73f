package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/models"
)

// SnapshotWriter handles async batched writes of dashboard snapshots to the
// database, keeping the refresh loop free of storage latency.
type SnapshotWriter struct {
	store       *SQLiteStore
	logger      zerolog.Logger
	writeChan   chan *models.Snapshot
	batchSize   int
	flushPeriod time.Duration
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup

	// Stats
	mu            sync.RWMutex
	totalWritten  int64
	totalBatches  int64
	totalErrors   int64
	lastWriteTime time.Time
}

// SnapshotWriterConfig holds configuration for the async writer
type SnapshotWriterConfig struct {
	BatchSize   int           // Number of snapshots to batch before writing (default: 100)
	FlushPeriod time.Duration // Max time between flushes (default: 5s)
	ChannelSize int           // Size of the write channel buffer (default: 1000)
}

// DefaultSnapshotWriterConfig returns sensible defaults
func DefaultSnapshotWriterConfig() SnapshotWriterConfig {
	return SnapshotWriterConfig{
		BatchSize:   100,
		FlushPeriod: 5 * time.Second,
		ChannelSize: 1000,
	}
}

// SnapshotWriterStats contains statistics about the writer
type SnapshotWriterStats struct {
	TotalWritten  int64     `json:"total_written"`
	TotalBatches  int64     `json:"total_batches"`
	TotalErrors   int64     `json:"total_errors"`
	LastWriteTime time.Time `json:"last_write_time,omitempty"`
	QueueLength   int       `json:"queue_length"`
}

// NewSnapshotWriter creates a new async database writer
func NewSnapshotWriter(store *SQLiteStore, config SnapshotWriterConfig, logger zerolog.Logger) *SnapshotWriter {
	w := &SnapshotWriter{
		store:       store,
		logger:      logger,
		writeChan:   make(chan *models.Snapshot, config.ChannelSize),
		batchSize:   config.BatchSize,
		flushPeriod: config.FlushPeriod,
		stopChan:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writerLoop()

	logger.Info().
		Int("batch_size", config.BatchSize).
		Dur("flush_period", config.FlushPeriod).
		Int("channel_size", config.ChannelSize).
		Msg("SnapshotWriter started")

	return w
}

// Write queues a snapshot for async writing to the database.
// Returns true if queued, false if dropped (channel full)
func (w *SnapshotWriter) Write(snap *models.Snapshot) bool {
	select {
	case w.writeChan <- snap:
		return true
	default:
		w.logger.Warn().Msg("SnapshotWriter channel full, dropping snapshot")
		return false
	}
}

// writerLoop is the background goroutine that batches and writes snapshots
func (w *SnapshotWriter) writerLoop() {
	defer w.wg.Done()

	batch := make([]*models.Snapshot, 0, w.batchSize)
	ticker := time.NewTicker(w.flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap := <-w.writeChan:
			batch = append(batch, snap)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = make([]*models.Snapshot, 0, w.batchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = make([]*models.Snapshot, 0, w.batchSize)
			}

		case <-w.stopChan:
			// Drain remaining snapshots from channel
			draining := true
			for draining {
				select {
				case snap := <-w.writeChan:
					batch = append(batch, snap)
				default:
					draining = false
				}
			}
			if len(batch) > 0 {
				w.flush(batch)
			}
			w.logger.Info().Msg("SnapshotWriter stopped")
			return
		}
	}
}

// flush writes a batch to the database
func (w *SnapshotWriter) flush(batch []*models.Snapshot) {
	if len(batch) == 0 {
		return
	}

	err := w.store.InsertBatch(batch)

	w.mu.Lock()
	if err != nil {
		w.totalErrors++
		w.logger.Error().Err(err).Int("batch_size", len(batch)).Msg("Failed to write batch")
	} else {
		w.totalWritten += int64(len(batch))
		w.totalBatches++
		w.lastWriteTime = time.Now()
		w.logger.Debug().Int("count", len(batch)).Msg("Flushed batch")
	}
	w.mu.Unlock()
}

// Stop gracefully stops the writer, flushing any remaining data
func (w *SnapshotWriter) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.wg.Wait()
	})
}

// Stats returns current writer statistics
func (w *SnapshotWriter) Stats() SnapshotWriterStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return SnapshotWriterStats{
		TotalWritten:  w.totalWritten,
		TotalBatches:  w.totalBatches,
		TotalErrors:   w.totalErrors,
		LastWriteTime: w.lastWriteTime,
		QueueLength:   len(w.writeChan),
	}
}
