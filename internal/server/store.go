package server

import (
	"sync"
	"time"

	"github.com/afroash/moss-monitor/internal/models"
)

// SnapshotStore is an in-memory ring buffer of dashboard snapshots keyed by
// location.
type SnapshotStore struct {
	capacity       int
	data           map[string][]*models.Snapshot
	mutex          sync.RWMutex
	totalSnapshots int64
}

// NewSnapshotStore creates a new in-memory store keeping up to capacity
// snapshots per location.
func NewSnapshotStore(capacity int) *SnapshotStore {
	return &SnapshotStore{
		capacity: capacity,
		data:     make(map[string][]*models.Snapshot),
	}
}

// Add adds a snapshot to the store, evicting the oldest entry for that
// location when the ring is full.
func (ss *SnapshotStore) Add(snap *models.Snapshot) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	location := snap.Reading.Location
	snapshots := ss.data[location]
	if len(snapshots) >= ss.capacity {
		snapshots = snapshots[1:]
	}
	snapshots = append(snapshots, snap)
	ss.data[location] = snapshots
	ss.totalSnapshots++
}

// GetCurrent returns the most recent snapshot for a location, or nil.
func (ss *SnapshotStore) GetCurrent(location string) *models.Snapshot {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	snapshots := ss.data[location]
	if len(snapshots) == 0 {
		return nil
	}
	c := *snapshots[len(snapshots)-1]
	return &c
}

// GetLatest returns the n most recent snapshots for a location, newest
// first.
func (ss *SnapshotStore) GetLatest(location string, n int) []*models.Snapshot {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	snapshots := ss.data[location]
	if len(snapshots) == 0 {
		return nil
	}

	start := len(snapshots) - n
	if start < 0 {
		start = 0
	}

	result := make([]*models.Snapshot, 0, len(snapshots)-start)
	for i := len(snapshots) - 1; i >= start; i-- {
		c := *snapshots[i]
		result = append(result, &c)
	}
	return result
}

// Locations returns all locations that have snapshots.
func (ss *SnapshotStore) Locations() []string {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	keys := make([]string, 0, len(ss.data))
	for key := range ss.data {
		keys = append(keys, key)
	}
	return keys
}

// StoreStats contains statistics about the snapshot store
type StoreStats struct {
	TotalSnapshots   int64     `json:"total_snapshots"`
	UniqueLocations  int       `json:"unique_locations"`
	CurrentSnapshots int       `json:"current_snapshots"`
	NewestSnapshot   time.Time `json:"newest_snapshot,omitempty"`
}

// Stats returns statistics about the store
func (ss *SnapshotStore) Stats() StoreStats {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	stats := StoreStats{
		TotalSnapshots:  ss.totalSnapshots,
		UniqueLocations: len(ss.data),
	}
	for _, snapshots := range ss.data {
		stats.CurrentSnapshots += len(snapshots)
		if n := len(snapshots); n > 0 {
			if ts := snapshots[n-1].GeneratedAt; ts.After(stats.NewestSnapshot) {
				stats.NewestSnapshot = ts
			}
		}
	}
	return stats
}

// Clear removes all data from the store
func (ss *SnapshotStore) Clear() {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	ss.data = make(map[string][]*models.Snapshot)
	ss.totalSnapshots = 0
}
