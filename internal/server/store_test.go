package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/afroash/moss-monitor/internal/models"
)

func testSnapshot(location string, score float64) *models.Snapshot {
	return &models.Snapshot{
		Reading: models.Reading{
			Timestamp: time.Now(),
			Location:  location,
			Humidity:  65,
			Light:     500,
			Moisture:  600,
		},
		Classification: models.Classification{
			Label:       models.LabelHealthy,
			Confidence:  90,
			HealthScore: score,
		},
		GeneratedAt: time.Now(),
	}
}

func TestSnapshotStore_AddAndGetCurrent(t *testing.T) {
	store := NewSnapshotStore(10)

	if store.GetCurrent("Building A - Lobby") != nil {
		t.Error("empty store should return nil")
	}

	store.Add(testSnapshot("Building A - Lobby", 7.0))
	store.Add(testSnapshot("Building A - Lobby", 8.0))

	current := store.GetCurrent("Building A - Lobby")
	if current == nil {
		t.Fatal("GetCurrent returned nil")
	}
	if current.Classification.HealthScore != 8.0 {
		t.Errorf("HealthScore = %v, want the most recent 8.0", current.Classification.HealthScore)
	}
}

func TestSnapshotStore_Eviction(t *testing.T) {
	store := NewSnapshotStore(3)
	for i := 0; i < 5; i++ {
		store.Add(testSnapshot("wall", float64(i)))
	}

	latest := store.GetLatest("wall", 10)
	if len(latest) != 3 {
		t.Fatalf("got %d snapshots, want capacity 3", len(latest))
	}
	// Newest first.
	if latest[0].Classification.HealthScore != 4.0 {
		t.Errorf("newest score = %v, want 4.0", latest[0].Classification.HealthScore)
	}
	if latest[2].Classification.HealthScore != 2.0 {
		t.Errorf("oldest retained score = %v, want 2.0", latest[2].Classification.HealthScore)
	}
}

func TestSnapshotStore_Stats(t *testing.T) {
	store := NewSnapshotStore(10)
	for i := 0; i < 4; i++ {
		store.Add(testSnapshot(fmt.Sprintf("wall-%d", i%2), 5))
	}

	stats := store.Stats()
	if stats.TotalSnapshots != 4 {
		t.Errorf("TotalSnapshots = %d, want 4", stats.TotalSnapshots)
	}
	if stats.UniqueLocations != 2 {
		t.Errorf("UniqueLocations = %d, want 2", stats.UniqueLocations)
	}
	if stats.CurrentSnapshots != 4 {
		t.Errorf("CurrentSnapshots = %d, want 4", stats.CurrentSnapshots)
	}
	if stats.NewestSnapshot.IsZero() {
		t.Error("NewestSnapshot should be set")
	}
}

func TestSnapshotStore_Clear(t *testing.T) {
	store := NewSnapshotStore(10)
	store.Add(testSnapshot("wall", 5))
	store.Clear()

	if store.GetCurrent("wall") != nil {
		t.Error("store should be empty after Clear")
	}
	if stats := store.Stats(); stats.TotalSnapshots != 0 || stats.UniqueLocations != 0 {
		t.Errorf("Stats after Clear = %+v", stats)
	}
}
