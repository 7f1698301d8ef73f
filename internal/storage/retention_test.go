package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestCleaner(t *testing.T, config RetentionCleanerConfig) (*SQLiteStore, *RetentionCleaner) {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	cleaner := NewRetentionCleaner(store, config, testLogger())
	t.Cleanup(func() {
		cleaner.Stop()
		store.Close()
	})
	return store, cleaner
}

func TestRetentionCleaner_RunNow(t *testing.T) {
	config := RetentionCleanerConfig{
		RetentionDays: 30,
		CleanupPeriod: 1 * time.Hour, // Long enough that only RunNow triggers
	}
	store, cleaner := setupTestCleaner(t, config)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		store.InsertSnapshot(createTestSnapshot("Building A - Lobby", 8.0, now.Add(-time.Duration(i)*time.Hour)))
	}
	for i := 0; i < 4; i++ {
		store.InsertSnapshot(createTestSnapshot("Building A - Lobby", 8.0, now.AddDate(0, 0, -40).Add(-time.Duration(i)*time.Hour)))
	}

	cleaner.RunNow()

	stats, err := store.GetStorageStats()
	if err != nil {
		t.Fatalf("GetStorageStats failed: %v", err)
	}
	if stats.TotalSnapshots != 3 {
		t.Errorf("TotalSnapshots = %d, want 3 after cleanup", stats.TotalSnapshots)
	}

	cleanerStats := cleaner.Stats()
	if cleanerStats.LastDeleteCount != 4 {
		t.Errorf("LastDeleteCount = %d, want 4", cleanerStats.LastDeleteCount)
	}
	if cleanerStats.TotalDeleted < 4 {
		t.Errorf("TotalDeleted = %d, want >= 4", cleanerStats.TotalDeleted)
	}
	if cleanerStats.LastCleanup.IsZero() {
		t.Error("LastCleanup should not be zero")
	}
}

func TestRetentionCleaner_InitialCleanup(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	// Seed old data before the cleaner starts; its startup cleanup should
	// remove it without waiting for the first tick.
	store.InsertSnapshot(createTestSnapshot("Building A - Lobby", 8.0, time.Now().UTC().AddDate(0, 0, -40)))

	cleaner := NewRetentionCleaner(store, RetentionCleanerConfig{
		RetentionDays: 30,
		CleanupPeriod: 1 * time.Hour,
	}, testLogger())
	defer cleaner.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cleaner.Stats().TotalCleanups >= 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	stats, _ := store.GetStorageStats()
	if stats.TotalSnapshots != 0 {
		t.Errorf("TotalSnapshots = %d, want 0 after initial cleanup", stats.TotalSnapshots)
	}
}

func TestRetentionCleaner_InvalidPeriodDefaults(t *testing.T) {
	_, cleaner := setupTestCleaner(t, RetentionCleanerConfig{
		RetentionDays: 30,
		CleanupPeriod: 0,
	})

	if cleaner.cleanupPeriod != 1*time.Hour {
		t.Errorf("cleanupPeriod = %v, want 1h default", cleaner.cleanupPeriod)
	}
}

func TestRetentionCleaner_StopIdempotent(t *testing.T) {
	_, cleaner := setupTestCleaner(t, DefaultRetentionCleanerConfig())

	cleaner.Stop()
	cleaner.Stop() // Second call must not panic or block
}

func TestRetentionCleaner_StatsRetentionDays(t *testing.T) {
	_, cleaner := setupTestCleaner(t, RetentionCleanerConfig{
		RetentionDays: 7,
		CleanupPeriod: 1 * time.Hour,
	})

	if got := cleaner.Stats().RetentionDays; got != 7 {
		t.Errorf("RetentionDays = %d, want 7", got)
	}
}
