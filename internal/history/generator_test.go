package history

import (
	"math/rand"
	"testing"
	"time"
)

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

func TestGenerator_SeriesShape(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	for _, seed := range []int64{1, 2, 99} {
		readings := newTestGenerator(seed).Generate(now)

		if len(readings) != 97 {
			t.Fatalf("seed %d: got %d readings, want 97", seed, len(readings))
		}
		if first := readings[0].Timestamp; !first.Equal(now.Add(-24 * time.Hour)) {
			t.Errorf("seed %d: first timestamp = %v, want %v", seed, first, now.Add(-24*time.Hour))
		}
		if last := readings[len(readings)-1].Timestamp; !last.Equal(now) {
			t.Errorf("seed %d: last timestamp = %v, want %v", seed, last, now)
		}
		for i := 1; i < len(readings); i++ {
			if gap := readings[i].Timestamp.Sub(readings[i-1].Timestamp); gap != 15*time.Minute {
				t.Fatalf("seed %d: gap between points %d and %d is %v, want 15m", seed, i-1, i, gap)
			}
		}
	}
}

func TestGenerator_ReadingsWithinBounds(t *testing.T) {
	// Run enough realizations that watering and peak-sun boosts are hit
	// many times; the clamp must hold everywhere.
	total := 0
	for seed := int64(0); seed < 15; seed++ {
		now := time.Date(2026, 3, 1, int(seed)%24, 15, 0, 0, time.UTC)
		for _, r := range newTestGenerator(seed).Generate(now) {
			total++
			if !r.IsValid() {
				t.Fatalf("seed %d: out-of-bounds reading %+v", seed, r)
			}
		}
	}
	if total < 1000 {
		t.Fatalf("only %d readings checked, want at least 1000", total)
	}
}

func TestGenerator_FreshRealizationPerCall(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gen := newTestGenerator(5)

	first := gen.Generate(now)
	second := gen.Generate(now)

	identical := true
	for i := range first {
		if first[i] != second[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Error("two calls at the same instant returned the same realization")
	}
}

func TestGenerator_WeeklySummary(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	summaries := newTestGenerator(8).WeeklySummary(now)

	if len(summaries) != 7 {
		t.Fatalf("got %d summaries, want 7", len(summaries))
	}
	for i, s := range summaries {
		if want := now.AddDate(0, 0, -i); !s.Date.Equal(want) {
			t.Errorf("summary %d: date = %v, want %v", i, s.Date, want)
		}
		if s.AvgHumidity < 60 || s.AvgHumidity > 75 {
			t.Errorf("summary %d: avg humidity %v outside [60, 75]", i, s.AvgHumidity)
		}
		if s.AvgLight < 400 || s.AvgLight > 600 {
			t.Errorf("summary %d: avg light %v outside [400, 600]", i, s.AvgLight)
		}
		if s.AvgMoisture < 550 || s.AvgMoisture > 700 {
			t.Errorf("summary %d: avg moisture %v outside [550, 700]", i, s.AvgMoisture)
		}
		if s.HealthEvents < 0 || s.HealthEvents > 2 {
			t.Errorf("summary %d: health events %d outside [0, 2]", i, s.HealthEvents)
		}
	}
}
