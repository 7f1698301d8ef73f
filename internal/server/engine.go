package server

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/health"
	"github.com/afroash/moss-monitor/internal/history"
	"github.com/afroash/moss-monitor/internal/models"
	"github.com/afroash/moss-monitor/internal/simulator"
)

// Engine ties the simulation and scoring pieces together for the dashboard:
// one call produces everything a refresh tick renders. The underlying random
// sources are not goroutine-safe, so Engine serializes access; the scoring
// and classification paths are pure and need no guarding of their own.
type Engine struct {
	mu         sync.Mutex
	sim        *simulator.Simulator
	gen        *history.Generator
	classifier *health.Classifier
	logger     zerolog.Logger
}

// NewEngine creates an engine over the given components.
func NewEngine(sim *simulator.Simulator, gen *history.Generator, classifier *health.Classifier, logger zerolog.Logger) *Engine {
	return &Engine{
		sim:        sim,
		gen:        gen,
		classifier: classifier,
		logger:     logger,
	}
}

// Snapshot samples the named wall, classifies the reading and attaches the
// matching recommendations.
func (e *Engine) Snapshot(location string, now time.Time) *models.Snapshot {
	e.mu.Lock()
	reading := e.sim.Sample(location, now)
	e.mu.Unlock()

	result := e.classifier.Classify(reading.Humidity, reading.Light, reading.Moisture)
	return &models.Snapshot{
		Reading:         *reading,
		Classification:  result,
		Recommendations: health.Recommend(result.Label, reading),
		GeneratedAt:     now,
	}
}

// History returns a fresh 24h series for charting.
func (e *Engine) History(now time.Time) []models.Reading {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen.Generate(now)
}

// Weekly returns the 7-day summary rows.
func (e *Engine) Weekly(now time.Time) []models.DailySummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen.WeeklySummary(now)
}

// TrendPoint is one point of the health score trend chart.
type TrendPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	HealthScore float64   `json:"health_score"`
}

// Trend scores a fresh 24h series point by point.
func (e *Engine) Trend(now time.Time) []TrendPoint {
	readings := e.History(now)
	points := make([]TrendPoint, len(readings))
	for i, r := range readings {
		points[i] = TrendPoint{
			Timestamp:   r.Timestamp,
			HealthScore: health.Score(r.Humidity, r.Light, r.Moisture),
		}
	}
	return points
}

// Locations returns the configured wall names.
func (e *Engine) Locations() []string {
	return e.sim.Profiles().Names()
}
