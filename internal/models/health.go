package models

import "time"

// HealthLabel is the discrete maintenance-status classification of a reading.
type HealthLabel string

const (
	LabelHealthy        HealthLabel = "Healthy"
	LabelNeedsWater     HealthLabel = "Needs Water"
	LabelNeedsShade     HealthLabel = "Needs Shade"
	LabelNeedsAttention HealthLabel = "Needs Attention"

	// LabelUnknown is the sentinel returned when classification degrades.
	// It is never produced by a healthy prediction path.
	LabelUnknown HealthLabel = "Unknown"
)

// Labels lists the trainable classes in class-index order. The index of a
// label in this slice is its class id in the decision tree.
var Labels = []HealthLabel{LabelHealthy, LabelNeedsWater, LabelNeedsShade, LabelNeedsAttention}

// Classification is the result of running a reading through the health
// classifier. Label and HealthScore come from separate logic and may
// disagree for the same input.
type Classification struct {
	Label       HealthLabel `json:"label"`
	Confidence  float64     `json:"confidence"`
	HealthScore float64     `json:"health_score"`
	Degraded    bool        `json:"degraded,omitempty"`
}

// Unknown returns the contained-failure sentinel classification.
func Unknown() Classification {
	return Classification{Label: LabelUnknown, Confidence: 0, HealthScore: 0, Degraded: true}
}

// Snapshot bundles everything the dashboard renders for one wall on one
// refresh tick.
type Snapshot struct {
	Reading         Reading        `json:"reading"`
	Classification  Classification `json:"classification"`
	Recommendations []string       `json:"recommendations"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// DailySummary is one row of the low-fidelity weekly overview.
type DailySummary struct {
	Date         time.Time `json:"date"`
	AvgHumidity  float64   `json:"avg_humidity"`
	AvgLight     float64   `json:"avg_light"`
	AvgMoisture  float64   `json:"avg_moisture"`
	HealthEvents int       `json:"health_events"`
}
