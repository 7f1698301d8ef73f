package health

import (
	"math"

	"github.com/afroash/moss-monitor/internal/models"
)

// RuleLabel implements the fixed decision rule used to label synthetic
// training data. The rule order matters: the water check shadows part of the
// shade region.
func RuleLabel(humidity, light, moisture float64) models.HealthLabel {
	switch {
	case humidity >= 60 && humidity <= 80 && light >= 300 && light <= 800 && moisture >= 500 && moisture <= 750:
		return models.LabelHealthy
	case moisture < 400:
		return models.LabelNeedsWater
	case light > 1000 || humidity < 40:
		return models.LabelNeedsShade
	default:
		return models.LabelNeedsAttention
	}
}

// idealPoint is the reference condition used by the heuristic confidence
// strategy. These points are defined independently of RuleLabel and can
// disagree with it for the same input; that divergence is intentional.
type idealPoint struct {
	humidity float64
	light    float64
	moisture float64
}

var idealConditions = map[models.HealthLabel]idealPoint{
	models.LabelHealthy:        {humidity: 70, light: 500, moisture: 650},
	models.LabelNeedsWater:     {humidity: 50, light: 400, moisture: 300},
	models.LabelNeedsShade:     {humidity: 35, light: 1200, moisture: 500},
	models.LabelNeedsAttention: {humidity: 45, light: 900, moisture: 400},
}

// heuristicConfidence scores how close the input is to the ideal point of
// the predicted label, in a normalized 3D space, mapped onto [50, 100].
func heuristicConfidence(humidity, light, moisture float64, label models.HealthLabel) float64 {
	ideal, ok := idealConditions[label]
	if !ok {
		return 0
	}

	hDiff := math.Abs(humidity-ideal.humidity) / 100
	lDiff := math.Abs(light-ideal.light) / 1500
	mDiff := math.Abs(moisture-ideal.moisture) / 900

	distance := math.Sqrt(hDiff*hDiff + lDiff*lDiff + mDiff*mDiff)
	return math.Max(50, math.Min(100, 100-distance*200))
}
