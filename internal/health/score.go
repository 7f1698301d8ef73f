package health

import "math"

// Optimum and half-width per channel: each sub-score decays linearly from
// 1.0 at the optimum to 0 at optimum±halfWidth.
const (
	optimalHumidity   = 70.0
	humidityHalfWidth = 50.0
	optimalLight      = 500.0
	lightHalfWidth    = 700.0
	optimalMoisture   = 650.0
	moistureHalfWidth = 450.0
)

// Weight constants for the health score formula. They must sum to 1.0.
// Moisture is weighted highest as the primary health driver.
const (
	weightHumidity = 0.3
	weightLight    = 0.3
	weightMoisture = 0.4
)

// Score maps a reading triple to a continuous health score in [0, 10].
// Deterministic: no randomness, no state.
func Score(humidity, light, moisture float64) float64 {
	humidityScore := clamp01(1 - math.Abs(humidity-optimalHumidity)/humidityHalfWidth)
	lightScore := clamp01(1 - math.Abs(light-optimalLight)/lightHalfWidth)
	moistureScore := clamp01(1 - math.Abs(moisture-optimalMoisture)/moistureHalfWidth)

	score := (humidityScore*weightHumidity + lightScore*weightLight + moistureScore*weightMoisture) * 10
	return math.Max(0, math.Min(10, score))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
