package history

import (
	"math"
	"math/rand"
	"time"

	"github.com/afroash/moss-monitor/internal/models"
	"github.com/afroash/moss-monitor/internal/simulator"
)

const (
	// Lookback window and cadence of the generated series. With both ends
	// included, 24h at 15-minute steps yields 97 points.
	Lookback = 24 * time.Hour
	Step     = 15 * time.Minute
)

// Generator produces the synthetic trailing series the dashboard charts are
// drawn from. Every call recomputes the full window from scratch: there is
// no caching and no identity between calls, two calls at the same instant
// are different random realizations.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator over the given random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate returns readings covering [now-24h, now] at 15-minute steps,
// oldest first. The per-channel form matches the live simulator but without
// location profile adjustment; scripted watering and peak-sun events are
// layered on top before clamping.
func (g *Generator) Generate(now time.Time) []models.Reading {
	start := now.Add(-Lookback)
	n := int(Lookback/Step) + 1

	readings := make([]models.Reading, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * Step)
		tf := simulator.TimeFactor(ts)
		hour := ts.Hour()

		humidity := 65 + g.rng.NormFloat64()*8 + tf*15
		light := 500 + g.rng.NormFloat64()*100 + tf*400
		moisture := 600 + g.rng.NormFloat64()*50 + g.uniform(-20, 20)
		co2 := 400 + g.rng.NormFloat64()*30 - tf*80
		temperature := 22 + g.rng.NormFloat64()*3 + tf*6

		// Scheduled watering windows soak the wall and the surrounding air.
		if hour == 6 || hour == 18 {
			moisture += g.uniform(50, 100)
			humidity += g.uniform(10, 20)
		}
		// Peak sunlight hours.
		if hour >= 12 && hour <= 14 {
			light *= g.uniform(1.2, 1.8)
			temperature += g.uniform(2, 5)
		}

		readings = append(readings, models.Reading{
			Timestamp:   ts,
			Humidity:    clamp(humidity, models.MinHumidity, models.MaxHumidity),
			Light:       clamp(light, models.MinLight, models.MaxLight),
			Moisture:    clamp(moisture, models.MinMoisture, models.MaxMoisture),
			CO2:         clamp(co2, models.MinCO2, models.MaxCO2),
			Temperature: clamp(temperature, models.MinTemperature, models.MaxTemperature),
		})
	}
	return readings
}

// WeeklySummary returns seven low-fidelity per-day rows, today first going
// back one day at a time. The draws are independent of the 24h series.
func (g *Generator) WeeklySummary(now time.Time) []models.DailySummary {
	summaries := make([]models.DailySummary, 0, 7)
	for day := 0; day < 7; day++ {
		summaries = append(summaries, models.DailySummary{
			Date:         now.AddDate(0, 0, -day),
			AvgHumidity:  g.uniform(60, 75),
			AvgLight:     g.uniform(400, 600),
			AvgMoisture:  g.uniform(550, 700),
			HealthEvents: g.rng.Intn(3),
		})
	}
	return summaries
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
