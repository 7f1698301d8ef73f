package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/models"
)

// Base values each channel oscillates around before noise, the daily cycle
// and the location profile are applied.
const (
	baseHumidity    = 65.0
	baseLight       = 500.0
	baseMoisture    = 600.0
	baseCO2         = 400.0
	baseTemperature = 22.0
)

// Simulator produces live moss wall readings. It is pure given its injected
// random source: the same seed and the same instant yield identical
// readings, which is what makes the refresh loop testable.
type Simulator struct {
	profiles *ProfileTable
	rng      *rand.Rand
	logger   zerolog.Logger
}

// New creates a simulator over the given profile table and random source.
func New(profiles *ProfileTable, rng *rand.Rand, logger zerolog.Logger) *Simulator {
	return &Simulator{
		profiles: profiles,
		rng:      rng,
		logger:   logger,
	}
}

// TimeFactor is the sinusoidal daily-cycle signal in [-1, 1], peaking near
// midday. Hour resolution matches the reference behavior.
func TimeFactor(t time.Time) float64 {
	return math.Sin(float64(t.Hour()) * math.Pi / 12)
}

// Sample generates one reading for the named location at the given instant.
// Each channel combines its base value, Gaussian noise, a time-of-day
// contribution and the location profile adjustment, then clamps to the
// declared bounds. Callers own any throttling; Sample itself is rate-free.
func (s *Simulator) Sample(location string, now time.Time) *models.Reading {
	tf := TimeFactor(now)
	p := s.profiles.Lookup(location)

	humidity := clamp(baseHumidity+s.rng.NormFloat64()*5+tf*10+p.HumidityBias*20,
		models.MinHumidity, models.MaxHumidity)
	light := clamp(baseLight+s.rng.NormFloat64()*50+tf*300*p.LightFactor,
		models.MinLight, models.MaxLight)
	moisture := clamp(baseMoisture+s.rng.NormFloat64()*30+p.MoistureBias*100,
		models.MinMoisture, models.MaxMoisture)
	co2 := clamp(baseCO2+s.rng.NormFloat64()*20-tf*50,
		models.MinCO2, models.MaxCO2)
	temperature := clamp(baseTemperature+s.rng.NormFloat64()*2+tf*5,
		models.MinTemperature, models.MaxTemperature)

	// Instantaneous carbon capture proxy: moss efficiency scaled by a
	// random factor standing in for measurement noise.
	efficiency := math.Min(1.0, humidity/100*moisture/700)
	absorption := efficiency * s.uniform(15, 25)

	return &models.Reading{
		Timestamp:     now,
		Location:      location,
		Humidity:      humidity,
		Light:         light,
		Moisture:      moisture,
		CO2:           co2,
		Temperature:   temperature,
		CO2Absorption: absorption,
	}
}

// SimulateFailure reports whether a sensor of the given type produced a
// reading this cycle. It returns false (no reading) with the given
// probability. Standalone utility: the main reading path never drops data.
func (s *Simulator) SimulateFailure(sensorType string, probability float64) bool {
	if s.rng.Float64() < probability {
		s.logger.Warn().Str("sensor_type", sensorType).Msg("simulated sensor failure")
		return false
	}
	return true
}

// Profiles returns the profile table this simulator samples against.
func (s *Simulator) Profiles() *ProfileTable {
	return s.profiles
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
