package models

import (
	"fmt"
	"strconv"
	"time"
)

// Channel bounds for a moss wall reading. Every generator clamps its output
// to these ranges after noise and event adjustments are applied.
const (
	MinHumidity    = 20.0
	MaxHumidity    = 95.0
	MinLight       = 50.0
	MaxLight       = 1500.0
	MinMoisture    = 200.0
	MaxMoisture    = 900.0
	MinCO2         = 300.0
	MaxCO2         = 600.0
	MinTemperature = 15.0
	MaxTemperature = 35.0
)

// Reading is one simulated snapshot of environmental sensor values for a
// moss wall installation. Readings are created fresh per refresh cycle and
// never mutated afterwards.
type Reading struct {
	Timestamp     time.Time `json:"timestamp"`
	Location      string    `json:"location"`
	Humidity      float64   `json:"humidity"`
	Light         float64   `json:"light"`
	Moisture      float64   `json:"moisture"`
	CO2           float64   `json:"co2"`
	Temperature   float64   `json:"temperature"`
	CO2Absorption float64   `json:"co2_absorption"`
}

// IsValid checks if the reading values are within their declared ranges.
func (r *Reading) IsValid() bool {
	if r.Timestamp.IsZero() {
		return false
	}
	if r.Humidity < MinHumidity || r.Humidity > MaxHumidity {
		return false
	}
	if r.Light < MinLight || r.Light > MaxLight {
		return false
	}
	if r.Moisture < MinMoisture || r.Moisture > MaxMoisture {
		return false
	}
	if r.CO2 < MinCO2 || r.CO2 > MaxCO2 {
		return false
	}
	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return false
	}
	if r.CO2Absorption < 0 {
		return false
	}
	return true
}

// String returns the reading as a human-readable line.
func (r *Reading) String() string {
	return fmt.Sprintf("Location: %s, Timestamp: %s, Humidity: %.1f%%, Light: %.0f lux, Moisture: %.0f, CO2: %.0f ppm, Temperature: %.1f°C",
		r.Location,
		r.Timestamp.Format(time.RFC3339),
		r.Humidity,
		r.Light,
		r.Moisture,
		r.CO2,
		r.Temperature)
}

// Copy returns a deep copy of the Reading.
func (r *Reading) Copy() *Reading {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// CSVHeader returns the export header, matching the Reading field names.
func CSVHeader() []string {
	return []string{"timestamp", "location", "humidity", "light", "moisture", "co2", "temperature", "co2_absorption"}
}

// CSVRecord returns the reading as a single CSV row matching CSVHeader.
func (r *Reading) CSVRecord() []string {
	return []string{
		r.Timestamp.Format(time.RFC3339),
		r.Location,
		strconv.FormatFloat(r.Humidity, 'f', 1, 64),
		strconv.FormatFloat(r.Light, 'f', 0, 64),
		strconv.FormatFloat(r.Moisture, 'f', 0, 64),
		strconv.FormatFloat(r.CO2, 'f', 0, 64),
		strconv.FormatFloat(r.Temperature, 'f', 1, 64),
		strconv.FormatFloat(r.CO2Absorption, 'f', 1, 64),
	}
}
