package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/models"
)

// APIHandler handles HTTP API requests for the dashboard
type APIHandler struct {
	engine *Engine
	store  *SnapshotStore
	logger zerolog.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(engine *Engine, store *SnapshotStore, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// requestedLocation resolves the location query parameter, defaulting to the
// first configured wall.
func (api *APIHandler) requestedLocation(r *http.Request) string {
	if loc := r.URL.Query().Get("location"); loc != "" {
		return loc
	}
	locations := api.engine.Locations()
	if len(locations) == 0 {
		return ""
	}
	return locations[0]
}

// currentSnapshot returns the stored snapshot for a location, computing a
// fresh one when the refresh loop has not populated the store yet (manual
// refresh with auto-refresh disabled).
func (api *APIHandler) currentSnapshot(location string) *models.Snapshot {
	if snap := api.store.GetCurrent(location); snap != nil {
		return snap
	}
	return api.engine.Snapshot(location, time.Now())
}

// HandleCurrent returns the current snapshot for a wall
func (api *APIHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	location := api.requestedLocation(r)
	if location == "" {
		http.Error(w, "No locations configured", http.StatusNotFound)
		return
	}
	writeJSON(w, api.currentSnapshot(location))
}

// HandleHistory returns a fresh 24h series for charting
func (api *APIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.engine.History(time.Now()))
}

// HandleWeekly returns the 7-day summary rows
func (api *APIHandler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.engine.Weekly(time.Now()))
}

// HandleTrend returns the health score trend over the trailing 24h
func (api *APIHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.engine.Trend(time.Now()))
}

// HandleLocations returns the configured wall names
func (api *APIHandler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.engine.Locations())
}

// HandleRecent returns the n most recent snapshots for a wall
func (api *APIHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	location := api.requestedLocation(r)
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	snapshots := api.store.GetLatest(location, limit)
	if snapshots == nil {
		snapshots = []*models.Snapshot{}
	}
	writeJSON(w, snapshots)
}

// HandleStats returns store statistics
func (api *APIHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.store.Stats())
}

// DashboardData contains all data for one dashboard render
type DashboardData struct {
	Snapshot   *models.Snapshot `json:"snapshot"`
	Locations  []string         `json:"locations"`
	Stats      StoreStats       `json:"stats"`
	LastUpdate time.Time        `json:"last_update"`
}

// HandleDashboardData returns combined data for the dashboard
func (api *APIHandler) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	location := api.requestedLocation(r)
	if location == "" {
		http.Error(w, "No locations configured", http.StatusNotFound)
		return
	}
	writeJSON(w, DashboardData{
		Snapshot:   api.currentSnapshot(location),
		Locations:  api.engine.Locations(),
		Stats:      api.store.Stats(),
		LastUpdate: time.Now(),
	})
}

// HandleExport serializes the current reading for a wall as a one-row CSV
// with a header matching the reading field names.
func (api *APIHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	location := api.requestedLocation(r)
	if location == "" {
		http.Error(w, "No locations configured", http.StatusNotFound)
		return
	}
	snap := api.currentSnapshot(location)

	filename := fmt.Sprintf("moss_data_%s.csv", strings.ReplaceAll(location, " ", "_"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	if err := cw.Write(models.CSVHeader()); err != nil {
		api.logger.Error().Err(err).Msg("failed to write CSV header")
		return
	}
	if err := cw.Write(snap.Reading.CSVRecord()); err != nil {
		api.logger.Error().Err(err).Msg("failed to write CSV record")
		return
	}
	cw.Flush()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
