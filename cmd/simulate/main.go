package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/health"
	"github.com/afroash/moss-monitor/internal/models"
	"github.com/afroash/moss-monitor/internal/simulator"
)

// simulate samples every monitored wall once, classifies the readings and
// prints the result. Useful for smoke-testing the engine and for generating
// the CSV rows the dashboard export produces.
func main() {
	location := flag.String("location", "", "sample a single wall (default: all)")
	seed := flag.Int64("seed", 0, "random seed (0 = from clock)")
	format := flag.String("format", "text", "output format: text, json or csv")
	modelPath := flag.String("model", "./data/moss_health_model.json", "path to the health model")
	strategy := flag.String("strategy", "tree", "classification strategy: tree or heuristic")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	sim := simulator.New(simulator.DefaultTable(), rand.New(rand.NewSource(*seed)), logger)

	var tree *health.Tree
	if *strategy == "tree" {
		tree = health.LoadOrTrain(*modelPath, health.DefaultTrainingSeed, logger)
	}
	classifier := health.NewClassifier(tree, health.Strategy(*strategy), logger)

	locations := sim.Profiles().Names()
	if *location != "" {
		locations = []string{*location}
	}

	now := time.Now()
	snapshots := make([]*models.Snapshot, 0, len(locations))
	for _, loc := range locations {
		reading := sim.Sample(loc, now)
		result := classifier.Classify(reading.Humidity, reading.Light, reading.Moisture)
		snapshots = append(snapshots, &models.Snapshot{
			Reading:         *reading,
			Classification:  result,
			Recommendations: health.Recommend(result.Label, reading),
			GeneratedAt:     now,
		})
	}

	if err := output(snapshots, *format); err != nil {
		logger.Fatal().Err(err).Msg("failed to write output")
	}
}

func output(snapshots []*models.Snapshot, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)

	case "csv":
		w := csv.NewWriter(os.Stdout)
		if err := w.Write(models.CSVHeader()); err != nil {
			return err
		}
		for _, snap := range snapshots {
			if err := w.Write(snap.Reading.CSVRecord()); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()

	case "text":
		for _, snap := range snapshots {
			fmt.Printf("%s\n", snap.Reading.String())
			fmt.Printf("  Status: %s (%.1f%% confidence), health score %.1f/10\n",
				snap.Classification.Label,
				snap.Classification.Confidence,
				snap.Classification.HealthScore)
			for _, rec := range snap.Recommendations {
				fmt.Printf("  - %s\n", rec)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
