package health

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/models"
)

// Strategy selects how classification confidence is derived.
type Strategy string

const (
	// StrategyTree predicts with the trained decision tree and takes the
	// top leaf-class probability as confidence.
	StrategyTree Strategy = "tree"

	// StrategyHeuristic predicts with the fixed label rule and derives
	// confidence from the distance to the predicted label's ideal point.
	StrategyHeuristic Strategy = "heuristic"
)

// Classifier maps a reading triple to a health label, a confidence
// percentage and a health score. Classification is fully contained: any
// internal failure yields the Unknown sentinel, never a panic or an error.
type Classifier struct {
	tree     *Tree
	strategy Strategy
	logger   zerolog.Logger
}

// NewClassifier creates a classifier. The tree may be nil when the heuristic
// strategy is used.
func NewClassifier(tree *Tree, strategy Strategy, logger zerolog.Logger) *Classifier {
	if strategy == "" {
		strategy = StrategyTree
	}
	return &Classifier{
		tree:     tree,
		strategy: strategy,
		logger:   logger,
	}
}

// Classify returns the label, confidence and health score for the given
// reading triple. The label and the score come from separate logic and may
// disagree for the same input.
func (c *Classifier) Classify(humidity, light, moisture float64) (result models.Classification) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("prediction failed, degrading to Unknown")
			result = models.Unknown()
		}
	}()

	if !finite(humidity) || !finite(light) || !finite(moisture) {
		return models.Unknown()
	}

	score := Score(humidity, light, moisture)

	var label models.HealthLabel
	var confidence float64
	switch c.strategy {
	case StrategyHeuristic:
		label = RuleLabel(humidity, light, moisture)
		confidence = heuristicConfidence(humidity, light, moisture, label)
	default:
		class, probs, err := c.tree.Predict(humidity, light, moisture)
		if err != nil {
			c.logger.Error().Err(err).Msg("prediction failed, degrading to Unknown")
			return models.Unknown()
		}
		label = models.Labels[class]
		confidence = maxProb(probs) * 100
	}

	return models.Classification{
		Label:       label,
		Confidence:  confidence,
		HealthScore: score,
	}
}

// LoadOrTrain loads a previously saved tree from path. Any failure (missing
// file, corrupt data) triggers a fresh training run with the given seed, and
// the new model is saved back so later runs reuse the same boundary. Save
// failures are logged, not surfaced: the in-memory model is always usable.
func LoadOrTrain(path string, seed int64, logger zerolog.Logger) *Tree {
	tree, err := LoadTree(path)
	if err == nil {
		logger.Info().Str("path", path).Msg("loaded health model")
		return tree
	}
	if !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", path).Msg("could not load health model, retraining")
	}

	tree = Train(seed)
	if saveErr := tree.Save(path); saveErr != nil {
		logger.Warn().Err(saveErr).Str("path", path).Msg("could not save health model")
	} else {
		logger.Info().Str("path", path).Int64("seed", seed).Msg("trained and saved health model")
	}
	return tree
}

// LoadTree reads a serialized tree from disk.
func LoadTree(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if tree.Root == nil {
		return nil, fmt.Errorf("model at %s has no root node", path)
	}
	return &tree, nil
}

// Save writes the tree to path, creating parent directories as needed.
func (t *Tree) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

func maxProb(probs []float64) float64 {
	best := 0.0
	for _, p := range probs {
		if p > best {
			best = p
		}
	}
	return best
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
