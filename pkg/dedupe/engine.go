// Package dedupe implements approximate duplicate detection for batches of
// job-listing records: blocking on exact fields, TF-IDF candidate retrieval,
// compatibility gates, per-field scoring and keep/drop resolution.
package dedupe

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config contains the engine-level scoring knobs. Ruleset definitions carry
// the per-dataset rules; Config carries the built-in minimum scores.
type Config struct {
	PrimaryFieldMinScore int     // Minimum similarity for the primary text field (default: 95)
	FuzzyFieldMinScore   int     // Minimum similarity for other fuzzy fields (default: 90)
	NumericFieldMinScore int     // Minimum score for numeric fields (default: 95)
	DefaultTolerance     float64 // Numeric tolerance when a field has none configured (default: 1.0)
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{
		PrimaryFieldMinScore: 95,
		FuzzyFieldMinScore:   90,
		NumericFieldMinScore: 95,
		DefaultTolerance:     1.0,
	}
}

// RunOptions adjusts a single engine run without touching the ruleset.
type RunOptions struct {
	// Threshold overrides the ruleset accept threshold when positive.
	Threshold int
	// Neighbors overrides the ruleset neighbor count when positive.
	Neighbors int
	// OnProgress, when set, receives the fraction of blocks processed.
	OnProgress func(fraction float64)
}

// Engine runs duplicate detection over record batches.
type Engine struct {
	logger ectologger.Logger
	config Config
}

// NewEngine creates a new dedupe engine
func NewEngine(logger ectologger.Logger, config Config) *Engine {
	return &Engine{
		logger: logger,
		config: config,
	}
}

// Run executes duplicate detection for one batch under the given ruleset
// definition. The input slice is never mutated; records are only referenced
// or cloned into the outputs.
func (e *Engine) Run(ctx context.Context, def *models.RulesetDefinition, records []models.Record, opts RunOptions) (*models.DedupeResult, error) {
	ctx, span := tracing.StartSpan(ctx, "dedupe.Engine.Run")
	defer span.End()

	if def == nil {
		return nil, fmt.Errorf("ruleset definition is required")
	}

	resolved := *def
	resolved.ApplyDefaults()
	if err := resolved.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ruleset definition: %w", err)
	}
	if opts.Threshold > 0 {
		resolved.AcceptThreshold = opts.Threshold
	}
	if opts.Neighbors > 0 {
		resolved.NeighborCount = opts.Neighbors
	}

	// Fields absent from this batch are ignored rather than treated as
	// all-null, so one ruleset can serve feeds with different columns.
	resolved.ExactFields = presentFields(records, resolved.ExactFields)
	resolved.FuzzyFields = presentFields(records, resolved.FuzzyFields)
	resolved.NumericFields = presentFields(records, resolved.NumericFields)
	if !contains(resolved.FuzzyFields, resolved.PrimaryTextField) {
		resolved.PrimaryTextField = ""
	}

	runID := uuid.New().String()
	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id":    runID,
		"records":   len(records),
		"threshold": resolved.AcceptThreshold,
	})

	log.Debug("Starting dedupe run")

	blocks := BuildBlocks(records, resolved.ExactFields)
	gate := newGate(&resolved)
	scorer := newScorer(&resolved, e.config, resolved.AcceptThreshold)

	var accepted []scoredPair
	candidateCount := 0

	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(block.Indices) >= 2 {
			pairs, strategy := generateCandidates(records, block, resolved.FuzzyFields, resolved.NeighborCount)
			candidateCount += len(pairs)

			for _, pair := range pairs {
				a, b := records[pair.I], records[pair.J]
				if !gate.Compatible(a, b) {
					continue
				}
				probability, ok := scorer.Score(a, b)
				if !ok {
					continue
				}
				accepted = append(accepted, scoredPair{I: pair.I, J: pair.J, Probability: probability})
			}

			log.WithFields(map[string]any{
				"block_key": block.Key,
				"size":      len(block.Indices),
				"pairs":     len(pairs),
				"strategy":  string(strategy),
			}).Debug("Processed block")
		}

		if opts.OnProgress != nil {
			opts.OnProgress(float64(i+1) / float64(len(blocks)))
		}
	}

	links := resolveLinks(records, accepted)
	report, export := buildReport(records, links)
	cleaned := cleanedSet(records, links)

	result := &models.DedupeResult{
		Summary: models.RunSummary{
			RunID:          runID,
			Threshold:      resolved.AcceptThreshold,
			TotalRecords:   len(records),
			KeptRecords:    len(cleaned),
			DroppedRecords: len(records) - len(cleaned),
			Blocks:         len(blocks),
			CandidatePairs: candidateCount,
			DuplicateLinks: len(links),
		},
		Cleaned: cleaned,
		Report:  report,
		Export:  export,
		Links:   links,
	}

	log.WithFields(map[string]any{
		"blocks":  len(blocks),
		"links":   len(links),
		"dropped": result.Summary.DroppedRecords,
	}).Info("Dedupe run complete")

	return result, nil
}

// presentFields keeps only the fields that at least one record carries.
func presentFields(records []models.Record, fields []string) []string {
	present := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, r := range records {
			if r.Has(field) {
				present = append(present, field)
				break
			}
		}
	}
	return present
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
