// Package processor handles incoming batch messages: it resolves the ruleset
// for the tenant, runs duplicate detection, and emits the run result.
package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/config"
	rulesetrepo "github.com/Ramsey-B/clover/internal/repositories/ruleset"
	"github.com/Ramsey-B/clover/pkg/dedupe"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// RulesetStore is the slice of the ruleset repository the processor needs.
type RulesetStore interface {
	Get(ctx context.Context, tenantID string, id string) (*models.Ruleset, error)
	GetActive(ctx context.Context, tenantID string) (*models.Ruleset, error)
}

// RunEmitter publishes run results.
type RunEmitter interface {
	EmitRunCompleted(ctx context.Context, batchID string, result *models.DedupeResult) error
	EmitRunFailed(ctx context.Context, tenantID, batchID string, runErr error) error
}

var _ RulesetStore = (*rulesetrepo.Repository)(nil)
var _ RunEmitter = (*events.Emitter)(nil)

// Processor handles batch message processing
type Processor struct {
	cfg         config.Config
	logger      ectologger.Logger
	engine      *dedupe.Engine
	rulesetRepo RulesetStore
	emitter     RunEmitter
}

// NewProcessor creates a new batch processor
func NewProcessor(cfg config.Config, logger ectologger.Logger, engine *dedupe.Engine, rulesetRepo RulesetStore, emitter RunEmitter) *Processor {
	return &Processor{
		cfg:         cfg,
		logger:      logger,
		engine:      engine,
		rulesetRepo: rulesetRepo,
		emitter:     emitter,
	}
}

// HandleMessage processes one batch message. A batch that fails to run emits
// a failed event and returns nil so the offset is committed; only emission
// failures propagate for redelivery.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	tenantID := msg.GetTenantID()
	batchID := msg.GetBatchID()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"batch_id":  batchID,
		"records":   len(msg.Batch.Records),
	})

	log.Info("Processing batch")

	if p.cfg.MaxBatchSize > 0 && len(msg.Batch.Records) > p.cfg.MaxBatchSize {
		err := fmt.Errorf("batch of %d records exceeds the maximum of %d", len(msg.Batch.Records), p.cfg.MaxBatchSize)
		log.WithError(err).Error("Rejecting oversized batch")
		return p.emitter.EmitRunFailed(ctx, tenantID, batchID, err)
	}

	def, rulesetID, err := p.resolveDefinition(ctx, tenantID, msg.Batch.RulesetID)
	if err != nil {
		log.WithError(err).Error("Failed to resolve ruleset")
		return p.emitter.EmitRunFailed(ctx, tenantID, batchID, err)
	}

	opts := dedupe.RunOptions{}
	if p.cfg.ProgressLogBlocks > 0 {
		blocksDone := 0
		opts.OnProgress = func(fraction float64) {
			blocksDone++
			if blocksDone%p.cfg.ProgressLogBlocks == 0 {
				log.WithFields(map[string]any{
					"blocks":   blocksDone,
					"fraction": fraction,
				}).Debug("Dedupe run progress")
			}
		}
	}

	result, err := p.engine.Run(ctx, def, msg.Batch.Records, opts)
	if err != nil {
		log.WithError(err).Error("Dedupe run failed")
		return p.emitter.EmitRunFailed(ctx, tenantID, batchID, err)
	}

	result.Summary.TenantID = tenantID
	result.Summary.RulesetID = rulesetID

	if err := p.emitter.EmitRunCompleted(ctx, batchID, result); err != nil {
		return err
	}

	log.WithFields(map[string]any{
		"run_id":  result.Summary.RunID,
		"dropped": result.Summary.DroppedRecords,
	}).Info("Batch processed")

	return nil
}

func (p *Processor) resolveDefinition(ctx context.Context, tenantID string, rulesetID *string) (*models.RulesetDefinition, string, error) {
	if rulesetID != nil {
		rs, err := p.rulesetRepo.Get(ctx, tenantID, *rulesetID)
		if err != nil {
			return nil, "", err
		}
		def, err := rs.ParseDefinition()
		if err != nil {
			return nil, "", err
		}
		return def, rs.ID, nil
	}

	rs, err := p.rulesetRepo.GetActive(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	if rs == nil {
		def := models.DefaultDefinition()
		// Env-level tuning applies only to the built-in fallback; stored
		// rulesets carry their own thresholds.
		if p.cfg.AcceptThreshold > 0 {
			def.AcceptThreshold = p.cfg.AcceptThreshold
		}
		if p.cfg.NeighborCount > 0 {
			def.NeighborCount = p.cfg.NeighborCount
		}
		return &def, "", nil
	}
	def, err := rs.ParseDefinition()
	if err != nil {
		return nil, "", err
	}
	return def, rs.ID, nil
}
