// Package events handles event emission for dedupe run lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Emitter handles event emission for Clover
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRunCompleted emits a dedupe.run.completed event carrying the cleaned
// records and the export rows.
func (e *Emitter) EmitRunCompleted(ctx context.Context, batchID string, result *models.DedupeResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	event := &kafka.RunEvent{
		EventType: "dedupe.run.completed",
		TenantID:  result.Summary.TenantID,
		BatchID:   batchID,
		Summary:   result.Summary,
		Cleaned:   result.Cleaned,
		Export:    result.Export,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit dedupe.run.completed event")
		return err
	}

	return nil
}

// EmitRunFailed emits a dedupe.run.failed event so upstream can park the
// batch instead of retrying forever.
func (e *Emitter) EmitRunFailed(ctx context.Context, tenantID, batchID string, runErr error) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunFailed")
	defer span.End()

	event := &kafka.RunEvent{
		EventType: "dedupe.run.failed",
		TenantID:  tenantID,
		BatchID:   batchID,
		Error:     runErr.Error(),
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit dedupe.run.failed event")
		return err
	}

	return nil
}
