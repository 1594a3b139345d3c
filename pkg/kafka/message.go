package kafka

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// BatchMessage is the payload upstream feed ingestion publishes to the input
// topic: one batch of job-listing records to deduplicate.
type BatchMessage struct {
	TenantID  string          `json:"tenant_id"`
	BatchID   string          `json:"batch_id"`
	RulesetID *string         `json:"ruleset_id,omitempty"`
	Records   []models.Record `json:"records"`
	Timestamp time.Time       `json:"timestamp"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Trace context (extracted from Kafka headers)
	TraceParent string
	TraceState  string

	Batch *BatchMessage
}

// ParseBatch parses the message value as a record batch.
func (m *IncomingMessage) ParseBatch() error {
	var batch BatchMessage
	if err := json.Unmarshal(m.Value, &batch); err != nil {
		return err
	}
	if batch.Records == nil {
		return errors.New("batch message has no records")
	}
	m.Batch = &batch
	return nil
}

// GetTenantID returns the tenant ID from the batch, falling back to the
// tenant_id header.
func (m *IncomingMessage) GetTenantID() string {
	if m.Batch != nil && m.Batch.TenantID != "" {
		return m.Batch.TenantID
	}
	return m.Headers["tenant_id"]
}

// GetBatchID returns the batch ID from the batch, falling back to the key.
func (m *IncomingMessage) GetBatchID() string {
	if m.Batch != nil && m.Batch.BatchID != "" {
		return m.Batch.BatchID
	}
	return m.Key
}
