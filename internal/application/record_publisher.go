package application

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/metrics"
)

// RecordPublisher sends extracted records to a MessageProducer, tagging
// every message with the scan it came from.
type RecordPublisher struct {
	producer entity.MessageProducer
	scanID   string
}

func NewRecordPublisher(producer entity.MessageProducer) *RecordPublisher {
	return &RecordPublisher{
		producer: producer,
		scanID:   uuid.NewString(),
	}
}

func (p *RecordPublisher) ScanID() string {
	return p.scanID
}

func (p *RecordPublisher) Publish(record entity.LogRecord) error {
	data, err := json.Marshal(entity.RecordEnvelope{
		ScanID:      p.scanID,
		PublishedAt: time.Now().UTC(),
		Record:      record,
	})
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", record.Sequence, err)
	}

	if err := p.producer.Send(record.SourcePath, string(data)); err != nil {
		return fmt.Errorf("error sending record: %w", err)
	}
	metrics.PublishedMessages.Inc()
	return nil
}

// PublishAll publishes every record of the sequence and returns how many
// were sent.
func (p *RecordPublisher) PublishAll(ctx context.Context, records iter.Seq2[entity.LogRecord, error]) (int, error) {
	n := 0
	for record, err := range records {
		if err != nil {
			return n, err
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := p.Publish(record); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
