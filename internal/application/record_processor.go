package application

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	maxFlushRetries = 5
	flushTimeout    = 10 * time.Second
)

// RecordProcessor consumes published record envelopes and stores them in
// batches. A batch is flushed when it reaches batchSize or when
// batchTimeout elapses.
type RecordProcessor struct {
	batchSize    int
	batchTimeout time.Duration
	retryBackoff time.Duration
	consumer     entity.MessageConsumer
	repository   entity.RecordRepository
	logger       *zap.SugaredLogger
	batchChan    chan entity.LogRecord
	workers      sync.WaitGroup
	flushes      sync.WaitGroup
}

func NewRecordProcessor(
	batchSize int,
	batchTimeout time.Duration,
	consumer entity.MessageConsumer,
	repository entity.RecordRepository,
	logger *zap.SugaredLogger,
) *RecordProcessor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	rp := &RecordProcessor{
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		retryBackoff: 100 * time.Millisecond,
		consumer:     consumer,
		repository:   repository,
		logger:       logger,
		batchChan:    make(chan entity.LogRecord, batchSize*2),
	}

	rp.startBatchWorkers(runtime.NumCPU())
	return rp
}

func (rp *RecordProcessor) startBatchWorkers(workerCount int) {
	rp.workers.Add(workerCount)
	for range workerCount {
		go func() {
			defer rp.workers.Done()
			rp.batchWorker()
		}()
	}
}

func (rp *RecordProcessor) batchWorker() {
	var batch []entity.LogRecord
	ticker := time.NewTicker(rp.batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case record, ok := <-rp.batchChan:
			if !ok {
				rp.safeFlush(batch)
				return
			}
			batch = append(batch, record)
			if len(batch) >= rp.batchSize {
				rp.safeFlush(batch)
				batch = nil
			}

		case <-ticker.C:
			rp.safeFlush(batch)
			batch = nil
		}
	}
}

// ProcessRecords runs until the consumer is drained or ctx is done.
// Messages that cannot be decoded are logged and dropped.
func (rp *RecordProcessor) ProcessRecords(ctx context.Context) error {
	defer close(rp.batchChan)

	for {
		select {
		case msg, ok := <-rp.consumer.Messages():
			if !ok {
				return nil
			}

			record, err := decodeEnvelope(msg)
			if err != nil {
				rp.logger.Warnw("dropping message", "error", err)
				continue
			}

			select {
			case rp.batchChan <- record:
			case <-ctx.Done():
				return ctx.Err()
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func decodeEnvelope(msg string) (entity.LogRecord, error) {
	var envelope entity.RecordEnvelope
	if err := json.Unmarshal([]byte(msg), &envelope); err != nil {
		return entity.LogRecord{}, fmt.Errorf("unmarshal error: %w", err)
	}
	return envelope.Record, nil
}

func (rp *RecordProcessor) safeFlush(batch []entity.LogRecord) {
	if len(batch) == 0 {
		return
	}

	rp.flushes.Add(1)
	go func(b []entity.LogRecord) {
		defer rp.flushes.Done()
		for i := 0; i < maxFlushRetries; i++ {
			if err := rp.save(b); err == nil {
				metrics.PersistedRecords.Add(float64(len(b)))
				return
			} else {
				rp.logger.Debugw("save failed, retrying", "attempt", i+1, "error", err)
			}
			time.Sleep(time.Duration(i*i) * rp.retryBackoff)
		}
		rp.logger.Errorf("failed to persist batch of %d records after %d retries", len(b), maxFlushRetries)
	}(slices.Clone(batch))
}

func (rp *RecordProcessor) save(batch []entity.LogRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	return rp.repository.Save(ctx, batch)
}

// Close waits for the batch workers and every pending flush. Call it after
// ProcessRecords returned.
func (rp *RecordProcessor) Close() {
	rp.workers.Wait()
	rp.flushes.Wait()
}
