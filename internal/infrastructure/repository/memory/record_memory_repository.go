package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/log4j_xml_reader_service/internal/domain/entity"
)

type RecordMemoryRepository struct {
	mu      sync.Mutex
	records []entity.LogRecord
}

func NewRecordMemoryRepository() *RecordMemoryRepository {
	return &RecordMemoryRepository{}
}

func (r *RecordMemoryRepository) Save(_ context.Context, records []entity.LogRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return nil
}

// Records returns a copy of everything saved so far.
func (r *RecordMemoryRepository) Records() []entity.LogRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}
