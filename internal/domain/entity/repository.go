package entity

import "context"

type RecordRepository interface {
	Save(ctx context.Context, records []LogRecord) error
}
