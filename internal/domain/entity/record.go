package entity

import (
	"time"
)

// LogRecord is one accepted log4j event.
type LogRecord struct {
	Sequence     int               `json:"sequence" bson:"sequence"`
	SourcePath   string            `json:"source_path" bson:"source_path"`
	Level        string            `json:"level" bson:"level"`
	Thread       string            `json:"thread" bson:"thread"`
	Logger       string            `json:"logger" bson:"logger"`
	Timestamp    time.Time         `json:"timestamp" bson:"timestamp"`
	DeltaSeconds *float64          `json:"delta_seconds,omitempty" bson:"delta_seconds,omitempty"`
	Message      string            `json:"message" bson:"message"`
	Throwable    *string           `json:"throwable,omitempty" bson:"throwable,omitempty"`
	Class        *string           `json:"class,omitempty" bson:"class,omitempty"`
	Method       *string           `json:"method,omitempty" bson:"method,omitempty"`
	File         *string           `json:"file,omitempty" bson:"file,omitempty"`
	Line         *string           `json:"line,omitempty" bson:"line,omitempty"`
	UserName     *string           `json:"user_name,omitempty" bson:"user_name,omitempty"`
	Application  *string           `json:"application,omitempty" bson:"application,omitempty"`
	MachineName  *string           `json:"machine_name,omitempty" bson:"machine_name,omitempty"`
	HostName     *string           `json:"host_name,omitempty" bson:"host_name,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty" bson:"custom_fields,omitempty"`
}

// RecordEnvelope is the message published for every extracted record.
type RecordEnvelope struct {
	ScanID      string    `json:"scan_id"`
	PublishedAt time.Time `json:"published_at"`
	Record      LogRecord `json:"record"`
}
