package application

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/log4j_xml_reader_service/internal/application/filter"
	"github.com/log4j_xml_reader_service/internal/application/parser"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FragmentError describes a fragment that was skipped because it could not
// be decoded.
type FragmentError struct {
	Source string
	Index  int
	Err    error
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("%s: fragment %d: %v", e.Source, e.Index, e.Err)
}

func (e *FragmentError) Unwrap() error {
	return e.Err
}

type Extractor struct {
	logger *zap.SugaredLogger
}

func NewExtractor(logger *zap.SugaredLogger) *Extractor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Extractor{logger: logger}
}

// Records lazily extracts the accepted records of the file at path in file
// order. The file is opened when ranging starts and closed when the range
// loop ends, including on break. Fragments that fail to decode are logged
// and skipped; I/O errors, invalid filter params and ctx cancellation end
// the sequence with a non-nil error.
func (e *Extractor) Records(ctx context.Context, path string, params *entity.FilterParams) iter.Seq2[entity.LogRecord, error] {
	return func(yield func(entity.LogRecord, error) bool) {
		f, err := filter.New(params)
		if err != nil {
			yield(entity.LogRecord{}, err)
			return
		}

		start := time.Now()
		defer func() {
			metrics.ScanLatency.WithLabelValues(metrics.SourceLabel(path)).Observe(time.Since(start).Seconds())
		}()

		for record, err := range e.decode(ctx, path, Fragments(path), f) {
			if !yield(record, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains Records into a slice.
func (e *Extractor) Collect(ctx context.Context, path string, params *entity.FilterParams) ([]entity.LogRecord, error) {
	var records []entity.LogRecord
	for record, err := range e.Records(ctx, path, params) {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

// ScanFiles extracts several files concurrently, at most limit at a time.
// Each file gets its own decoding context; fn is never called concurrently.
// The first error from a scan or from fn cancels the remaining scans.
func (e *Extractor) ScanFiles(ctx context.Context, paths []string, params *entity.FilterParams, limit int, fn func(entity.LogRecord) error) error {
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, path := range paths {
		g.Go(func() error {
			for record, err := range e.Records(ctx, path, params) {
				if err != nil {
					return fmt.Errorf("scan %s: %w", path, err)
				}
				mu.Lock()
				fnErr := fn(record)
				mu.Unlock()
				if fnErr != nil {
					return fnErr
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// decode turns framed fragments into accepted records sharing one decoding
// context, so sequence numbers and deltas span the whole source.
func (e *Extractor) decode(ctx context.Context, source string, fragments iter.Seq2[string, error], f *filter.Filter) iter.Seq2[entity.LogRecord, error] {
	return func(yield func(entity.LogRecord, error) bool) {
		p := parser.NewLog4jXmlParser(f)
		dc := parser.NewDecodingContext()
		label := metrics.SourceLabel(source)
		index := 0

		for fragment, err := range fragments {
			if err != nil {
				yield(entity.LogRecord{}, err)
				return
			}
			if err := ctx.Err(); err != nil {
				yield(entity.LogRecord{}, err)
				return
			}

			index++
			metrics.FragmentsFramed.WithLabelValues(label).Inc()

			record, accepted, err := p.Decode(dc, source, fragment)
			if err != nil {
				if errors.Is(err, filter.ErrNilRecord) || errors.Is(err, filter.ErrNilFilterParams) {
					yield(entity.LogRecord{}, err)
					return
				}
				metrics.FragmentsFailed.WithLabelValues(label).Inc()
				e.logger.Warnw("skipping undecodable fragment",
					"error", &FragmentError{Source: source, Index: index, Err: err})
				continue
			}
			if !accepted {
				metrics.RecordsRejected.Inc()
				continue
			}

			metrics.RecordsAccepted.Inc()
			if !yield(record, nil) {
				return
			}
		}
	}
}
