package application

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/log4j_xml_reader_service/internal/application/filter"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/nxadm/tail"
)

// Follower streams records from a file that is still being written,
// surviving rotation.
type Follower struct {
	extractor *Extractor
	poll      bool
	fromStart bool
}

// NewFollower returns a Follower. poll selects polling instead of inotify;
// fromStart replays the existing content before following new lines.
func NewFollower(extractor *Extractor, poll, fromStart bool) *Follower {
	return &Follower{extractor: extractor, poll: poll, fromStart: fromStart}
}

// Follow sends accepted records to out until ctx is done. One decoding
// context spans the whole session. The returned error is ctx.Err() after a
// normal shutdown.
func (f *Follower) Follow(ctx context.Context, path string, params *entity.FilterParams, out chan<- entity.LogRecord) error {
	flt, err := filter.New(params)
	if err != nil {
		return err
	}

	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if f.fromStart {
		location = &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	}

	t, err := tail.TailFile(path, tail.Config{
		Location:  location,
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      f.poll,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("could not tail %s: %w", path, err)
	}
	defer t.Cleanup()
	defer t.Stop()

	for record, err := range f.extractor.decode(ctx, path, FrameLines(f.lines(ctx, path, t)), flt) {
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		select {
		case out <- record:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

func (f *Follower) lines(ctx context.Context, path string, t *tail.Tail) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-t.Lines:
				if !ok {
					if err := t.Err(); err != nil {
						yield("", fmt.Errorf("tail %s: %w", path, err))
					}
					return
				}
				if line.Err != nil {
					f.extractor.logger.Warnw("error reading followed file", "source", path, "error", line.Err)
					continue
				}
				if !yield(strings.TrimSuffix(line.Text, "\r"), nil) {
					return
				}
			}
		}
	}
}
