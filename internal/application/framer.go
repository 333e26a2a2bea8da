package application

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	EventStartMarker = "<log4j:event"
	EventEndMarker   = "</log4j:event>"
)

// OpenSource opens path for reading without locking out writers. A missing
// plain file is created empty; a missing .gz file reads as empty.
func OpenSource(path string) (io.ReadCloser, error) {
	if strings.HasSuffix(path, ".gz") {
		return openGzip(path)
	}

	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	return file, nil
}

func openGzip(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return io.NopCloser(strings.NewReader("")), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}

	zr, err := gzip.NewReader(file)
	if errors.Is(err, io.EOF) {
		// zero-length archive
		file.Close()
		return io.NopCloser(strings.NewReader("")), nil
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("could not read gzip header: %w", err)
	}
	return &gzipSource{Reader: zr, file: file}, nil
}

type gzipSource struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipSource) Close() error {
	return errors.Join(g.Reader.Close(), g.file.Close())
}

// Lines yields the lines of r without their terminators. Lines have no
// length limit. A leading byte order mark selects the encoding (UTF-8 or
// UTF-16) and is not part of the first line; without one, r is read as
// UTF-8.
func Lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		reader := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
		for {
			lineBytes, err := reader.ReadString('\n')
			if len(lineBytes) > 0 {
				line := strings.TrimSuffix(strings.TrimSuffix(lineBytes, "\n"), "\r")
				if !yield(line, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("error reading line: %w", err))
				return
			}
		}
	}
}

// FrameLines reassembles event fragments from a line sequence. Lines are
// concatenated without separators. Text outside an event is dropped, and an
// event that is never closed is discarded when the next one starts or the
// input ends.
func FrameLines(lines iter.Seq2[string, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var (
			buf    strings.Builder
			active bool
		)
		for line, err := range lines {
			if err != nil {
				yield("", err)
				return
			}

			trimmed := strings.TrimLeft(line, " \t")
			switch {
			case strings.HasPrefix(trimmed, EventStartMarker):
				buf.Reset()
				active = false
				// compact writers put a whole event on one line
				if strings.HasSuffix(strings.TrimRight(line, " \t"), EventEndMarker) {
					if !yield(line, nil) {
						return
					}
					continue
				}
				buf.WriteString(line)
				active = true
			case strings.HasPrefix(trimmed, EventEndMarker):
				if !active {
					continue
				}
				buf.WriteString(line)
				fragment := buf.String()
				buf.Reset()
				active = false
				if !yield(fragment, nil) {
					return
				}
			case active:
				buf.WriteString(line)
			}
		}
	}
}

// openSource is replaced in tests to observe when sources are released.
var openSource = OpenSource

// Fragments frames the events of the file at path. The file stays open only
// while the sequence is being ranged over.
func Fragments(path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		source, err := openSource(path)
		if err != nil {
			yield("", err)
			return
		}
		defer source.Close()

		for fragment, err := range FrameLines(Lines(source)) {
			if !yield(fragment, err) || err != nil {
				return
			}
		}
	}
}
