package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/log4j_xml_reader_service/internal/application/filter"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
)

// Log4jNamespace is the URI bound to the log4j prefix of XMLLayout output.
const Log4jNamespace = "http://jakarta.apache.org/log4j/"

var (
	ErrNoEventElement   = errors.New("no log4j:event element in fragment")
	ErrInvalidTimestamp = errors.New("invalid event timestamp")
)

// Fragments are not standalone documents: the log4j prefix is never
// declared inside them, so every fragment is decoded inside a root element
// that binds it.
const (
	fragmentOpen  = `<fragment xmlns:log4j="` + Log4jNamespace + `">`
	fragmentClose = `</fragment>`
)

var eventName = xml.Name{Space: Log4jNamespace, Local: "event"}

type Log4jXmlParser struct {
	filter *filter.Filter
}

func NewLog4jXmlParser(f *filter.Filter) *Log4jXmlParser {
	return &Log4jXmlParser{filter: f}
}

// Decode parses one event fragment and applies the filter. The returned bool
// reports whether the record was accepted. A non-nil error means no record
// could be built from the fragment; dc is left untouched in that case.
func (p *Log4jXmlParser) Decode(dc *DecodingContext, source, fragment string) (entity.LogRecord, bool, error) {
	dec := xml.NewDecoder(io.MultiReader(
		strings.NewReader(fragmentOpen),
		strings.NewReader(fragment),
		strings.NewReader(fragmentClose),
	))

	start, err := findEvent(dec)
	if err != nil {
		return entity.LogRecord{}, false, err
	}

	rawTimestamp, _ := attr(start, "timestamp")
	timestamp, err := parseTimestamp(rawTimestamp)
	if err != nil {
		return entity.LogRecord{}, false, err
	}

	level, _ := attr(start, "level")
	thread, _ := attr(start, "thread")
	logger, _ := attr(start, "logger")

	record := entity.LogRecord{
		Sequence:     dc.sequence(),
		SourcePath:   source,
		Level:        level,
		Thread:       thread,
		Logger:       logger,
		Timestamp:    timestamp,
		DeltaSeconds: dc.delta(timestamp),
	}

	decodeChildren(dec, &record)

	accepted, err := p.filter.Accept(&record)
	if err != nil {
		return entity.LogRecord{}, false, err
	}
	if accepted {
		dc.advance()
	}
	return record, accepted, nil
}

func findEvent(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, ErrNoEventElement
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("malformed fragment: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name == eventName {
			return se, nil
		}
	}
}

// decodeChildren visits every element below the event until its end element.
// Field errors are already folded into the update as diagnostics; a
// tokenizer failure ends the walk and keeps whatever was decoded before it.
func decodeChildren(dec *xml.Decoder, record *entity.LogRecord) {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			record.Message = diagnostic("message", err)
			return
		}

		switch t := tok.(type) {
		case xml.StartElement:
			update, consumed, err := decodeChild(dec, t)
			if update != nil {
				update.apply(record)
			}
			var fault *syntaxFault
			if errors.As(err, &fault) {
				return
			}
			if !consumed {
				depth++
			}
		case xml.EndElement:
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

// parseTimestamp converts epoch milliseconds into local time. Fractional
// milliseconds are accepted.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).Local(), nil
	}
	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}
	return time.Unix(0, int64(ms*float64(time.Millisecond))).Local(), nil
}
