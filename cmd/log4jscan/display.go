package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
)

const timeLayout = "2006-01-02 15:04:05.000"

var levelColors = map[string]*color.Color{
	"FATAL": color.New(color.FgHiRed, color.Bold),
	"ERROR": color.New(color.FgRed),
	"WARN":  color.New(color.FgYellow),
	"INFO":  color.New(color.FgGreen),
	"DEBUG": color.New(color.FgCyan),
}

type display struct {
	w       io.Writer
	asJSON  bool
	encoder *json.Encoder
	dim     *color.Color
}

func newDisplay(w io.Writer, asJSON bool) *display {
	return &display{
		w:       w,
		asJSON:  asJSON,
		encoder: json.NewEncoder(w),
		dim:     color.New(color.Faint),
	}
}

func (d *display) Print(record entity.LogRecord) error {
	if d.asJSON {
		return d.encoder.Encode(record)
	}

	level := strings.ToUpper(record.Level)
	levelText := fmt.Sprintf("%-5s", level)
	if c, ok := levelColors[level]; ok {
		levelText = c.Sprint(levelText)
	}

	delta := ""
	if record.DeltaSeconds != nil {
		delta = d.dim.Sprintf(" (+%.3fs)", *record.DeltaSeconds)
	}

	if _, err := fmt.Fprintf(d.w, "%6d %s%s %s [%s] %s - %s\n",
		record.Sequence,
		record.Timestamp.Format(timeLayout),
		delta,
		levelText,
		record.Thread,
		record.Logger,
		record.Message,
	); err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(record.CustomFields)) {
		if _, err := d.dim.Fprintf(d.w, "       %s=%s\n", name, record.CustomFields[name]); err != nil {
			return err
		}
	}
	if record.Throwable != nil && *record.Throwable != "" {
		if _, err := fmt.Fprintln(d.w, *record.Throwable); err != nil {
			return err
		}
	}
	return nil
}
