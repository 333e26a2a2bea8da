package entity

import (
	"fmt"
	"strings"
	"time"
)

type Level int

const (
	LevelAny Level = iota
	LevelError
	LevelInfo
	LevelDebug
	LevelWarn
	LevelFatal
)

var levelNames = map[Level]string{
	LevelError: "ERROR",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelWarn:  "WARN",
	LevelFatal: "FATAL",
}

// Name returns the canonical severity name, or "" for LevelAny.
func (l Level) Name() string {
	return levelNames[l]
}

func (l Level) String() string {
	if l == LevelAny {
		return "ANY"
	}
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts a severity name (any case), "any" or "".
func ParseLevel(s string) (Level, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "ANY" || s == "ALL" {
		return LevelAny, nil
	}
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelAny, fmt.Errorf("unknown level %q", s)
}

// FilterParams are the read-only criteria applied to every decoded record.
// Zero values impose no restriction.
type FilterParams struct {
	Level      Level
	Date       *time.Time
	Thread     string
	Message    string
	Logger     string
	Expression string
}
