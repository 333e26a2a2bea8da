package parser

import "time"

// DecodingContext carries the state shared by consecutive fragments of one
// scan. It must not be shared between concurrent scans.
type DecodingContext struct {
	prevTimestamp *time.Time
	nextSequence  int
}

func NewDecodingContext() *DecodingContext {
	return &DecodingContext{nextSequence: 1}
}

// delta records ts as the latest timestamp and returns the seconds elapsed
// since the previous one, or nil for the first timestamp seen.
func (dc *DecodingContext) delta(ts time.Time) *float64 {
	var delta *float64
	if dc.prevTimestamp != nil {
		d := ts.Sub(*dc.prevTimestamp).Seconds()
		delta = &d
	}
	dc.prevTimestamp = &ts
	return delta
}

func (dc *DecodingContext) sequence() int {
	return dc.nextSequence
}

func (dc *DecodingContext) advance() {
	dc.nextSequence++
}
