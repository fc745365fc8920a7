// Package clock supplies record timestamps in Unix epoch milliseconds.
package clock

import "time"

// Clock reports the current time in milliseconds since the Unix epoch.
type Clock interface {
	NowMillis() uint64
}

// System is the wall clock.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) NowMillis() uint64 {
	ms := time.Now().UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// Fixed always reports the same instant.
type Fixed uint64

// NowMillis returns f.
func (f Fixed) NowMillis() uint64 { return uint64(f) }

// Func adapts a function to Clock.
type Func func() uint64

// NowMillis calls f.
func (f Func) NowMillis() uint64 { return f() }
