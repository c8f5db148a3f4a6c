package notifications

import "time"

// Timer mirrors the subset of time.Timer the popup queue needs so tests can
// drive dismissal deterministically.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and timer creation.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// NewClock returns a Clock backed by the time package.
func NewClock() Clock { return realClock{} }
