package clock

import "time"

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func NewClock() Clock {
	return &realClock{}
}

// Fixed is a Clock that always reports the same instant. Advance moves it forward.
type Fixed struct {
	At time.Time
}

func (f *Fixed) Now() time.Time {
	return f.At
}

func (f *Fixed) Advance(d time.Duration) {
	f.At = f.At.Add(d)
}
