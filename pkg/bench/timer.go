package bench

import (
	"time"
)

// Timer measures one span of wall time. Start and Stop pair up; ElapsedMS
// reads the last completed span.
type Timer struct {
	start   time.Time
	elapsed time.Duration
}

func (t *Timer) Start() {
	t.start = time.Now()
}

func (t *Timer) Stop() {
	t.elapsed = time.Since(t.start)
}

func (t *Timer) ElapsedMS() float64 {
	return float64(t.elapsed) / float64(time.Millisecond)
}
