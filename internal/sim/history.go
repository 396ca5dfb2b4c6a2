package sim

import (
	"time"

	drive "drive_diagnostics"
)

// series is an append-only sample buffer. Appends arrive in time order, so
// retention pruning only ever trims from the front.
type series struct {
	points []drive.HistoryPoint
}

func (s *series) add(t time.Time, v float64) {
	s.points = append(s.points, drive.HistoryPoint{Timestamp: t, Value: v})
}

// prune drops every sample at or before cutoff.
func (s *series) prune(cutoff time.Time) {
	i := 0
	for i < len(s.points) && !s.points[i].Timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		s.points = append(s.points[:0], s.points[i:]...)
	}
}

// tail returns a copy of the most recent n samples.
func (s *series) tail(n int) []drive.HistoryPoint {
	start := len(s.points) - n
	if start < 0 {
		start = 0
	}
	out := make([]drive.HistoryPoint, len(s.points)-start)
	copy(out, s.points[start:])
	return out
}

// recentDelta reports the change across the last n samples, last minus
// first. ok is false when fewer than n samples exist.
func (s *series) recentDelta(n int) (delta float64, ok bool) {
	if n <= 0 || len(s.points) < n {
		return 0, false
	}
	window := s.points[len(s.points)-n:]
	return window[len(window)-1].Value - window[0].Value, true
}
