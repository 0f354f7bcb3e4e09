package domain

import "time"

// TimeSlot is a bookable [Start, Start+Duration) interval. Start carries the
// restaurant's local time zone; slots are generated by the calendar and never
// mutated.
type TimeSlot struct {
	Start    time.Time
	Duration time.Duration
}

func (s TimeSlot) End() time.Time {
	return s.Start.Add(s.Duration)
}

// Overlaps reports whether the two half-open intervals intersect.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start.Before(other.End()) && other.Start.Before(s.End())
}

// Date returns the slot's calendar day at midnight in the slot's zone.
func (s TimeSlot) Date() time.Time {
	y, m, d := s.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Start.Location())
}
