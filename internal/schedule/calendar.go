package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/denizerden/table-reservation-system/internal/domain"
)

// Window is one weekday's operating hours, expressed as offsets from local
// midnight. A zero Window means the restaurant is closed that day.
type Window struct {
	Open  time.Duration
	Close time.Duration
}

func (w Window) Closed() bool {
	return w.Open == 0 && w.Close == 0
}

type Config struct {
	Location      *time.Location
	SlotDuration  time.Duration
	LookAheadDays int
	Hours         [7]Window // indexed by time.Weekday
}

// Calendar derives the finite set of bookable slots from the operating-hours
// configuration and the current moment. It holds no state besides config:
// results are recomputed per call because "now" advances.
type Calendar struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Calendar {
	return &Calendar{cfg: cfg, now: time.Now}
}

// NewWithClock is for tests that need a fixed notion of now.
func NewWithClock(cfg Config, now func() time.Time) *Calendar {
	return &Calendar{cfg: cfg, now: now}
}

func (c *Calendar) Location() *time.Location {
	return c.cfg.Location
}

func (c *Calendar) SlotDuration() time.Duration {
	return c.cfg.SlotDuration
}

// Slots enumerates the bookable slots of the given calendar day, earliest
// first. Days outside [today, today+lookAhead] yield nothing, as do closed
// days. For today, slots whose start has already passed are skipped.
func (c *Calendar) Slots(date time.Time) []domain.TimeSlot {
	now := c.now().In(c.cfg.Location)
	day := midnight(date.In(c.cfg.Location))

	if day.Before(midnight(now)) || day.After(midnight(now).AddDate(0, 0, c.cfg.LookAheadDays)) {
		return nil
	}

	window := c.cfg.Hours[day.Weekday()]
	if window.Closed() {
		return nil
	}

	var slots []domain.TimeSlot

	for open := window.Open; open+c.cfg.SlotDuration <= window.Close; open += c.cfg.SlotDuration {
		start := day.Add(open)
		if start.Before(now) {
			continue
		}

		slots = append(slots, domain.TimeSlot{Start: start, Duration: c.cfg.SlotDuration})
	}

	return slots
}

// Validate checks that a slot starting at the given instant is bookable:
// inside the look-ahead window, inside that weekday's operating hours, and
// aligned to the slot grid. It returns domain.ErrOutOfRangeSlot otherwise.
func (c *Calendar) Validate(start time.Time) error {
	now := c.now().In(c.cfg.Location)
	start = start.In(c.cfg.Location)

	if start.Before(now) {
		return domain.ErrOutOfRangeSlot
	}

	if midnight(start).After(midnight(now).AddDate(0, 0, c.cfg.LookAheadDays)) {
		return domain.ErrOutOfRangeSlot
	}

	window := c.cfg.Hours[start.Weekday()]
	if window.Closed() {
		return domain.ErrOutOfRangeSlot
	}

	offset := start.Sub(midnight(start))
	if offset < window.Open || offset+c.cfg.SlotDuration > window.Close {
		return domain.ErrOutOfRangeSlot
	}

	if (offset-window.Open)%c.cfg.SlotDuration != 0 {
		return domain.ErrOutOfRangeSlot
	}

	return nil
}

// Slot builds the TimeSlot starting at the given instant.
func (c *Calendar) Slot(start time.Time) domain.TimeSlot {
	return domain.TimeSlot{Start: start.In(c.cfg.Location), Duration: c.cfg.SlotDuration}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var weekdayNames = map[string]time.Weekday{
	"Sun": time.Sunday,
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
}

// ParseWeekHours parses an operating-hours flag of the form
// "Mon=11:00-23:00,Tue=11:00-23:00,Sun=closed". Days not mentioned inherit
// the special "default" entry; without one they are closed.
func ParseWeekHours(spec string) ([7]Window, error) {
	var hours [7]Window
	var fallback Window
	var haveFallback bool

	assigned := make(map[time.Weekday]bool)

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return hours, fmt.Errorf("invalid operating hours entry %q", entry)
		}

		window, err := parseWindow(value)
		if err != nil {
			return hours, err
		}

		if name == "default" {
			fallback = window
			haveFallback = true
			continue
		}

		day, ok := weekdayNames[name]
		if !ok {
			return hours, fmt.Errorf("unknown weekday %q", name)
		}

		hours[day] = window
		assigned[day] = true
	}

	if haveFallback {
		for day := time.Sunday; day <= time.Saturday; day++ {
			if !assigned[day] {
				hours[day] = fallback
			}
		}
	}

	return hours, nil
}

func parseWindow(value string) (Window, error) {
	if value == "closed" {
		return Window{}, nil
	}

	openStr, closeStr, ok := strings.Cut(value, "-")
	if !ok {
		return Window{}, fmt.Errorf("invalid operating hours window %q", value)
	}

	open, err := parseClock(openStr)
	if err != nil {
		return Window{}, err
	}

	close, err := parseClock(closeStr)
	if err != nil {
		return Window{}, err
	}

	if close <= open {
		return Window{}, fmt.Errorf("operating hours window %q closes before it opens", value)
	}

	return Window{Open: open, Close: close}, nil
}

func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}

	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
