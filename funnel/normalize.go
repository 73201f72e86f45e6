package funnel

import (
	"sort"
	"time"

	"funnelscope/api/models"
)

// dedupKey identifies an event by user, type and instant. Seconds and
// nanoseconds are kept apart since UnixNano overflows outside 1678-2262.
type dedupKey struct {
	userID    string
	eventType string
	unix      int64
	nano      int
}

func keyOf(ev models.Event) dedupKey {
	return dedupKey{
		userID:    ev.UserID,
		eventType: ev.EventType,
		unix:      ev.Timestamp.Unix(),
		nano:      ev.Timestamp.Nanosecond(),
	}
}

// Normalize drops rows missing a user, type or timestamp, removes exact
// (user, type, timestamp) duplicates keeping the first occurrence, derives
// calendar fields and the funnel ordinal, and sorts by user then timestamp.
// Ties keep input order. The second return value is the number of rows
// dropped for missing fields; duplicates are not counted.
func Normalize(raw []models.Event) ([]models.NormalizedEvent, int) {
	dropped := 0
	seen := make(map[dedupKey]struct{}, len(raw))
	out := make([]models.NormalizedEvent, 0, len(raw))

	for _, ev := range raw {
		if !ev.HasRequiredFields() {
			dropped++
			continue
		}
		key := keyOf(ev)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, deriveFields(ev))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out, dropped
}

// Events strips the derived fields, returning the underlying raw events.
func Events(normalized []models.NormalizedEvent) []models.Event {
	events := make([]models.Event, len(normalized))
	for i, ev := range normalized {
		events[i] = ev.Event
	}
	return events
}

// WeekStart returns Monday 00:00 UTC of the ISO week containing t. Every
// week-keyed computation goes through this function.
func WeekStart(t time.Time) time.Time {
	d := truncateToDay(t)
	return d.AddDate(0, 0, -isoWeekdayIndex(d))
}

func deriveFields(ev models.Event) models.NormalizedEvent {
	t := ev.Timestamp.UTC()
	isoYear, isoWeek := t.ISOWeek()
	step, _ := StepOf(ev.EventType)

	return models.NormalizedEvent{
		Event:      ev,
		Date:       truncateToDay(t),
		Hour:       t.Hour(),
		DayOfWeek:  isoWeekdayIndex(t),
		ISOYear:    isoYear,
		ISOWeek:    isoWeek,
		WeekStart:  WeekStart(t),
		Month:      int(t.Month()),
		FunnelStep: step,
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isoWeekdayIndex maps Monday..Sunday to 0..6.
func isoWeekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}
