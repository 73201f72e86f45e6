package funnel

import (
	"fmt"
	"sort"

	"funnelscope/api/models"
)

type monthKey struct {
	month     string
	eventType string
}

// MonthlyTrends counts distinct users per calendar month and event type.
// Results are ordered by month, then event type.
func MonthlyTrends(events []models.NormalizedEvent) []models.MonthlyTrend {
	users := make(map[monthKey]map[string]struct{})
	for _, ev := range events {
		k := monthKey{month: monthLabel(ev), eventType: ev.EventType}
		set, ok := users[k]
		if !ok {
			set = make(map[string]struct{})
			users[k] = set
		}
		set[ev.UserID] = struct{}{}
	}

	out := make([]models.MonthlyTrend, 0, len(users))
	for k, set := range users {
		out = append(out, models.MonthlyTrend{Month: k.month, EventType: k.eventType, Users: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}

func monthLabel(ev models.NormalizedEvent) string {
	return fmt.Sprintf("%04d-%02d", ev.Date.Year(), ev.Month)
}

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayOfWeekTrends counts distinct landing page visitors per weekday. All
// seven days are returned Monday first, with zero for days never seen.
func DayOfWeekTrends(events []models.NormalizedEvent) []models.DayOfWeekTrend {
	var visitors [7]map[string]struct{}
	for _, ev := range events {
		if ev.EventType != EventLandingPageView || ev.DayOfWeek < 0 || ev.DayOfWeek > 6 {
			continue
		}
		if visitors[ev.DayOfWeek] == nil {
			visitors[ev.DayOfWeek] = make(map[string]struct{})
		}
		visitors[ev.DayOfWeek][ev.UserID] = struct{}{}
	}

	out := make([]models.DayOfWeekTrend, len(dayNames))
	for d, name := range dayNames {
		out[d] = models.DayOfWeekTrend{DayOfWeek: d, DayName: name, Visitors: len(visitors[d])}
	}
	return out
}

// HourlyActivity counts distinct users with any event per hour of day.
// Only hours with activity are returned, in hour order.
func HourlyActivity(events []models.NormalizedEvent) []models.HourlyActivity {
	users := make(map[int]map[string]struct{})
	for _, ev := range events {
		set, ok := users[ev.Hour]
		if !ok {
			set = make(map[string]struct{})
			users[ev.Hour] = set
		}
		set[ev.UserID] = struct{}{}
	}

	out := make([]models.HourlyActivity, 0, len(users))
	for hour, set := range users {
		out = append(out, models.HourlyActivity{Hour: hour, Users: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// Summarize describes a raw event table: row count, distinct users and the
// timestamp range. Rows without a timestamp do not affect the range.
func Summarize(raw []models.Event) models.LoadSummary {
	s := models.LoadSummary{Rows: len(raw)}
	users := make(map[string]struct{})
	for _, ev := range raw {
		if ev.UserID != "" {
			users[ev.UserID] = struct{}{}
		}
		if ev.Timestamp.IsZero() {
			continue
		}
		if s.FirstEvent.IsZero() || ev.Timestamp.Before(s.FirstEvent) {
			s.FirstEvent = ev.Timestamp
		}
		if ev.Timestamp.After(s.LastEvent) {
			s.LastEvent = ev.Timestamp
		}
	}
	s.UniqueUsers = len(users)
	return s
}
