package export

import (
	"time"

	"funnelscope/api/funnel"
	"funnelscope/api/models"
)

// table is one named output table. records is the typed slice written as
// JSON; header and rows feed the tabular formats.
type table struct {
	name    string
	records interface{}
	header  []string
	rows    [][]interface{}
}

var journeyHeader = []string{
	"user_id", "first_event", "last_event", "total_events", "unique_event_types",
	"max_funnel_step", "total_sessions", "platform", "country", "traffic_source",
	"session_duration_hours", "converted_to_purchase", "downloaded_app", "completed_signup",
}

var funnelHeader = []string{
	"step", "event_type", "event_label", "users_at_step",
	"step_conversion_rate", "overall_conversion_rate", "drop_off_rate",
}

func tables(r *funnel.Report) []table {
	return []table{
		eventsTable(r.Events),
		journeysTable(r.Journeys),
		profilesTable(r.Profiles),
		funnelTable(r.Funnel),
		platformFunnelTable(r.PlatformFunnel),
		platformSummaryTable(r.PlatformSummary),
		cohortTable(r.Cohorts),
		channelTable(r.Channels),
		trendsTable(r.MonthlyTrends),
		dayOfWeekTable(r.DayOfWeekTrends),
		hourlyTable(r.HourlyActivity),
	}
}

func eventsTable(events []models.NormalizedEvent) table {
	t := table{
		name:    "cleaned_user_events",
		records: nonNil(events),
		header: []string{
			"user_id", "event_type", "event_timestamp", "session_id", "platform", "country",
			"traffic_source", "date", "hour", "day_of_week", "iso_week", "week_start", "month", "funnel_step",
		},
	}
	for _, e := range events {
		t.rows = append(t.rows, []interface{}{
			e.UserID, e.EventType, timestamp(e.Timestamp), e.SessionID, e.Platform, e.Country,
			e.TrafficSource, day(e.Date), e.Hour, e.DayOfWeek, e.ISOWeek, day(e.WeekStart), e.Month,
			optionalInt(e.FunnelStep),
		})
	}
	return t
}

func journeyRow(j models.UserJourneySummary) []interface{} {
	return []interface{}{
		j.UserID, timestamp(j.FirstEvent), timestamp(j.LastEvent), j.TotalEvents, j.UniqueEventTypes,
		optionalInt(j.MaxFunnelStep), j.TotalSessions, j.Platform, j.Country, j.TrafficSource,
		j.SessionDurationHours, j.ConvertedToPurchase, j.DownloadedApp, j.CompletedSignup,
	}
}

func journeysTable(journeys []models.UserJourneySummary) table {
	t := table{name: "user_journey_summary", records: nonNil(journeys), header: journeyHeader}
	for _, j := range journeys {
		t.rows = append(t.rows, journeyRow(j))
	}
	return t
}

func profilesTable(profiles []models.EnrichedProfile) table {
	header := append(append([]string{}, journeyHeader...), "age_group", "gender", "registration_date")
	t := table{name: "enriched_user_data", records: nonNil(profiles), header: header}
	for _, p := range profiles {
		row := journeyRow(p.UserJourneySummary)
		if d := p.Demographics; d != nil {
			row = append(row, d.AgeGroup, d.Gender, day(d.RegistrationDate))
		} else {
			row = append(row, "", "", "")
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func funnelRow(m models.FunnelStepMetric) []interface{} {
	return []interface{}{
		m.Step, m.EventType, m.EventLabel, m.UsersAtStep,
		m.StepConversionRate, m.OverallConversionRate, m.DropOffRate,
	}
}

func funnelTable(metrics []models.FunnelStepMetric) table {
	t := table{name: "funnel_metrics", records: nonNil(metrics), header: funnelHeader}
	for _, m := range metrics {
		t.rows = append(t.rows, funnelRow(m))
	}
	return t
}

func platformFunnelTable(metrics []models.PlatformFunnelMetric) table {
	t := table{
		name:    "platform_funnel_metrics",
		records: nonNil(metrics),
		header:  append([]string{"platform"}, funnelHeader...),
	}
	for _, m := range metrics {
		t.rows = append(t.rows, append([]interface{}{m.Platform}, funnelRow(m.FunnelStepMetric)...))
	}
	return t
}

func platformSummaryTable(summaries []models.PlatformSummary) table {
	t := table{
		name:    "platform_summary",
		records: nonNil(summaries),
		header:  []string{"platform", "visitors", "signups", "purchases", "signup_rate", "conversion_rate"},
	}
	for _, s := range summaries {
		t.rows = append(t.rows, []interface{}{s.Platform, s.Visitors, s.Signups, s.Purchases, s.SignupRate, s.ConversionRate})
	}
	return t
}

func cohortTable(cells []models.CohortCell) table {
	t := table{
		name:    "cohort_retention",
		records: nonNil(cells),
		header:  []string{"cohort_week", "period_number", "active_users", "cohort_size", "retention_rate"},
	}
	for _, c := range cells {
		t.rows = append(t.rows, []interface{}{day(c.CohortWeek), c.PeriodNumber, c.ActiveUsers, c.CohortSize, c.RetentionRate})
	}
	return t
}

func channelTable(rollups []models.ChannelRollup) table {
	t := table{
		name:    "channel_rollup",
		records: nonNil(rollups),
		header:  []string{"channel", "campaigns", "users_acquired", "conversions", "budget", "channel_conversion_rate"},
	}
	for _, r := range rollups {
		t.rows = append(t.rows, []interface{}{r.Channel, r.Campaigns, r.UsersAcquired, r.Conversions, r.Budget, r.ChannelConversionRate})
	}
	return t
}

func trendsTable(trends []models.MonthlyTrend) table {
	t := table{name: "monthly_trends", records: nonNil(trends), header: []string{"month", "event_type", "users"}}
	for _, m := range trends {
		t.rows = append(t.rows, []interface{}{m.Month, m.EventType, m.Users})
	}
	return t
}

func dayOfWeekTable(trends []models.DayOfWeekTrend) table {
	t := table{name: "day_of_week_trends", records: nonNil(trends), header: []string{"day_of_week", "day_name", "visitors"}}
	for _, d := range trends {
		t.rows = append(t.rows, []interface{}{d.DayOfWeek, d.DayName, d.Visitors})
	}
	return t
}

func hourlyTable(hours []models.HourlyActivity) table {
	t := table{name: "hourly_activity", records: nonNil(hours), header: []string{"hour", "users"}}
	for _, h := range hours {
		t.rows = append(t.rows, []interface{}{h.Hour, h.Users})
	}
	return t
}

// nonNil keeps empty tables encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// optionalInt renders the 0 "not set" sentinel as an empty cell.
func optionalInt(v int) interface{} {
	if v == 0 {
		return ""
	}
	return v
}
