package funnel

import (
	"sync"

	"funnelscope/api/models"
)

// Input is the set of tables a report is computed from.
type Input struct {
	Events       []models.Event
	Demographics []models.Demographics
	Campaigns    []models.Campaign
}

// Stats records row-level outcomes of a report run.
type Stats struct {
	Load                models.LoadSummary `json:"load"`
	DroppedRows         int                `json:"dropped_rows"`
	DuplicateRows       int                `json:"duplicate_rows"`
	NormalizedRows      int                `json:"normalized_rows"`
	Users               int                `json:"users"`
	MissingDemographics int                `json:"missing_demographics"`
}

// Report holds every output table of one computation.
type Report struct {
	Stats           Stats                         `json:"stats"`
	Events          []models.NormalizedEvent      `json:"-"`
	Journeys        []models.UserJourneySummary   `json:"journeys"`
	Profiles        []models.EnrichedProfile      `json:"profiles"`
	Funnel          []models.FunnelStepMetric     `json:"funnel"`
	PlatformFunnel  []models.PlatformFunnelMetric `json:"platform_funnel"`
	PlatformSummary []models.PlatformSummary      `json:"platform_summary"`
	Cohorts         []models.CohortCell           `json:"cohorts"`
	Channels        []models.ChannelRollup        `json:"channels"`
	MonthlyTrends   []models.MonthlyTrend         `json:"monthly_trends"`
	DayOfWeekTrends []models.DayOfWeekTrend       `json:"day_of_week_trends"`
	HourlyActivity  []models.HourlyActivity       `json:"hourly_activity"`
}

// BuildReport normalizes the events once and computes the independent
// tables concurrently.
func BuildReport(in Input) *Report {
	events, dropped := Normalize(in.Events)
	r := &Report{
		Events: events,
		Stats: Stats{
			Load:           Summarize(in.Events),
			DroppedRows:    dropped,
			DuplicateRows:  len(in.Events) - dropped - len(events),
			NormalizedRows: len(events),
		},
	}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		r.Journeys = SummarizeJourneys(events)
		r.Profiles, r.Stats.MissingDemographics = EnrichProfiles(r.Journeys, in.Demographics)
		r.Stats.Users = len(r.Journeys)
	})
	run(func() { r.Funnel = ComputeFunnel(events) })
	run(func() { r.PlatformFunnel = ComputeFunnelByPlatform(events) })
	run(func() { r.PlatformSummary = SummarizePlatforms(events) })
	run(func() { r.Cohorts = ComputeCohortRetention(events) })
	run(func() {
		r.MonthlyTrends = MonthlyTrends(events)
		r.DayOfWeekTrends = DayOfWeekTrends(events)
		r.HourlyActivity = HourlyActivity(events)
	})
	run(func() { r.Channels = AggregateChannels(in.Campaigns) })

	wg.Wait()
	return r
}
