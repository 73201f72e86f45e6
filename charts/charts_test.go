package charts

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelscope/api/funnel"
	"funnelscope/api/models"
)

var week0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func decoded(t *testing.T, u string) string {
	t.Helper()
	s, err := url.QueryUnescape(u)
	require.NoError(t, err)
	return s
}

func TestFunnelChartURL(t *testing.T) {
	u, err := FunnelChartURL([]models.FunnelStepMetric{
		{Step: 1, EventType: "landing_page_view", EventLabel: "Landing Page View", UsersAtStep: 3},
		{Step: 2, EventType: "signup_start", EventLabel: "Signup Start", UsersAtStep: 2},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "https://"))
	body := decoded(t, u)
	assert.Contains(t, body, "Signup Start")
	assert.Contains(t, body, "User Onboarding Funnel")
}

func TestChannelAndPlatformChartURL(t *testing.T) {
	u, err := ChannelChartURL([]models.ChannelRollup{{Channel: "social", ChannelConversionRate: 15}})
	require.NoError(t, err)
	assert.Contains(t, decoded(t, u), "social")

	u, err = PlatformChartURL([]models.PlatformSummary{{Platform: "ios", Visitors: 4, Signups: 2}})
	require.NoError(t, err)
	body := decoded(t, u)
	assert.Contains(t, body, "ios")
	assert.Contains(t, body, "Purchases")
}

func TestCohortHeatmap(t *testing.T) {
	week1 := week0.AddDate(0, 0, 7)
	cells := []models.CohortCell{
		{CohortWeek: week1, PeriodNumber: 0, RetentionRate: 1},
		{CohortWeek: week0, PeriodNumber: 0, RetentionRate: 1},
		{CohortWeek: week0, PeriodNumber: 2, RetentionRate: 0.5},
	}

	h := CohortHeatmap(cells, 0)
	assert.Equal(t, []time.Time{week0, week1}, h.Cohorts)
	assert.Equal(t, []int{0, 1, 2}, h.Periods)
	require.Len(t, h.Rates, 2)
	require.NotNil(t, h.Rates[0][2])
	assert.Equal(t, 0.5, *h.Rates[0][2])
	assert.Nil(t, h.Rates[0][1])
	assert.Nil(t, h.Rates[1][2])
}

func TestCohortHeatmapTruncatesToDisplayWindow(t *testing.T) {
	var cells []models.CohortCell
	for p := 0; p < 20; p++ {
		cells = append(cells, models.CohortCell{CohortWeek: week0, PeriodNumber: p, RetentionRate: 0.1})
	}

	h := CohortHeatmap(cells, 0)
	assert.Len(t, h.Periods, DefaultDisplayPeriods)
	assert.Len(t, h.Rates[0], DefaultDisplayPeriods)

	h = CohortHeatmap(cells, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, h.Periods)

	late := []models.CohortCell{{CohortWeek: week0, PeriodNumber: 30, RetentionRate: 0.1}}
	assert.Empty(t, CohortHeatmap(late, 0).Cohorts)
}

func TestCohortTableURL(t *testing.T) {
	h := CohortHeatmap([]models.CohortCell{
		{CohortWeek: week0, PeriodNumber: 0, RetentionRate: 1},
		{CohortWeek: week0, PeriodNumber: 2, RetentionRate: 0.5},
	}, 0)

	u, err := CohortTableURL(h)
	require.NoError(t, err)
	body := decoded(t, u)
	assert.Contains(t, body, "2024-01-01")
	assert.Contains(t, body, "50.0%")
	assert.Contains(t, body, `"title":"W2"`)
}

func TestRender(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := funnel.BuildReport(funnel.Input{Events: []models.Event{
		{UserID: "u1", EventType: "landing_page_view", Timestamp: at, Platform: "web"},
		{UserID: "u1", EventType: "signup_start", Timestamp: at.Add(time.Minute), Platform: "web"},
	}})

	urls, err := Render(r)
	require.NoError(t, err)
	assert.NotEmpty(t, urls.Funnel)
	assert.NotEmpty(t, urls.Platforms)
	assert.NotEmpty(t, urls.Channels)
	assert.Contains(t, urls.Cohorts, "api.quickchart.io/v1/table")
}
