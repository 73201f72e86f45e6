package funnel

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelscope/api/models"
)

const week = 7 * 24 * time.Hour

func TestComputeCohortRetentionScenario(t *testing.T) {
	w0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events, _ := Normalize([]models.Event{
		ev("U1", EventLandingPageView, w0.Add(10*time.Hour)),
		ev("U1", EventSignupPageView, w0.Add(3*24*time.Hour)),
		ev("U1", EventAddToCart, w0.Add(2*week+2*time.Hour)),
		ev("U2", EventLandingPageView, w0.Add(6*24*time.Hour+23*time.Hour)),
	})

	cells := ComputeCohortRetention(events)
	require.Len(t, cells, 2)

	assert.Equal(t, models.CohortCell{
		CohortWeek:    w0,
		PeriodNumber:  0,
		ActiveUsers:   2,
		CohortSize:    2,
		RetentionRate: 1.0,
	}, cells[0])
	assert.Equal(t, models.CohortCell{
		CohortWeek:    w0,
		PeriodNumber:  2,
		ActiveUsers:   1,
		CohortSize:    2,
		RetentionRate: 0.5,
	}, cells[1])

	for _, c := range cells {
		assert.NotEqual(t, 1, c.PeriodNumber, "period without activity must not be materialized")
	}
}

func TestComputeCohortRetentionUsesFirstEventOfAnyType(t *testing.T) {
	w0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events, _ := Normalize([]models.Event{
		ev("U1", "newsletter_open", w0.Add(time.Hour)),
		ev("U1", EventLandingPageView, w0.Add(week+time.Hour)),
	})

	cells := ComputeCohortRetention(events)
	require.Len(t, cells, 2)
	assert.Equal(t, w0, cells[0].CohortWeek)
	assert.Equal(t, 1, cells[1].PeriodNumber)
	assert.Equal(t, 1.0, cells[1].RetentionRate)
}

func TestComputeCohortRetentionMultipleCohorts(t *testing.T) {
	for _, shards := range []int{1, 4, 32} {
		t.Run(fmt.Sprintf("shards=%d", shards), func(t *testing.T) {
			withShards(t, shards)

			w0 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
			var raw []models.Event
			for u := 0; u < 30; u++ {
				cohort := u % 3
				user := fmt.Sprintf("user-%02d", u)
				start := w0.Add(time.Duration(cohort) * week).Add(time.Duration(u) * time.Hour)
				raw = append(raw, ev(user, EventLandingPageView, start))
				if u%2 == 0 {
					raw = append(raw, ev(user, EventSignupPageView, start.Add(week)))
				}
			}
			events, _ := Normalize(raw)

			cells := ComputeCohortRetention(events)

			sizes := make(map[time.Time]int)
			for _, c := range cells {
				if c.PeriodNumber == 0 {
					sizes[c.CohortWeek] = c.ActiveUsers
					assert.Equal(t, c.CohortSize, c.ActiveUsers)
					assert.Equal(t, 1.0, c.RetentionRate)
				}
				assert.GreaterOrEqual(t, c.PeriodNumber, 0)
				assert.GreaterOrEqual(t, c.RetentionRate, 0.0)
				assert.LessOrEqual(t, c.RetentionRate, 1.0)
			}
			require.Len(t, sizes, 3)
			for _, size := range sizes {
				assert.Equal(t, 10, size)
			}
			require.Len(t, cells, 6)
			assert.Equal(t, 1, cells[1].PeriodNumber)
			assert.Equal(t, 5, cells[1].ActiveUsers)
		})
	}
}

func TestComputeCohortRetentionEmpty(t *testing.T) {
	assert.Empty(t, ComputeCohortRetention(nil))
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday, WeekStart(time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, monday.Add(week), WeekStart(time.Date(2024, 1, 8, 0, 0, 0, 1, time.UTC)))
	assert.Equal(t, 3, periodsBetween(monday, monday.AddDate(0, 0, 21)))
}

func TestPeriodsBetweenWideSpan(t *testing.T) {
	w0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, periodsBetween(w0, w0))
	assert.Equal(t, 2, periodsBetween(w0, w0.AddDate(0, 0, 14)))

	// Both Mondays, further apart than a Duration can hold.
	old := time.Date(1600, 1, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 22123, periodsBetween(old, w0))
}
