package funnel

import (
	"sort"
	"time"

	"funnelscope/api/models"
)

const secondsPerWeek = 7 * 24 * 60 * 60

// userActivity accumulates a user's earliest timestamp and the set of ISO
// weeks the user was active in.
type userActivity struct {
	first       time.Time
	activeWeeks map[time.Time]struct{}
}

func (u *userActivity) add(ev models.NormalizedEvent) {
	if len(u.activeWeeks) == 0 || ev.Timestamp.Before(u.first) {
		u.first = ev.Timestamp
	}
	u.activeWeeks[WeekStart(ev.Timestamp)] = struct{}{}
}

type cellKey struct {
	cohortWeek time.Time
	period     int
}

// cohortCounts is the mergeable partial result of a cohort shard: distinct
// active users per cell and users per cohort. Shards hold disjoint users,
// so merging is a plain sum.
type cohortCounts struct {
	active map[cellKey]int
	sizes  map[time.Time]int
}

func newCohortCounts() cohortCounts {
	return cohortCounts{active: make(map[cellKey]int), sizes: make(map[time.Time]int)}
}

func (c cohortCounts) addUser(u *userActivity) {
	cohort := WeekStart(u.first)
	c.sizes[cohort]++
	for w := range u.activeWeeks {
		c.active[cellKey{cohortWeek: cohort, period: periodsBetween(cohort, w)}]++
	}
}

func (c cohortCounts) merge(o cohortCounts) {
	for k, n := range o.active {
		c.active[k] += n
	}
	for k, n := range o.sizes {
		c.sizes[k] += n
	}
}

// ComputeCohortRetention assigns every user to the ISO week of their first
// event and counts, for each later week the user was active in, the
// distinct users per (cohort week, weeks elapsed). Only observed cells are
// returned; a missing cell means no activity, not zero retention. Cells are
// ordered by cohort week then period.
func ComputeCohortRetention(events []models.NormalizedEvent) []models.CohortCell {
	partials := reduceShards(partitionByUser(events, shardCount), func(positions []int) cohortCounts {
		users := make(map[string]*userActivity)
		for _, i := range positions {
			ev := events[i]
			u, ok := users[ev.UserID]
			if !ok {
				u = &userActivity{activeWeeks: make(map[time.Time]struct{})}
				users[ev.UserID] = u
			}
			u.add(ev)
		}
		counts := newCohortCounts()
		for _, u := range users {
			counts.addUser(u)
		}
		return counts
	})

	total := newCohortCounts()
	for _, p := range partials {
		total.merge(p)
	}

	cells := make([]models.CohortCell, 0, len(total.active))
	for k, active := range total.active {
		size := total.sizes[k.cohortWeek]
		rate := 0.0
		if size > 0 {
			rate = float64(active) / float64(size)
		}
		cells = append(cells, models.CohortCell{
			CohortWeek:    k.cohortWeek,
			PeriodNumber:  k.period,
			ActiveUsers:   active,
			CohortSize:    size,
			RetentionRate: rate,
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if !cells[i].CohortWeek.Equal(cells[j].CohortWeek) {
			return cells[i].CohortWeek.Before(cells[j].CohortWeek)
		}
		return cells[i].PeriodNumber < cells[j].PeriodNumber
	})
	return cells
}

// periodsBetween returns whole weeks from cohort to active. Both are UTC
// week starts so the difference is an exact multiple of a week. Unix
// seconds are used since Duration saturates beyond about 292 years.
func periodsBetween(cohort, active time.Time) int {
	return int((active.Unix() - cohort.Unix()) / secondsPerWeek)
}
