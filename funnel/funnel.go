package funnel

import (
	"sort"

	"funnelscope/api/models"
)

// stepUsers is the distinct-user accumulator for funnel membership counts,
// keyed by event type.
type stepUsers map[string]map[string]struct{}

func (s stepUsers) add(ev models.NormalizedEvent) {
	users, ok := s[ev.EventType]
	if !ok {
		users = make(map[string]struct{})
		s[ev.EventType] = users
	}
	users[ev.UserID] = struct{}{}
}

func (s stepUsers) count(eventType string) int {
	return len(s[eventType])
}

// ComputeFunnel counts, for every primary funnel step, the distinct users
// who ever performed that step's event, and derives step, overall and
// drop-off rates in percent. A user is counted at a step regardless of
// whether earlier steps were recorded.
func ComputeFunnel(events []models.NormalizedEvent) []models.FunnelStepMetric {
	acc := make(stepUsers)
	for _, ev := range events {
		acc.add(ev)
	}
	return funnelFromCounts(acc)
}

// ComputeFunnelByPlatform runs ComputeFunnel on each platform's events.
// Platforms are ordered by name.
func ComputeFunnelByPlatform(events []models.NormalizedEvent) []models.PlatformFunnelMetric {
	byPlatform := stepUsersByPlatform(events)

	var out []models.PlatformFunnelMetric
	for _, platform := range sortedKeys(byPlatform) {
		for _, m := range funnelFromCounts(byPlatform[platform]) {
			out = append(out, models.PlatformFunnelMetric{Platform: platform, FunnelStepMetric: m})
		}
	}
	return out
}

// SummarizePlatforms compares visitors, signups and purchases per platform.
func SummarizePlatforms(events []models.NormalizedEvent) []models.PlatformSummary {
	byPlatform := stepUsersByPlatform(events)

	out := make([]models.PlatformSummary, 0, len(byPlatform))
	for _, platform := range sortedKeys(byPlatform) {
		acc := byPlatform[platform]
		visitors := acc.count(EventLandingPageView)
		signups := acc.count(EventSignupPageView)
		purchases := acc.count(EventPurchaseCompleted)
		out = append(out, models.PlatformSummary{
			Platform:       platform,
			Visitors:       visitors,
			Signups:        signups,
			Purchases:      purchases,
			SignupRate:     percentage(signups, visitors),
			ConversionRate: percentage(purchases, visitors),
		})
	}
	return out
}

func stepUsersByPlatform(events []models.NormalizedEvent) map[string]stepUsers {
	byPlatform := make(map[string]stepUsers)
	for _, ev := range events {
		acc, ok := byPlatform[ev.Platform]
		if !ok {
			acc = make(stepUsers)
			byPlatform[ev.Platform] = acc
		}
		acc.add(ev)
	}
	return byPlatform
}

func funnelFromCounts(acc stepUsers) []models.FunnelStepMetric {
	steps := PrimaryFunnel()
	metrics := make([]models.FunnelStepMetric, len(steps))
	for i, eventType := range steps {
		m := models.FunnelStepMetric{
			Step:        i + 1,
			EventType:   eventType,
			EventLabel:  StepLabel(eventType),
			UsersAtStep: acc.count(eventType),
		}
		if i == 0 {
			m.StepConversionRate = 100
			m.OverallConversionRate = 100
		} else {
			m.StepConversionRate = percentage(m.UsersAtStep, metrics[i-1].UsersAtStep)
			m.OverallConversionRate = percentage(m.UsersAtStep, metrics[0].UsersAtStep)
			m.DropOffRate = 100 - m.StepConversionRate
		}
		metrics[i] = m
	}
	return metrics
}

// percentage returns 100*part/whole, 0 when whole is 0, capped to [0, 100].
// Membership counting can put more users on a later step than an earlier
// one; the cap keeps such rates at 100 while the raw counts stay visible.
func percentage(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	p := float64(part) / float64(whole) * 100
	if p > 100 {
		return 100
	}
	return p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
