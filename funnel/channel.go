package funnel

import (
	"sort"

	"funnelscope/api/models"
)

// AggregateChannels sums acquisition, conversions and budget per marketing
// channel and derives the channel conversion rate in percent. Rollups are
// ordered by channel name.
func AggregateChannels(campaigns []models.Campaign) []models.ChannelRollup {
	byChannel := make(map[string]*models.ChannelRollup)
	for _, c := range campaigns {
		r, ok := byChannel[c.Channel]
		if !ok {
			r = &models.ChannelRollup{Channel: c.Channel}
			byChannel[c.Channel] = r
		}
		r.Campaigns++
		r.UsersAcquired += c.UsersAcquired
		r.Conversions += c.Conversions
		r.Budget += c.Budget
	}

	out := make([]models.ChannelRollup, 0, len(byChannel))
	for _, r := range byChannel {
		r.ChannelConversionRate = percentage(r.Conversions, r.UsersAcquired)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}
