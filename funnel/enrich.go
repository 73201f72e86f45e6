package funnel

import "funnelscope/api/models"

// EnrichProfiles left-joins journeys with demographics on user ID. Every
// journey is kept; the second return value counts journeys without a
// demographics row. If demographics repeat a user, the first row wins.
func EnrichProfiles(journeys []models.UserJourneySummary, demographics []models.Demographics) ([]models.EnrichedProfile, int) {
	byUser := make(map[string]*models.Demographics, len(demographics))
	for i := range demographics {
		d := demographics[i]
		if _, ok := byUser[d.UserID]; ok {
			continue
		}
		byUser[d.UserID] = &d
	}

	missing := 0
	profiles := make([]models.EnrichedProfile, len(journeys))
	for i, j := range journeys {
		d, ok := byUser[j.UserID]
		if !ok {
			missing++
		}
		profiles[i] = models.EnrichedProfile{UserJourneySummary: j, Demographics: d}
	}
	return profiles, missing
}
