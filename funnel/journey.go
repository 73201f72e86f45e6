package funnel

import (
	"sort"
	"time"

	"funnelscope/api/models"
)

// journeyAcc accumulates one user's journey. firstSeq is the input position
// of the earliest event and breaks timestamp ties between shards.
type journeyAcc struct {
	userID     string
	first      time.Time
	firstSeq   int
	last       time.Time
	total      int
	eventTypes map[string]struct{}
	sessions   map[string]struct{}
	maxStep    int
	origin     models.Event
}

func newJourneyAcc(userID string) *journeyAcc {
	return &journeyAcc{
		userID:     userID,
		eventTypes: make(map[string]struct{}),
		sessions:   make(map[string]struct{}),
	}
}

func (a *journeyAcc) add(seq int, ev models.NormalizedEvent) {
	if a.total == 0 || ev.Timestamp.Before(a.first) || (ev.Timestamp.Equal(a.first) && seq < a.firstSeq) {
		a.first = ev.Timestamp
		a.firstSeq = seq
		a.origin = ev.Event
	}
	if a.total == 0 || ev.Timestamp.After(a.last) {
		a.last = ev.Timestamp
	}
	a.total++
	a.eventTypes[ev.EventType] = struct{}{}
	if ev.SessionID != "" {
		a.sessions[ev.SessionID] = struct{}{}
	}
	if ev.FunnelStep > a.maxStep {
		a.maxStep = ev.FunnelStep
	}
}

func (a *journeyAcc) merge(o *journeyAcc) {
	if o.total == 0 {
		return
	}
	if a.total == 0 || o.first.Before(a.first) || (o.first.Equal(a.first) && o.firstSeq < a.firstSeq) {
		a.first = o.first
		a.firstSeq = o.firstSeq
		a.origin = o.origin
	}
	if a.total == 0 || o.last.After(a.last) {
		a.last = o.last
	}
	a.total += o.total
	for t := range o.eventTypes {
		a.eventTypes[t] = struct{}{}
	}
	for s := range o.sessions {
		a.sessions[s] = struct{}{}
	}
	if o.maxStep > a.maxStep {
		a.maxStep = o.maxStep
	}
}

func (a *journeyAcc) summary() models.UserJourneySummary {
	_, purchased := a.eventTypes[EventPurchaseCompleted]
	_, downloaded := a.eventTypes[EventAppDownload]
	_, verified := a.eventTypes[EventEmailVerification]

	return models.UserJourneySummary{
		UserID:               a.userID,
		FirstEvent:           a.first,
		LastEvent:            a.last,
		TotalEvents:          a.total,
		UniqueEventTypes:     len(a.eventTypes),
		MaxFunnelStep:        a.maxStep,
		TotalSessions:        len(a.sessions),
		Platform:             a.origin.Platform,
		Country:              a.origin.Country,
		TrafficSource:        a.origin.TrafficSource,
		SessionDurationHours: a.last.Sub(a.first).Hours(),
		ConvertedToPurchase:  purchased,
		DownloadedApp:        downloaded,
		CompletedSignup:      verified,
	}
}

// SummarizeJourneys reduces normalized events to one summary per user,
// sorted by user ID. Attribution fields come from the user's earliest event.
// Signup completion means an email_verification event was seen.
func SummarizeJourneys(events []models.NormalizedEvent) []models.UserJourneySummary {
	partials := reduceShards(partitionByUser(events, shardCount), func(positions []int) map[string]*journeyAcc {
		accs := make(map[string]*journeyAcc)
		for _, i := range positions {
			ev := events[i]
			acc, ok := accs[ev.UserID]
			if !ok {
				acc = newJourneyAcc(ev.UserID)
				accs[ev.UserID] = acc
			}
			acc.add(i, ev)
		}
		return accs
	})

	merged := make(map[string]*journeyAcc)
	for _, part := range partials {
		for userID, acc := range part {
			if cur, ok := merged[userID]; ok {
				cur.merge(acc)
				continue
			}
			merged[userID] = acc
		}
	}

	summaries := make([]models.UserJourneySummary, 0, len(merged))
	for _, acc := range merged {
		summaries = append(summaries, acc.summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UserID < summaries[j].UserID
	})
	return summaries
}
