// api/models/event.go
package models

import "time"

// Event is a single raw user-behavior event as it arrives from the event
// store or a CSV export. Missing values are represented by zero values.
type Event struct {
	UserID        string    `json:"user_id"`
	EventType     string    `json:"event_type"`
	Timestamp     time.Time `json:"event_timestamp"`
	SessionID     string    `json:"session_id"`
	Platform      string    `json:"platform"`
	Country       string    `json:"country"`
	TrafficSource string    `json:"traffic_source"`
}

// HasRequiredFields reports whether user, type and timestamp are all present.
func (e Event) HasRequiredFields() bool {
	return e.UserID != "" && e.EventType != "" && !e.Timestamp.IsZero()
}

// NormalizedEvent is an Event with calendar fields and the funnel ordinal
// attached. Calendar fields are derived in UTC.
type NormalizedEvent struct {
	Event
	Date      time.Time `json:"date"`
	Hour      int       `json:"hour"`
	DayOfWeek int       `json:"day_of_week"` // Monday=0
	ISOYear   int       `json:"iso_year"`
	ISOWeek   int       `json:"iso_week"`
	WeekStart time.Time `json:"week_start"`
	Month     int       `json:"month"`
	// FunnelStep is 1..11 for known step types, 0 otherwise.
	FunnelStep int `json:"funnel_step,omitempty"`
}

// TrackedEvent is the wire and storage shape of an event ingested through
// the tracking endpoint.
type TrackedEvent struct {
	EventID       string    `json:"eventId"`
	UserID        string    `json:"userId" binding:"required"`
	EventType     string    `json:"eventType" binding:"required"`
	Timestamp     time.Time `json:"timestamp" binding:"required"`
	SessionID     string    `json:"sessionId"`
	Platform      string    `json:"platform"`
	Country       string    `json:"country"`
	TrafficSource string    `json:"trafficSource"`
}

// Event converts the tracked record into an engine event.
func (t TrackedEvent) Event() Event {
	return Event{
		UserID:        t.UserID,
		EventType:     t.EventType,
		Timestamp:     t.Timestamp,
		SessionID:     t.SessionID,
		Platform:      t.Platform,
		Country:       t.Country,
		TrafficSource: t.TrafficSource,
	}
}

// TimeBucketCount is a count of events or users in one time bucket.
type TimeBucketCount struct {
	Time      time.Time `json:"time"`
	EventType *string   `json:"eventType,omitempty"`
	Count     uint64    `json:"count"`
}
