package models

import "time"

// UserJourneySummary is the per-user reduction of normalized events.
type UserJourneySummary struct {
	UserID               string    `json:"user_id"`
	FirstEvent           time.Time `json:"first_event"`
	LastEvent            time.Time `json:"last_event"`
	TotalEvents          int       `json:"total_events"`
	UniqueEventTypes     int       `json:"unique_event_types"`
	MaxFunnelStep        int       `json:"max_funnel_step,omitempty"` // 0 when no mapped event
	TotalSessions        int       `json:"total_sessions"`
	Platform             string    `json:"platform"`
	Country              string    `json:"country"`
	TrafficSource        string    `json:"traffic_source"`
	SessionDurationHours float64   `json:"session_duration_hours"`
	ConvertedToPurchase  bool      `json:"converted_to_purchase"`
	DownloadedApp        bool      `json:"downloaded_app"`
	CompletedSignup      bool      `json:"completed_signup"`
}

// Demographics is one row of the externally supplied demographics table.
// Columns beyond the known ones are kept in Attributes.
type Demographics struct {
	UserID           string            `json:"user_id"`
	AgeGroup         string            `json:"age_group"`
	Gender           string            `json:"gender,omitempty"`
	RegistrationDate time.Time         `json:"registration_date"`
	Attributes       map[string]string `json:"attributes,omitempty"`
}

// EnrichedProfile is a journey summary left-joined with demographics.
// Demographics is nil when the user has no demographics row.
type EnrichedProfile struct {
	UserJourneySummary
	Demographics *Demographics `json:"demographics"`
}
