package models

import "time"

// FunnelStepMetric holds user counts and percentage rates for one step of
// the primary funnel. UsersAtStep counts every user with an event of the
// step's type, so it can exceed the previous step; the step and overall
// rates are then capped at 100 and DropOffRate reads 0.
type FunnelStepMetric struct {
	Step                  int     `json:"step"`
	EventType             string  `json:"event_type"`
	EventLabel            string  `json:"event_label"`
	UsersAtStep           int     `json:"users_at_step"`
	StepConversionRate    float64 `json:"step_conversion_rate"`
	OverallConversionRate float64 `json:"overall_conversion_rate"`
	DropOffRate           float64 `json:"drop_off_rate"`
}

// PlatformFunnelMetric is a FunnelStepMetric computed on one platform's events.
type PlatformFunnelMetric struct {
	Platform string `json:"platform"`
	FunnelStepMetric
}

// PlatformSummary is the headline visitor/signup/purchase comparison for a
// platform.
type PlatformSummary struct {
	Platform       string  `json:"platform"`
	Visitors       int     `json:"visitors"`
	Signups        int     `json:"signups"`
	Purchases      int     `json:"purchases"`
	SignupRate     float64 `json:"signup_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// CohortCell is one observed (cohort week, period) retention value.
// RetentionRate is a fraction in [0, 1].
type CohortCell struct {
	CohortWeek    time.Time `json:"cohort_week"`
	PeriodNumber  int       `json:"period_number"`
	ActiveUsers   int       `json:"active_users"`
	CohortSize    int       `json:"cohort_size"`
	RetentionRate float64   `json:"retention_rate"`
}

// MonthlyTrend is the distinct-user count for an event type in a month.
type MonthlyTrend struct {
	Month     string `json:"month"` // YYYY-MM
	EventType string `json:"event_type"`
	Users     int    `json:"users"`
}

// DayOfWeekTrend is the distinct landing-page visitor count for a weekday.
type DayOfWeekTrend struct {
	DayOfWeek int    `json:"day_of_week"` // Monday=0
	DayName   string `json:"day_name"`
	Visitors  int    `json:"visitors"`
}

// HourlyActivity is the distinct active-user count for an hour of day (UTC).
type HourlyActivity struct {
	Hour  int `json:"hour"`
	Users int `json:"users"`
}

// LoadSummary describes a raw event table before normalization.
type LoadSummary struct {
	Rows        int       `json:"rows"`
	UniqueUsers int       `json:"unique_users"`
	FirstEvent  time.Time `json:"first_event"`
	LastEvent   time.Time `json:"last_event"`
}
