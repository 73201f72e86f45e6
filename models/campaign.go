package models

import "time"

// Campaign is one row of the marketing campaign table.
type Campaign struct {
	CampaignName          string    `json:"campaign_name"`
	Channel               string    `json:"channel"`
	Budget                float64   `json:"budget"`
	UsersAcquired         int       `json:"users_acquired"`
	Conversions           int       `json:"conversions"`
	CampaignROI           float64   `json:"campaign_roi"`
	CostPerAcquisition    float64   `json:"cost_per_acquisition"`
	CostPerConversion     float64   `json:"cost_per_conversion"`
	ConversionRatePercent float64   `json:"conversion_rate_percent"`
	StartDate             time.Time `json:"start_date"`
	EndDate               time.Time `json:"end_date"`
}

// ChannelRollup aggregates campaigns sharing a marketing channel.
type ChannelRollup struct {
	Channel               string  `json:"channel"`
	Campaigns             int     `json:"campaigns"`
	UsersAcquired         int     `json:"users_acquired"`
	Conversions           int     `json:"conversions"`
	Budget                float64 `json:"budget"`
	ChannelConversionRate float64 `json:"channel_conversion_rate"`
}
