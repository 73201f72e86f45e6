package store

import (
	"context"
	"database/sql"
	"fmt"

	"funnelscope/api/models"
)

type CampaignStore struct {
	db *sql.DB
}

func NewCampaignStore(db *sql.DB) *CampaignStore {
	return &CampaignStore{db: db}
}

// LoadCampaigns returns all campaign rows.
func (s *CampaignStore) LoadCampaigns(ctx context.Context) ([]models.Campaign, error) {
	query := `
		SELECT campaign_name, channel, budget, users_acquired, conversions,
		       campaign_roi, cost_per_acquisition, cost_per_conversion,
		       conversion_rate_percent, start_date, end_date
		FROM campaigns
		ORDER BY channel, campaign_name;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	var out []models.Campaign
	for rows.Next() {
		var (
			c          models.Campaign
			start, end sql.NullTime
		)
		if err := rows.Scan(
			&c.CampaignName,
			&c.Channel,
			&c.Budget,
			&c.UsersAcquired,
			&c.Conversions,
			&c.CampaignROI,
			&c.CostPerAcquisition,
			&c.CostPerConversion,
			&c.ConversionRatePercent,
			&start,
			&end,
		); err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		if start.Valid {
			c.StartDate = start.Time.UTC()
		}
		if end.Valid {
			c.EndDate = end.Time.UTC()
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during campaign load: %w", err)
	}
	return out, nil
}
