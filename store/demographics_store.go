package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"funnelscope/api/models"
)

type DemographicsStore struct {
	db *sql.DB
}

func NewDemographicsStore(db *sql.DB) *DemographicsStore {
	return &DemographicsStore{db: db}
}

// LoadDemographics returns every demographics row. Duplicate user rows are
// returned as stored; enrichment keeps the first.
func (s *DemographicsStore) LoadDemographics(ctx context.Context) ([]models.Demographics, error) {
	query := `
		SELECT user_id, COALESCE(age_group, ''), COALESCE(gender, ''), registration_date, attributes
		FROM user_demographics
		ORDER BY user_id;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query demographics: %w", err)
	}
	defer rows.Close()

	var out []models.Demographics
	for rows.Next() {
		var (
			d     models.Demographics
			reg   sql.NullTime
			attrs []byte
		)
		if err := rows.Scan(&d.UserID, &d.AgeGroup, &d.Gender, &reg, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan demographics row: %w", err)
		}
		if reg.Valid {
			d.RegistrationDate = reg.Time.UTC()
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &d.Attributes); err != nil {
				return nil, fmt.Errorf("invalid attributes for user %s: %w", d.UserID, err)
			}
			if len(d.Attributes) == 0 {
				d.Attributes = nil
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during demographics load: %w", err)
	}
	return out, nil
}
