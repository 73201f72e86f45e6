// Package ingest reads the event, demographics and campaign tables from CSV.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"funnelscope/api/models"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// table is a CSV body addressed by header name. Header lookup is case and
// order insensitive.
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV: missing header row")
		}
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	t := &table{columns: make(map[string]int, len(headers))}
	for i, h := range headers {
		t.columns[normalizeHeader(h)] = i
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(t.rows)+2, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *table) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.columns[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *table) get(row []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(h))
}

// ParseTime parses the timestamp formats found in event exports. Empty or
// unparseable values yield the zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ReadEvents reads an events table. Rows with an unparseable timestamp are
// kept with a zero timestamp so normalization can count them as dropped.
func ReadEvents(r io.Reader) ([]models.Event, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require("user_id", "event_type", "event_timestamp"); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(t.rows))
	for _, row := range t.rows {
		events = append(events, models.Event{
			UserID:        t.get(row, "user_id"),
			EventType:     t.get(row, "event_type"),
			Timestamp:     ParseTime(t.get(row, "event_timestamp")),
			SessionID:     t.get(row, "session_id"),
			Platform:      t.get(row, "platform"),
			Country:       t.get(row, "country"),
			TrafficSource: t.get(row, "traffic_source"),
		})
	}
	return events, nil
}

var knownDemographicColumns = map[string]bool{
	"user_id":           true,
	"age_group":         true,
	"gender":            true,
	"registration_date": true,
}

// ReadDemographics reads a demographics table. Unknown columns are kept in
// Attributes.
func ReadDemographics(r io.Reader) ([]models.Demographics, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require("user_id"); err != nil {
		return nil, err
	}

	out := make([]models.Demographics, 0, len(t.rows))
	for _, row := range t.rows {
		d := models.Demographics{
			UserID:           t.get(row, "user_id"),
			AgeGroup:         t.get(row, "age_group"),
			Gender:           t.get(row, "gender"),
			RegistrationDate: ParseTime(t.get(row, "registration_date")),
		}
		for name := range t.columns {
			if knownDemographicColumns[name] {
				continue
			}
			if v := t.get(row, name); v != "" {
				if d.Attributes == nil {
					d.Attributes = make(map[string]string)
				}
				d.Attributes[name] = v
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// ReadCampaigns reads a campaign table. Numeric columns must parse; empty
// numeric cells read as zero.
func ReadCampaigns(r io.Reader) ([]models.Campaign, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require("channel", "users_acquired", "conversions", "budget"); err != nil {
		return nil, err
	}

	out := make([]models.Campaign, 0, len(t.rows))
	for i, row := range t.rows {
		p := numberParser{t: t, row: row}
		c := models.Campaign{
			CampaignName:          t.get(row, "campaign_name"),
			Channel:               t.get(row, "channel"),
			Budget:                p.float("budget"),
			UsersAcquired:         p.int("users_acquired"),
			Conversions:           p.int("conversions"),
			CampaignROI:           p.float("campaign_roi"),
			CostPerAcquisition:    p.float("cost_per_acquisition"),
			CostPerConversion:     p.float("cost_per_conversion"),
			ConversionRatePercent: p.float("conversion_rate_percent"),
			StartDate:             ParseTime(t.get(row, "start_date")),
			EndDate:               ParseTime(t.get(row, "end_date")),
		}
		if p.err != nil {
			return nil, fmt.Errorf("campaign row %d: %w", i+2, p.err)
		}
		out = append(out, c)
	}
	return out, nil
}

// numberParser keeps the first parse error so a row can be read in one
// expression list.
type numberParser struct {
	t   *table
	row []string
	err error
}

func (p *numberParser) float(name string) float64 {
	v := p.t.get(p.row, name)
	if v == "" || p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: invalid number %q", name, v)
	}
	return f
}

func (p *numberParser) int(name string) int {
	v := p.t.get(p.row, name)
	if v == "" || p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Exports sometimes write counts as floats ("120.0").
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			p.err = fmt.Errorf("column %s: invalid integer %q", name, v)
			return 0
		}
		return int(f)
	}
	return n
}

// ReadEventsFile opens path and reads it with ReadEvents.
func ReadEventsFile(path string) ([]models.Event, error) {
	var events []models.Event
	err := withFile(path, func(r io.Reader) (err error) {
		events, err = ReadEvents(r)
		return err
	})
	return events, err
}

// ReadDemographicsFile opens path and reads it with ReadDemographics.
func ReadDemographicsFile(path string) ([]models.Demographics, error) {
	var out []models.Demographics
	err := withFile(path, func(r io.Reader) (err error) {
		out, err = ReadDemographics(r)
		return err
	})
	return out, err
}

// ReadCampaignsFile opens path and reads it with ReadCampaigns.
func ReadCampaignsFile(path string) ([]models.Campaign, error) {
	var out []models.Campaign
	err := withFile(path, func(r io.Reader) (err error) {
		out, err = ReadCampaigns(r)
		return err
	})
	return out, err
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
