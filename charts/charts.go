// Package charts renders report tables as QuickChart image URLs and pivots
// cohort cells into a display matrix. No network calls are made.
package charts

import (
	"encoding/json"
	"fmt"
	"net/url"

	quickchartgo "github.com/henomis/quickchart-go"
	log "github.com/sirupsen/logrus"

	"funnelscope/api/funnel"
	"funnelscope/api/models"
)

const tableBaseURL = "https://api.quickchart.io/v1/table"

type ChartConfig struct {
	Type    string        `json:"type"`
	Data    ChartData     `json:"data"`
	Options *ChartOptions `json:"options,omitempty"`
}

type ChartData struct {
	Labels   []interface{} `json:"labels"`
	DataSets []Dataset     `json:"datasets"`
}

type Dataset struct {
	Label string        `json:"label"`
	Data  []interface{} `json:"data"`
	Fill  bool          `json:"fill"`
}

type ChartOptions struct {
	Title ChartTitle `json:"title"`
}

type ChartTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type TableConfig struct {
	Title      string        `json:"title"`
	Columns    []Column      `json:"columns"`
	DataSource []interface{} `json:"dataSource"`
}

type Column struct {
	Width     int    `json:"width"`
	Title     string `json:"title"`
	DataIndex string `json:"dataIndex"`
}

// URLs holds one chart URL per report visual.
type URLs struct {
	Funnel    string `json:"funnel"`
	Platforms string `json:"platforms"`
	Channels  string `json:"channels"`
	Cohorts   string `json:"cohorts"`
}

// Render builds every chart URL for a report.
func Render(r *funnel.Report) (URLs, error) {
	var (
		out URLs
		err error
	)
	if out.Funnel, err = FunnelChartURL(r.Funnel); err != nil {
		return out, err
	}
	if out.Platforms, err = PlatformChartURL(r.PlatformSummary); err != nil {
		return out, err
	}
	if out.Channels, err = ChannelChartURL(r.Channels); err != nil {
		return out, err
	}
	if out.Cohorts, err = CohortTableURL(CohortHeatmap(r.Cohorts, DefaultDisplayPeriods)); err != nil {
		return out, err
	}
	return out, nil
}

// FunnelChartURL charts users per primary funnel step.
func FunnelChartURL(metrics []models.FunnelStepMetric) (string, error) {
	labels := make([]interface{}, 0, len(metrics))
	users := make([]interface{}, 0, len(metrics))
	for _, m := range metrics {
		labels = append(labels, m.EventLabel)
		users = append(users, m.UsersAtStep)
	}
	return chartURL(ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels:   labels,
			DataSets: []Dataset{{Label: "Users", Data: users}},
		},
		Options: title("User Onboarding Funnel"),
	})
}

// PlatformChartURL compares visitors, signups and purchases per platform.
func PlatformChartURL(summaries []models.PlatformSummary) (string, error) {
	labels := make([]interface{}, 0, len(summaries))
	visitors := make([]interface{}, 0, len(summaries))
	signups := make([]interface{}, 0, len(summaries))
	purchases := make([]interface{}, 0, len(summaries))
	for _, s := range summaries {
		labels = append(labels, s.Platform)
		visitors = append(visitors, s.Visitors)
		signups = append(signups, s.Signups)
		purchases = append(purchases, s.Purchases)
	}
	return chartURL(ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels: labels,
			DataSets: []Dataset{
				{Label: "Visitors", Data: visitors},
				{Label: "Signups", Data: signups},
				{Label: "Purchases", Data: purchases},
			},
		},
		Options: title("Platform Performance"),
	})
}

// ChannelChartURL charts the conversion rate of each marketing channel.
func ChannelChartURL(rollups []models.ChannelRollup) (string, error) {
	labels := make([]interface{}, 0, len(rollups))
	rates := make([]interface{}, 0, len(rollups))
	for _, r := range rollups {
		labels = append(labels, r.Channel)
		rates = append(rates, r.ChannelConversionRate)
	}
	return chartURL(ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels:   labels,
			DataSets: []Dataset{{Label: "Conversion Rate (%)", Data: rates}},
		},
		Options: title("Marketing Channel Performance"),
	})
}

func title(text string) *ChartOptions {
	return &ChartOptions{Title: ChartTitle{Display: true, Text: text}}
}

func chartURL(config ChartConfig) (string, error) {
	b, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart config: %w", err)
	}
	qc := quickchartgo.New()
	qc.Config = string(b)
	u, err := qc.GetUrl()
	if err != nil {
		log.WithError(err).Error("Failed to build quickchart URL.")
		return "", fmt.Errorf("failed to get chart url from quickchart: %w", err)
	}
	return u, nil
}

func tableURL(config TableConfig) (string, error) {
	b, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal table config: %w", err)
	}
	return fmt.Sprintf("%s?data=%s", tableBaseURL, url.QueryEscape(string(b))), nil
}
