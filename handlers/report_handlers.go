package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"funnelscope/api/charts"
	"funnelscope/api/funnel"
	"funnelscope/api/models"
	"funnelscope/api/utils"
)

type EventSource interface {
	LoadEvents(ctx context.Context, start, end time.Time) ([]models.Event, error)
}

type DemographicsSource interface {
	LoadDemographics(ctx context.Context) ([]models.Demographics, error)
}

type CampaignSource interface {
	LoadCampaigns(ctx context.Context) ([]models.Campaign, error)
}

// ReportHandlers serves report tables computed over a time window. Reports
// are cached per window; Demographics and Campaigns may be nil.
type ReportHandlers struct {
	Events        EventSource
	Demographics  DemographicsSource
	Campaigns     CampaignSource
	QueryTimeout  time.Duration
	DefaultWindow time.Duration

	cache *lru.Cache
	now   func() time.Time
}

func NewReportHandlers(events EventSource, demographics DemographicsSource, campaigns CampaignSource,
	cacheSize int, queryTimeout, defaultWindow time.Duration) (*ReportHandlers, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	return &ReportHandlers{
		Events:        events,
		Demographics:  demographics,
		Campaigns:     campaigns,
		QueryTimeout:  queryTimeout,
		DefaultWindow: defaultWindow,
		cache:         cache,
		now:           time.Now,
	}, nil
}

// Purge drops every cached report.
func (h *ReportHandlers) Purge() {
	h.cache.Purge()
}

type window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w window) key() string {
	return w.Start.Format(time.RFC3339) + "|" + w.End.Format(time.RFC3339)
}

// report resolves the request window and returns its cached or freshly
// built report. It writes the error response itself when ok is false.
func (h *ReportHandlers) report(c *gin.Context) (*funnel.Report, window, bool) {
	// Default windows end on a minute boundary so repeated requests share a
	// cache entry.
	now := h.now().UTC().Truncate(time.Minute)
	start, end, err := utils.ParseWindow(c.Query("start"), c.Query("end"), h.DefaultWindow, now)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, window{}, false
	}
	w := window{Start: start, End: end}

	if cached, ok := h.cache.Get(w.key()); ok {
		return cached.(*funnel.Report), w, true
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.QueryTimeout)
	defer cancel()

	r, err := h.build(ctx, w)
	if err != nil {
		log.WithError(err).WithField("window", w.key()).Error("Failed to build report.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return nil, w, false
	}
	h.cache.Add(w.key(), r)
	return r, w, true
}

func (h *ReportHandlers) build(ctx context.Context, w window) (*funnel.Report, error) {
	var (
		in  funnel.Input
		err error
	)
	if in.Events, err = h.Events.LoadEvents(ctx, w.Start, w.End); err != nil {
		return nil, err
	}
	if h.Demographics != nil {
		if in.Demographics, err = h.Demographics.LoadDemographics(ctx); err != nil {
			return nil, err
		}
	}
	if h.Campaigns != nil {
		if in.Campaigns, err = h.Campaigns.LoadCampaigns(ctx); err != nil {
			return nil, err
		}
	}

	r := funnel.BuildReport(in)
	log.WithFields(log.Fields{
		"window":               w.key(),
		"rows":                 r.Stats.Load.Rows,
		"dropped":              r.Stats.DroppedRows,
		"duplicates":           r.Stats.DuplicateRows,
		"users":                r.Stats.Users,
		"missing_demographics": r.Stats.MissingDemographics,
	}).Info("Report built.")
	return r, nil
}

func (h *ReportHandlers) GetSummary(c *gin.Context) {
	r, w, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": w, "stats": r.Stats})
}

// GetFunnel returns the global funnel, or the per-platform funnel with
// ?by=platform.
func (h *ReportHandlers) GetFunnel(c *gin.Context) {
	by := c.Query("by")
	if by != "" && by != "platform" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "by must be empty or 'platform'"})
		return
	}
	r, _, ok := h.report(c)
	if !ok {
		return
	}
	if by == "platform" {
		c.JSON(http.StatusOK, nonNil(r.PlatformFunnel))
		return
	}
	c.JSON(http.StatusOK, r.Funnel)
}

func (h *ReportHandlers) GetPlatforms(c *gin.Context) {
	if r, _, ok := h.report(c); ok {
		c.JSON(http.StatusOK, nonNil(r.PlatformSummary))
	}
}

func (h *ReportHandlers) GetJourneys(c *gin.Context) {
	if r, _, ok := h.report(c); ok {
		c.JSON(http.StatusOK, nonNil(r.Journeys))
	}
}

func (h *ReportHandlers) GetProfiles(c *gin.Context) {
	if r, _, ok := h.report(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"profiles":             nonNil(r.Profiles),
			"missing_demographics": r.Stats.MissingDemographics,
		})
	}
}

// GetCohorts returns observed cohort cells, or the display matrix with
// ?format=heatmap (periods limited by ?periods, default 13).
func (h *ReportHandlers) GetCohorts(c *gin.Context) {
	format := c.Query("format")
	if format != "" && format != "heatmap" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be empty or 'heatmap'"})
		return
	}
	periods := charts.DefaultDisplayPeriods
	if p := c.Query("periods"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "periods must be a positive integer"})
			return
		}
		periods = n
	}

	r, _, ok := h.report(c)
	if !ok {
		return
	}
	if format == "heatmap" {
		c.JSON(http.StatusOK, charts.CohortHeatmap(r.Cohorts, periods))
		return
	}
	c.JSON(http.StatusOK, nonNil(r.Cohorts))
}

func (h *ReportHandlers) GetChannels(c *gin.Context) {
	if r, _, ok := h.report(c); ok {
		c.JSON(http.StatusOK, nonNil(r.Channels))
	}
}

func (h *ReportHandlers) GetTrends(c *gin.Context) {
	if r, _, ok := h.report(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"monthly":     nonNil(r.MonthlyTrends),
			"day_of_week": nonNil(r.DayOfWeekTrends),
			"hourly":      nonNil(r.HourlyActivity),
		})
	}
}

func (h *ReportHandlers) GetCharts(c *gin.Context) {
	r, _, ok := h.report(c)
	if !ok {
		return
	}
	urls, err := charts.Render(r)
	if err != nil {
		log.WithError(err).Error("Failed to render charts.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render charts"})
		return
	}
	c.JSON(http.StatusOK, urls)
}
