// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"funnelscope/api/models"
	"funnelscope/api/utils"
)

// EventStore is the event warehouse used by tracking and stats endpoints.
type EventStore interface {
	InsertEvents(ctx context.Context, events []models.TrackedEvent) error
	GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventType string) ([]models.TimeBucketCount, error)
	GetUniqueUsersOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.TimeBucketCount, error)
}

type AnalyticsHandlers struct {
	Store         EventStore
	QueryTimeout  time.Duration
	DefaultWindow time.Duration
	// OnInsert runs after a successful batch insert.
	OnInsert func()
}

func NewAnalyticsHandlers(s EventStore, queryTimeout, defaultWindow time.Duration) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Store:         s,
		QueryTimeout:  queryTimeout,
		DefaultWindow: defaultWindow,
	}
}

// TrackEvent accepts a JSON array of events and stores them in one batch.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var incoming []models.TrackedEvent
	if err := c.ShouldBindJSON(&incoming); err != nil {
		log.WithError(err).Warn("Failed to bind tracked events.")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}

	for i := range incoming {
		if incoming[i].UserID == "" || incoming[i].EventType == "" || incoming[i].Timestamp.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId, eventType and timestamp are required", "index": i})
			return
		}
		incoming[i].EventID = uuid.New().String()
		incoming[i].Timestamp = incoming[i].Timestamp.UTC()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.QueryTimeout)
	defer cancel()

	if err := h.Store.InsertEvents(ctx, incoming); err != nil {
		log.WithError(err).WithField("events", len(incoming)).Error("Failed to insert tracked events.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record analytics events"})
		return
	}
	if h.OnInsert != nil {
		h.OnInsert()
	}

	c.JSON(http.StatusOK, gin.H{"accepted": len(incoming)})
}

func (h *AnalyticsHandlers) GetEventCountsOverTime(c *gin.Context) {
	interval, start, end, ok := h.statsParams(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.QueryTimeout)
	defer cancel()

	results, err := h.Store.GetEventCountsOverTime(ctx, interval, start, end, c.Query("eventType"))
	if err != nil {
		log.WithError(err).Error("Failed to get event counts over time.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event statistics"})
		return
	}
	c.JSON(http.StatusOK, nonNil(results))
}

func (h *AnalyticsHandlers) GetUniqueUsersOverTime(c *gin.Context) {
	interval, start, end, ok := h.statsParams(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.QueryTimeout)
	defer cancel()

	results, err := h.Store.GetUniqueUsersOverTime(ctx, interval, start, end)
	if err != nil {
		log.WithError(err).Error("Failed to get unique users over time.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve unique user statistics"})
		return
	}
	c.JSON(http.StatusOK, nonNil(results))
}

func (h *AnalyticsHandlers) statsParams(c *gin.Context) (string, time.Time, time.Time, bool) {
	interval := utils.NormalizeInterval(c.Query("interval"))
	if !utils.IsValidInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (minute, hour, day, week, month, quarter or year)"})
		return "", time.Time{}, time.Time{}, false
	}

	start, end, err := utils.ParseWindow(c.Query("start"), c.Query("end"), h.DefaultWindow, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", time.Time{}, time.Time{}, false
	}
	return interval, start, end, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
