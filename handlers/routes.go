package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"funnelscope/api/middleware"
)

// Router bundles the handlers mounted by NewRouter.
type Router struct {
	Auth      *AuthHandlers
	Analytics *AnalyticsHandlers
	Reports   *ReportHandlers
	// AuthRequired guards every route except signup, login, logout and
	// health.
	AuthRequired gin.HandlerFunc
	CORSOrigin   string
}

func NewRouter(rt Router) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORSMiddleware(rt.CORSOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/signup", rt.Auth.Signup)
		api.POST("/login", rt.Auth.Login)
		api.POST("/logout", rt.Auth.Logout)

		protected := api.Group("/")
		protected.Use(rt.AuthRequired)
		{
			protected.POST("/track", rt.Analytics.TrackEvent)
			protected.GET("/profile", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"user_id":    c.GetInt(middleware.ContextUserID),
					"user_email": c.GetString(middleware.ContextUserEmail),
				})
			})

			stats := protected.Group("/stats")
			{
				stats.GET("/event-counts", rt.Analytics.GetEventCountsOverTime)
				stats.GET("/unique-users", rt.Analytics.GetUniqueUsersOverTime)
			}

			reports := protected.Group("/reports")
			{
				reports.GET("/summary", rt.Reports.GetSummary)
				reports.GET("/funnel", rt.Reports.GetFunnel)
				reports.GET("/platforms", rt.Reports.GetPlatforms)
				reports.GET("/journeys", rt.Reports.GetJourneys)
				reports.GET("/profiles", rt.Reports.GetProfiles)
				reports.GET("/cohorts", rt.Reports.GetCohorts)
				reports.GET("/channels", rt.Reports.GetChannels)
				reports.GET("/trends", rt.Reports.GetTrends)
				reports.GET("/charts", rt.Reports.GetCharts)
			}
		}
	}
	return r
}
