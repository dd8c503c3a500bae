package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (app *application) routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// simple logger middleware that uses zap
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		app.Logger.Sugar().Infow("http", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration", time.Since(start))
	})

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	v1 := r.Group("/api/v1")

	v1.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := v1.Group("/")
	protected.Use(app.AuthMiddleware())
	{
		protected.GET("/mailbox/status", app.Handler.MailboxStatus)

		// interview workflow routes
		protected.POST("/interviews/request-availability", app.Handler.RequestAvailability)
		protected.GET("/interviews", app.Handler.ListInterviews)
		protected.GET("/interviews/:id", app.Handler.GetInterview)
		protected.POST("/interviews/:id/schedule", app.Handler.ScheduleInterview)
		protected.PUT("/interviews/:id/reschedule", app.Handler.RescheduleInterview)
		protected.PUT("/interviews/:id/status", app.Handler.UpdateStatus)
		protected.POST("/interviews/:id/cancel", app.Handler.CancelInterview)
		protected.GET("/interviews/:id/calendar", app.Handler.ExportCalendar)
		protected.DELETE("/interviews/:id", app.Handler.DeleteInterview)
	}

	return r
}
