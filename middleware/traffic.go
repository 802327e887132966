package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/civicpulse/civicpulse/models"
)

// TrafficRecorder counts successful GET requests per day and path, feeding
// the stats endpoint. The count is bumped with an atomic upsert so
// concurrent requests never hit duplicate-key errors.
func TrafficRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != "GET" {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		path := c.Request.URL.Path
		// Probes and the stats endpoint itself would skew the figures.
		if path == "/health" || path == "/api/v1/stats" {
			return
		}

		// Local midnight aligns with the DATE column.
		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.DailyTraffic{Date: localMidnight, Path: path, Count: 1}).Error
	}
}
