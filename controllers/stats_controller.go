package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/utils"
)

// StatsController provides aggregate figures for the dashboard.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns the total complaint count, a per-category breakdown,
// and today's request traffic. Individual query failures fall back to zero
// instead of failing the whole endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var total int64
	if err := s.db.Model(&models.Complaint{}).Count(&total).Error; err != nil {
		total = 0
	}

	type typeCount struct {
		IssueType string `gorm:"column:issue_type"`
		Count     int64
	}
	var rows []typeCount
	_ = s.db.Model(&models.Complaint{}).
		Select("issue_type, COUNT(*) AS count").
		Group("issue_type").
		Scan(&rows).Error

	counted := make(map[string]int64, len(rows))
	for _, r := range rows {
		counted[r.IssueType] = r.Count
	}
	// Report the advisory categories in a stable order; unknown types the
	// data layer let through are appended after.
	byType := make(map[string]int64, len(models.IssueTypes))
	for _, t := range models.IssueTypes {
		byType[t] = counted[t]
		delete(counted, t)
	}
	for t, n := range counted {
		byType[t] = n
	}

	var todayTraffic int64
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.DailyTraffic{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&todayTraffic).Error; err != nil {
		todayTraffic = 0
	}

	utils.Success(ctx, gin.H{
		"complaint_count": total,
		"by_issue_type":   byType,
		"today_requests":  todayTraffic,
	})
}
