package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/store"
	"github.com/civicpulse/civicpulse/utils"
)

// summaryGenerator matches utils.GenerateSummary; injectable for tests.
type summaryGenerator func(ctx context.Context, items []models.ComplaintSummary, location, timeRange string) (string, error)

// SummaryController produces the AI digest of top-upvoted complaints.
type SummaryController struct {
	store    ComplaintStore
	generate summaryGenerator
}

// NewSummaryController creates a new SummaryController instance.
func NewSummaryController(st ComplaintStore) *SummaryController {
	return &SummaryController{store: st, generate: utils.GenerateSummary}
}

// GetSummary returns an LLM-written digest of the highest-upvoted
// complaints matching the location/timeRange filters. Provider failures
// degrade to a fixed fallback string rather than failing the request.
func (sc *SummaryController) GetSummary(ctx *gin.Context) {
	location := strings.TrimSpace(ctx.Query("location"))
	timeRange := strings.ToLower(strings.TrimSpace(ctx.Query("timeRange")))
	if timeRange == string(store.TimeRangeAll) {
		timeRange = ""
	}

	cacheKey := fmt.Sprintf("cache:summary:loc=%s:range=%s", strings.ToLower(location), timeRange)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	items, err := sc.store.TopByUpvotes(store.SummaryFilter{
		Location:  location,
		TimeRange: store.TimeRange(timeRange),
	})
	if err != nil {
		utils.Sugar.Errorf("summary query failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to load complaints for summary")
		return
	}

	summary, err := sc.generate(ctx.Request.Context(), items, location, timeRange)
	if err != nil {
		utils.Sugar.Warnf("summary generation failed: %v", err)
		utils.Success(ctx, gin.H{"summary": utils.SummaryFallback})
		return
	}

	payload := gin.H{"summary": summary}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 10*time.Minute)
	utils.Success(ctx, payload)
}
