package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/utils"
)

func newSummaryRouter(fs *fakeStore, gen summaryGenerator) *gin.Engine {
	sc := NewSummaryController(fs)
	if gen != nil {
		sc.generate = gen
	}
	r := gin.New()
	r.GET("/api/v1/ai-summary", sc.GetSummary)
	return r
}

func TestGetSummary(t *testing.T) {
	fs := newFakeStore()
	fs.summaries = []models.ComplaintSummary{
		{IssueType: "Road Damage", Title: "Pothole", Description: "Deep pothole", Upvotes: 12},
	}

	var gotLocation, gotRange string
	gen := func(ctx context.Context, items []models.ComplaintSummary, location, timeRange string) (string, error) {
		gotLocation, gotRange = location, timeRange
		require.Len(t, items, 1)
		return "Road damage dominates.", nil
	}
	r := newSummaryRouter(fs, gen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ai-summary?location=Lahore&timeRange=week", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, "Lahore", gotLocation)
	require.Equal(t, "week", gotRange)

	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	require.Equal(t, "Road damage dominates.", data["summary"])
}

func TestGetSummaryTranslatesAllSentinel(t *testing.T) {
	fs := newFakeStore()
	fs.summaries = []models.ComplaintSummary{{IssueType: "Water Supply", Title: "Leak", Upvotes: 3}}

	var gotRange string
	gen := func(ctx context.Context, items []models.ComplaintSummary, location, timeRange string) (string, error) {
		gotRange = timeRange
		return "ok", nil
	}
	r := newSummaryRouter(fs, gen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ai-summary?timeRange=all", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, "", gotRange)
}

func TestGetSummaryFallsBackOnProviderError(t *testing.T) {
	fs := newFakeStore()
	fs.summaries = []models.ComplaintSummary{{IssueType: "Sewerage", Title: "Overflow", Upvotes: 8}}

	gen := func(ctx context.Context, items []models.ComplaintSummary, location, timeRange string) (string, error) {
		return "", errors.New("provider down")
	}
	r := newSummaryRouter(fs, gen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ai-summary", nil))

	require.Equal(t, 200, w.Code, "provider failure must not fail the request")
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	require.Equal(t, utils.SummaryFallback, data["summary"])
}

func TestGetSummaryEmptyResultSkipsProvider(t *testing.T) {
	fs := newFakeStore()

	// Default generator: no complaints means no API call at all.
	r := newSummaryRouter(fs, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ai-summary?location=nowhere", nil))

	require.Equal(t, 200, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	require.Equal(t, utils.SummaryEmpty, data["summary"])
}
