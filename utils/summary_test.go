package utils

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/civicpulse/models"
)

func TestMain(m *testing.M) {
	Sugar = zap.NewNop().Sugar()
	os.Exit(m.Run())
}

func TestGenerateSummaryEmptySet(t *testing.T) {
	got, err := GenerateSummary(context.Background(), nil, "Lahore", "week")
	require.NoError(t, err)
	require.Equal(t, SummaryEmpty, got)
}

func TestGenerateSummaryRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	items := []models.ComplaintSummary{{IssueType: "Road Damage", Title: "Pothole", Upvotes: 4}}

	_, err := GenerateSummary(context.Background(), items, "", "")
	require.Error(t, err)
}

func TestBuildSummaryPrompt(t *testing.T) {
	items := []models.ComplaintSummary{
		{IssueType: "Road Damage", Title: "Pothole", Description: "Deep pothole on main road", Upvotes: 12},
		{IssueType: "Water Supply", Title: "No water", Description: "Dry taps since Monday", Upvotes: 7},
	}

	prompt := buildSummaryPrompt(items, "Lahore", "week")
	require.Contains(t, prompt, "civic complaints from Lahore over the past week")
	require.Contains(t, prompt, "Road Damage: Pothole - Deep pothole on main road (12 upvotes)")
	require.Contains(t, prompt, "Water Supply: No water - Dry taps since Monday (7 upvotes)")
	require.Contains(t, prompt, "concise and actionable for city officials")
}

func TestBuildSummaryPromptDefaults(t *testing.T) {
	items := []models.ComplaintSummary{{IssueType: "Sewerage", Title: "Overflow", Upvotes: 1}}

	prompt := buildSummaryPrompt(items, "", "")
	require.Contains(t, prompt, "civic complaints from Pakistan")
	require.NotContains(t, prompt, "over the past")
}
