package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/civicpulse/civicpulse/config"
	"github.com/civicpulse/civicpulse/models"
)

// OpenRouter chat-completions client for the complaint digest. One
// best-effort request per call; the caller degrades to SummaryFallback on
// any error.

const (
	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

	// SummaryEmpty is returned without calling the API when no complaints
	// match the requested filters.
	SummaryEmpty = "No complaints found for the selected criteria."
	// SummaryFallback is the degraded response when the provider fails.
	SummaryFallback = "Summary generation is temporarily unavailable."
)

var summaryClient = &http.Client{Timeout: 20 * time.Second}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateSummary asks the LLM for a digest of the top-upvoted complaints.
// An empty complaint set short-circuits to SummaryEmpty without an API
// call.
func GenerateSummary(ctx context.Context, items []models.ComplaintSummary, location, timeRange string) (string, error) {
	if len(items) == 0 {
		return SummaryEmpty, nil
	}

	cfg := config.Get()
	if cfg.OpenRouterAPIKey == "" {
		return "", errors.New("openrouter api key not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model:     cfg.OpenRouterModel,
		Messages:  []chatMessage{{Role: "user", Content: buildSummaryPrompt(items, location, timeRange)}},
		MaxTokens: cfg.SummaryMaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.OpenRouterAPIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", cfg.OpenRouterReferer)
	req.Header.Set("X-Title", "CivicPulse")

	resp, err := summaryClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter status %d", resp.StatusCode)
	}

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Choices) == 0 || strings.TrimSpace(body.Choices[0].Message.Content) == "" {
		return "", errors.New("openrouter returned no content")
	}
	return body.Choices[0].Message.Content, nil
}

func buildSummaryPrompt(items []models.ComplaintSummary, location, timeRange string) string {
	var lines []string
	for _, c := range items {
		lines = append(lines, fmt.Sprintf("%s: %s - %s (%d upvotes)", c.IssueType, c.Title, c.Description, c.Upvotes))
	}
	if location == "" {
		location = "Pakistan"
	}
	window := ""
	if timeRange != "" {
		window = fmt.Sprintf("over the past %s ", timeRange)
	}

	return fmt.Sprintf(`Analyze these civic complaints from %s %s:

%s

Provide a brief summary highlighting:
1. Most common issue types
2. Key areas of concern
3. Notable trends or patterns
4. Any urgent issues that need attention

Keep the summary concise and actionable for city officials.`, location, window, strings.Join(lines, "\n"))
}
