package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/civicpulse/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.Sugar = zap.NewNop().Sugar()
	os.Exit(m.Run())
}

func TestRateLimitMiddleware(t *testing.T) {
	// Two per minute gives a burst of one, so the second immediate request
	// from the same address must be rejected.
	t.Setenv("RATE_LIMIT_PER_MINUTE", "2")

	r := gin.New()
	r.POST("/vote", RateLimitMiddleware(), func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"success": true})
	})

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/vote", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, 200, do("10.1.1.1:4000"))
	require.Equal(t, 429, do("10.1.1.1:4000"))

	// A different client has its own bucket.
	require.Equal(t, 200, do("10.2.2.2:4000"))
}
