package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicpulse/civicpulse/utils"
)

// GeoController proxies the geocoding provider so the browser never talks
// to Nominatim directly (usage policy requires a stable User-Agent).
type GeoController struct{}

// NewGeoController creates a new GeoController instance.
func NewGeoController() *GeoController {
	return &GeoController{}
}

// ReverseGeocode resolves a dropped pin to a human-readable address.
func (g *GeoController) ReverseGeocode(ctx *gin.Context) {
	lat := strings.TrimSpace(ctx.Query("lat"))
	lng := strings.TrimSpace(ctx.Query("lng"))
	if lat == "" || lng == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "lat and lng are required")
		return
	}

	address, err := utils.ReverseGeocode(ctx.Request.Context(), lat, lng)
	if err != nil {
		utils.Sugar.Warnf("reverse geocode failed lat=%s lng=%s: %v", lat, lng, err)
		utils.Error(ctx, http.StatusBadGateway, 50202, "failed to reverse geocode location")
		return
	}

	utils.Success(ctx, gin.H{"address": address})
}

// SearchLocation returns candidate addresses for a free-text query.
func (g *GeoController) SearchLocation(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))
	if query == "" {
		utils.Error(ctx, http.StatusBadRequest, 40006, "missing query")
		return
	}

	matches, err := utils.SearchLocation(ctx.Request.Context(), query)
	if err != nil {
		utils.Sugar.Warnf("location search failed q=%q: %v", query, err)
		utils.Error(ctx, http.StatusBadGateway, 50203, "location search failed")
		return
	}
	if matches == nil {
		matches = []utils.LocationMatch{}
	}

	utils.Success(ctx, gin.H{"matches": matches})
}
