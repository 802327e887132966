package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/store"
	"github.com/civicpulse/civicpulse/utils"
)

// ComplaintStore is the persistence surface the handlers depend on. The
// concrete implementation is store.ComplaintStore; tests substitute a fake.
type ComplaintStore interface {
	Create(c *models.Complaint) error
	Get(id uint) (*models.Complaint, error)
	List(f store.ComplaintFilter) ([]models.Complaint, error)
	IncrementViews(id uint) error
	Vote(id uint, dir store.VoteDirection) error
	Heatmap() ([]models.HeatmapPoint, error)
	TopByUpvotes(f store.SummaryFilter) ([]models.ComplaintSummary, error)
}

// ComplaintController handles complaint submission, browsing, voting, and
// the heatmap aggregation endpoint.
type ComplaintController struct {
	store ComplaintStore
}

// NewComplaintController creates a new ComplaintController instance.
func NewComplaintController(st ComplaintStore) *ComplaintController {
	return &ComplaintController{store: st}
}

// CreateComplaint accepts a multipart submission with an optional photo.
// The photo is uploaded to object storage first; an upload failure aborts
// the whole request so no record exists without its requested image.
func (cc *ComplaintController) CreateComplaint(ctx *gin.Context) {
	title := utils.Sanitize(strings.TrimSpace(ctx.PostForm("title")))
	description := utils.Sanitize(strings.TrimSpace(ctx.PostForm("description")))
	issueType := strings.TrimSpace(ctx.PostForm("issueType"))
	location := utils.Sanitize(strings.TrimSpace(ctx.PostForm("location")))

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(ctx.PostForm("latitude")), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(ctx.PostForm("longitude")), 64)
	if latErr != nil || lngErr != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "latitude and longitude must be numeric")
		return
	}

	complaint := models.Complaint{
		Latitude:    lat,
		Longitude:   lng,
		Location:    location,
		IssueType:   issueType,
		Title:       title,
		Description: description,
	}

	file, header, err := ctx.Request.FormFile("image")
	if err == nil {
		defer file.Close()
		imageURL, upErr := utils.UploadImage(ctx.Request.Context(), file, header)
		if upErr != nil {
			utils.Sugar.Warnf("image upload failed: %v", upErr)
			utils.Error(ctx, http.StatusBadGateway, 50201, "image upload failed")
			return
		}
		complaint.ImageURL = imageURL
	}

	if err := cc.store.Create(&complaint); err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			utils.Error(ctx, http.StatusBadRequest, 40003, verr.Error())
			return
		}
		utils.Sugar.Errorf("complaint create failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to create complaint")
		return
	}

	invalidateComplaintCaches()

	utils.Success(ctx, gin.H{"complaint": complaint})
}

// ListComplaints returns complaints matching the query filters, newest
// first. The UI sends the literal string "all" to mean "no filter"; that
// sentinel is translated to an absent predicate here at the wire boundary.
func (cc *ComplaintController) ListComplaints(ctx *gin.Context) {
	issueType := strings.TrimSpace(ctx.Query("issueType"))
	if strings.EqualFold(issueType, "all") {
		issueType = ""
	}
	location := strings.TrimSpace(ctx.Query("location"))
	timeRange := parseTimeRange(ctx.Query("timeRange"))
	limit := parseIntDefault(ctx.Query("limit"), 20)
	offset := parseIntDefault(ctx.Query("offset"), 0)

	// Cache only location-free lists to avoid free-text key explosion.
	cacheKey := ""
	if location == "" {
		cacheKey = fmt.Sprintf("cache:complaints:list:type=%s:range=%s:limit=%d:offset=%d", issueType, timeRange, limit, offset)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	items, err := cc.store.List(store.ComplaintFilter{
		IssueType: issueType,
		Location:  location,
		TimeRange: timeRange,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		utils.Sugar.Errorf("complaint list failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to list complaints")
		return
	}
	if items == nil {
		items = []models.Complaint{}
	}

	payload := gin.H{"items": items, "limit": limit, "offset": offset}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// GetComplaint returns a single complaint and bumps its view counter. The
// read and the increment are deliberately not atomic as a pair; a lost
// race undercounts views, which is accepted.
func (cc *ComplaintController) GetComplaint(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	complaint, err := cc.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "complaint not found")
			return
		}
		utils.Sugar.Errorf("complaint load failed id=%d: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to load complaint")
		return
	}

	if err := cc.store.IncrementViews(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.Sugar.Warnf("view increment failed id=%d: %v", id, err)
	}

	utils.Success(ctx, gin.H{"complaint": complaint})
}

// VoteComplaint applies an anonymous up or down vote. There is no voter
// identity and no double-vote prevention; the downvote floor is enforced
// inside the store.
func (cc *ComplaintController) VoteComplaint(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req struct {
		VoteType string `json:"voteType"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	dir, valid := store.ParseVoteDirection(req.VoteType)
	if !valid {
		utils.Error(ctx, http.StatusBadRequest, 40004, "voteType must be \"up\" or \"down\"")
		return
	}

	if err := cc.store.Vote(id, dir); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "complaint not found")
			return
		}
		utils.Sugar.Errorf("vote failed id=%d: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to record vote")
		return
	}

	// Upvote ordering feeds lists and summaries.
	utils.InvalidateByPrefix("cache:complaints:list:")
	utils.InvalidateByPrefix("cache:summary:")

	utils.Success(ctx, gin.H{"success": true})
}

// Heatmap returns per-coordinate complaint counts for density rendering.
// Complaints group only on bit-identical coordinates; nearby pins stay
// separate.
func (cc *ComplaintController) Heatmap(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:heatmap"); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	points, err := cc.store.Heatmap()
	if err != nil {
		utils.Sugar.Errorf("heatmap aggregation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load heatmap data")
		return
	}
	if points == nil {
		points = []models.HeatmapPoint{}
	}

	payload := gin.H{"points": points}
	utils.CacheSetJSON("cache:heatmap", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

func invalidateComplaintCaches() {
	utils.InvalidateByPrefix("cache:complaints:list:")
	utils.InvalidateByPrefix("cache:heatmap")
	utils.InvalidateByPrefix("cache:summary:")
}

func parseID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid complaint id")
		return 0, false
	}
	return uint(id), true
}

// parseTimeRange accepts week/month/all; anything else behaves as "all".
func parseTimeRange(raw string) store.TimeRange {
	switch store.TimeRange(strings.ToLower(strings.TrimSpace(raw))) {
	case store.TimeRangeWeek:
		return store.TimeRangeWeek
	case store.TimeRangeMonth:
		return store.TimeRangeMonth
	default:
		return store.TimeRangeAll
	}
}

func parseIntDefault(raw string, def int) int {
	if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
		return v
	}
	return def
}
