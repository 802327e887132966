package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/civicpulse/models"
	"github.com/civicpulse/civicpulse/store"
	"github.com/civicpulse/civicpulse/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.Sugar = zap.NewNop().Sugar()
	os.Exit(m.Run())
}

type vote struct {
	id  uint
	dir store.VoteDirection
}

// fakeStore records calls so handler behavior can be asserted without a
// database.
type fakeStore struct {
	complaints map[uint]*models.Complaint
	created    []*models.Complaint
	lastFilter store.ComplaintFilter
	listResult []models.Complaint
	viewBumps  []uint
	votes      []vote
	heatmap    []models.HeatmapPoint
	summaries  []models.ComplaintSummary
}

func newFakeStore() *fakeStore {
	return &fakeStore{complaints: map[uint]*models.Complaint{}}
}

func (f *fakeStore) Create(c *models.Complaint) error {
	for _, field := range []string{c.Title, c.Description, c.IssueType, c.Location} {
		if strings.TrimSpace(field) == "" {
			return &store.ValidationError{Field: "field", Reason: "is required"}
		}
	}
	c.ID = uint(len(f.created) + 1)
	c.Status = models.StatusOpen
	f.created = append(f.created, c)
	return nil
}

func (f *fakeStore) Get(id uint) (*models.Complaint, error) {
	c, ok := f.complaints[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) List(flt store.ComplaintFilter) ([]models.Complaint, error) {
	f.lastFilter = flt
	return f.listResult, nil
}

func (f *fakeStore) IncrementViews(id uint) error {
	if _, ok := f.complaints[id]; !ok {
		return store.ErrNotFound
	}
	f.viewBumps = append(f.viewBumps, id)
	return nil
}

func (f *fakeStore) Vote(id uint, dir store.VoteDirection) error {
	c, ok := f.complaints[id]
	if !ok {
		return store.ErrNotFound
	}
	if dir == store.VoteUp {
		c.Upvotes++
	} else if c.Upvotes > 0 {
		c.Upvotes--
	}
	f.votes = append(f.votes, vote{id: id, dir: dir})
	return nil
}

func (f *fakeStore) Heatmap() ([]models.HeatmapPoint, error) {
	return f.heatmap, nil
}

func (f *fakeStore) TopByUpvotes(flt store.SummaryFilter) ([]models.ComplaintSummary, error) {
	return f.summaries, nil
}

func newRouter(fs *fakeStore) *gin.Engine {
	cc := NewComplaintController(fs)
	r := gin.New()
	r.POST("/api/v1/complaints", cc.CreateComplaint)
	r.GET("/api/v1/complaints", cc.ListComplaints)
	r.GET("/api/v1/complaints/:id", cc.GetComplaint)
	r.POST("/api/v1/complaints/:id/vote", cc.VoteComplaint)
	r.GET("/api/v1/heatmap", cc.Heatmap)
	return r
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func validFields() map[string]string {
	return map[string]string{
		"title":       "Broken streetlight",
		"description": "Dark corner at night",
		"issueType":   "Electricity",
		"location":    "Gulberg, Lahore",
		"latitude":    "31.5",
		"longitude":   "74.3",
	}
}

func TestCreateComplaint(t *testing.T) {
	fs := newFakeStore()
	r := newRouter(fs)

	body, contentType := multipartBody(t, validFields())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	require.Len(t, fs.created, 1)
	created := fs.created[0]
	require.Equal(t, "Broken streetlight", created.Title)
	require.Equal(t, "Electricity", created.IssueType)
	require.Equal(t, 31.5, created.Latitude)
	require.Equal(t, 74.3, created.Longitude)
	require.Equal(t, models.StatusOpen, created.Status)
	require.Empty(t, created.ImageURL, "no image was attached")
}

func TestCreateComplaintRejectsBadCoordinates(t *testing.T) {
	fs := newFakeStore()
	r := newRouter(fs)

	fields := validFields()
	fields["latitude"] = "north-ish"
	body, contentType := multipartBody(t, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 400, w.Code)
	require.Empty(t, fs.created)
}

func TestCreateComplaintRejectsMissingFields(t *testing.T) {
	fs := newFakeStore()
	r := newRouter(fs)

	fields := validFields()
	fields["title"] = "   "
	body, contentType := multipartBody(t, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 400, w.Code)
	require.Empty(t, fs.created)
}

func TestListComplaintsTranslatesAllSentinel(t *testing.T) {
	fs := newFakeStore()
	r := newRouter(fs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/complaints?issueType=all&location=lahore&timeRange=week", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, "", fs.lastFilter.IssueType, "the all sentinel must not filter literally")
	require.Equal(t, "lahore", fs.lastFilter.Location)
	require.Equal(t, store.TimeRangeWeek, fs.lastFilter.TimeRange)
	require.Equal(t, 20, fs.lastFilter.Limit)
	require.Equal(t, 0, fs.lastFilter.Offset)
}

func TestListComplaintsPassesFilters(t *testing.T) {
	fs := newFakeStore()
	r := newRouter(fs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/complaints?issueType=Road+Damage&location=model+town&timeRange=month&limit=5&offset=10", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, "Road Damage", fs.lastFilter.IssueType)
	require.Equal(t, store.TimeRangeMonth, fs.lastFilter.TimeRange)
	require.Equal(t, 5, fs.lastFilter.Limit)
	require.Equal(t, 10, fs.lastFilter.Offset)

	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	require.Contains(t, data, "items")
}

func TestGetComplaintIncrementsViews(t *testing.T) {
	fs := newFakeStore()
	fs.complaints[7] = &models.Complaint{ID: 7, Title: "Pothole", IssueType: "Road Damage"}
	r := newRouter(fs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/7", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, []uint{7}, fs.viewBumps)
}

func TestGetComplaintNotFound(t *testing.T) {
	fs := newFakeStore()
	r := newRouter(fs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/99", nil))

	require.Equal(t, 404, w.Code)
	require.Empty(t, fs.viewBumps, "a missing complaint must not be counted as viewed")
}

func TestVoteComplaint(t *testing.T) {
	fs := newFakeStore()
	fs.complaints[3] = &models.Complaint{ID: 3, Upvotes: 5}
	r := newRouter(fs)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints/3/vote", strings.NewReader(`{"voteType":"up"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	require.Equal(t, 6, fs.complaints[3].Upvotes)

	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	require.Equal(t, true, data["success"])
}

func TestVoteComplaintDownAtZero(t *testing.T) {
	fs := newFakeStore()
	fs.complaints[4] = &models.Complaint{ID: 4, Upvotes: 0}
	r := newRouter(fs)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints/4/vote", strings.NewReader(`{"voteType":"down"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code, "a floored downvote is not an error")
	require.Equal(t, 0, fs.complaints[4].Upvotes)
}

func TestVoteComplaintRejectsBadVoteType(t *testing.T) {
	fs := newFakeStore()
	fs.complaints[5] = &models.Complaint{ID: 5}
	r := newRouter(fs)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints/5/vote", strings.NewReader(`{"voteType":"sideways"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 400, w.Code)
	require.Empty(t, fs.votes)
}

func TestVoteComplaintNotFound(t *testing.T) {
	fs := newFakeStore()
	r := newRouter(fs)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints/42/vote", strings.NewReader(`{"voteType":"up"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, 404, w.Code)
}

func TestHeatmap(t *testing.T) {
	fs := newFakeStore()
	fs.heatmap = []models.HeatmapPoint{
		{Latitude: 31.5, Longitude: 74.3, Count: 2},
		{Latitude: 24.86, Longitude: 67.0, Count: 1},
	}
	r := newRouter(fs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/heatmap", nil))

	require.Equal(t, 200, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	points := data["points"].([]any)
	require.Len(t, points, 2)
	first := points[0].(map[string]any)
	require.Equal(t, 31.5, first["latitude"])
	require.Equal(t, 74.3, first["longitude"])
	require.Equal(t, float64(2), first["count"])
}
