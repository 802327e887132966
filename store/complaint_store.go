package store

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/civicpulse/civicpulse/models"
)

// VoteDirection selects between an upvote and a floored downvote.
type VoteDirection int

const (
	VoteUp VoteDirection = iota
	VoteDown
)

// ParseVoteDirection maps the wire values "up" and "down".
func ParseVoteDirection(v string) (VoteDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "up":
		return VoteUp, true
	case "down":
		return VoteDown, true
	default:
		return 0, false
	}
}

// ComplaintStore owns all reads and writes of complaint records. Every
// operation is a single statement at the database, so concurrent handlers
// need no coordination beyond what MySQL provides.
type ComplaintStore struct {
	db *gorm.DB
}

// New creates a ComplaintStore over an initialized database handle.
func New(db *gorm.DB) *ComplaintStore {
	return &ComplaintStore{db: db}
}

// Create validates required fields and inserts the record. The store fills
// id, upvotes, views, status, and createdAt; the caller supplies the rest.
func (s *ComplaintStore) Create(c *models.Complaint) error {
	if err := validateNew(c); err != nil {
		return err
	}
	c.ID = 0
	c.Upvotes = 0
	c.Views = 0
	c.Status = models.StatusOpen
	c.CreatedAt = time.Now()
	return s.db.Create(c).Error
}

func validateNew(c *models.Complaint) error {
	for _, f := range []struct {
		name, value string
	}{
		{"title", c.Title},
		{"description", c.Description},
		{"issueType", c.IssueType},
		{"location", c.Location},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Reason: "is required"}
		}
	}
	return nil
}

// Get fetches a single complaint by id.
func (s *ComplaintStore) Get(id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns complaints matching the filter, newest first. All present
// predicates are conjunctive; an empty result is not an error.
func (s *ComplaintStore) List(f ComplaintFilter) ([]models.Complaint, error) {
	f = f.normalized()

	q := s.db.Model(&models.Complaint{})
	q = applyIssueType(q, f.IssueType)
	q = applyLocation(q, f.Location)
	q = applyTimeRange(q, f.TimeRange)

	var out []models.Complaint
	err := q.Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&out).Error
	return out, err
}

// IncrementViews adds 1 to the view counter in a single statement. The
// increment always changes the row, so zero rows affected means the id does
// not exist.
func (s *ComplaintStore) IncrementViews(id uint) error {
	res := s.db.Model(&models.Complaint{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Vote applies an upvote or a downvote floored at zero. The floor is
// evaluated inside the UPDATE so concurrent downvotes cannot race below
// zero. A downvote at zero leaves the row unchanged, which MySQL reports as
// zero rows affected, so existence is rechecked before treating that as a
// missing id.
func (s *ComplaintStore) Vote(id uint, dir VoteDirection) error {
	expr := gorm.Expr("upvotes + 1")
	if dir == VoteDown {
		expr = gorm.Expr("GREATEST(upvotes - 1, 0)")
	}
	res := s.db.Model(&models.Complaint{}).
		Where("id = ?", id).
		UpdateColumn("upvotes", expr)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.Model(&models.Complaint{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// Heatmap groups all complaints by exact coordinate pair and returns the
// count per group. No filtering, no pagination.
func (s *ComplaintStore) Heatmap() ([]models.HeatmapPoint, error) {
	var out []models.HeatmapPoint
	err := s.db.Model(&models.Complaint{}).
		Select("latitude, longitude, COUNT(*) AS count").
		Group("latitude, longitude").
		Scan(&out).Error
	return out, err
}

// TopByUpvotes returns the highest-upvoted complaint summaries matching the
// filter, for the summary generator.
func (s *ComplaintStore) TopByUpvotes(f SummaryFilter) ([]models.ComplaintSummary, error) {
	f = f.normalized()

	q := s.db.Model(&models.Complaint{}).
		Select("issue_type, title, description, upvotes")
	q = applyLocation(q, f.Location)
	q = applyTimeRange(q, f.TimeRange)

	var out []models.ComplaintSummary
	err := q.Order("upvotes DESC").
		Limit(f.Limit).
		Scan(&out).Error
	return out, err
}

func applyIssueType(q *gorm.DB, issueType string) *gorm.DB {
	if issueType == "" {
		return q
	}
	return q.Where("issue_type = ?", issueType)
}

// applyLocation adds a case-insensitive substring match. LOWER on both
// sides keeps the behavior independent of column collation.
func applyLocation(q *gorm.DB, location string) *gorm.DB {
	if location == "" {
		return q
	}
	return q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
}

func applyTimeRange(q *gorm.DB, r TimeRange) *gorm.DB {
	if cut, ok := r.cutoff(time.Now()); ok {
		return q.Where("created_at >= ?", cut)
	}
	return q
}
