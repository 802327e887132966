package models

import "time"

// Complaint is a single citizen-submitted civic issue report. Rows are only
// ever mutated by the view and vote counters; content fields are immutable
// after creation and records are never deleted.
type Complaint struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Latitude    float64   `gorm:"not null" json:"latitude"`
	Longitude   float64   `gorm:"not null" json:"longitude"`
	Location    string    `gorm:"size:512;not null" json:"location"`
	IssueType   string    `gorm:"column:issue_type;size:64;index;not null" json:"issueType"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ImageURL    string    `gorm:"column:image_url;size:1024" json:"imageUrl,omitempty"`
	Upvotes     int       `gorm:"not null;default:0" json:"upvotes"`
	Views       int       `gorm:"not null;default:0" json:"views"`
	Status      string    `gorm:"size:32;not null;default:'open'" json:"status"`
	CreatedAt   time.Time `gorm:"index;not null" json:"createdAt"`
}

// HeatmapPoint is one coordinate group with its complaint count. Grouping is
// by exact latitude/longitude equality; nearby points are not merged.
type HeatmapPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

// ComplaintSummary is the projection fed to the AI summary generator.
type ComplaintSummary struct {
	IssueType   string `gorm:"column:issue_type" json:"issueType"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Upvotes     int    `json:"upvotes"`
}

// StatusOpen is the only status currently assigned; the column is reserved
// for a future resolution workflow.
const StatusOpen = "open"

// IssueTypes is the advisory category list. It is not enforced at the data
// layer; the UI constrains submissions and the stats endpoint reports
// against it.
var IssueTypes = []string{
	"Road Damage",
	"Garbage Collection",
	"Water Supply",
	"Sewerage",
	"Traffic Issues",
	"Electricity",
	"Crime",
}
