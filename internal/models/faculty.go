package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Faculty represents an instructor and their teaching envelope.
type Faculty struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Email          *string        `db:"email" json:"email,omitempty"`
	Expertise      types.JSONText `db:"expertise" json:"expertise"`
	MaxWeeklyHours int            `db:"max_weekly_hours" json:"max_weekly_hours"`
	Availability   types.JSONText `db:"availability" json:"availability"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// SlotRef addresses one grid cell in stored availability blocks.
type SlotRef struct {
	Day  int `json:"day"`
	Slot int `json:"slot"`
}

// FacultyAvailability is the decoded shape of the availability column. An
// empty Days list means every teaching day.
type FacultyAvailability struct {
	Days    []int     `json:"days"`
	Blocked []SlotRef `json:"blocked,omitempty"`
}

// ExpertiseTags decodes the expertise column into a tag list.
func (f *Faculty) ExpertiseTags() []string {
	if len(f.Expertise) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(f.Expertise, &tags); err != nil {
		return nil
	}
	return tags
}

// AvailabilityWindow decodes the availability column.
func (f *Faculty) AvailabilityWindow() FacultyAvailability {
	var window FacultyAvailability
	if len(f.Availability) == 0 {
		return window
	}
	_ = json.Unmarshal(f.Availability, &window)
	return window
}

// FacultyFilter captures filtering options for listing faculty.
type FacultyFilter struct {
	Search    string
	Tag       string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
