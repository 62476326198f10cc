package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SpecialSchedule marks a date range during which the named course groups
// should not be scheduled. The generator treats these as soft exclusion
// windows, never as hard blocks.
type SpecialSchedule struct {
	ID        string         `db:"id" json:"id"`
	Title     string         `db:"title" json:"title"`
	StartDate time.Time      `db:"start_date" json:"start_date"`
	EndDate   time.Time      `db:"end_date" json:"end_date"`
	Groups    types.JSONText `db:"groups" json:"groups"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// GroupLabels decodes the groups column.
func (s *SpecialSchedule) GroupLabels() []string {
	if len(s.Groups) == 0 {
		return nil
	}
	var groups []string
	if err := json.Unmarshal(s.Groups, &groups); err != nil {
		return nil
	}
	return groups
}

// Weekdays returns the distinct 1-based weekday indices the date range
// covers, Monday through Sunday, capped at one week.
func (s *SpecialSchedule) Weekdays() []int {
	if s.EndDate.Before(s.StartDate) {
		return nil
	}
	seen := make(map[int]bool)
	var days []int
	for d := s.StartDate; !d.After(s.EndDate) && len(seen) < 7; d = d.AddDate(0, 0, 1) {
		weekday := int(d.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		if !seen[weekday] {
			seen[weekday] = true
			days = append(days, weekday)
		}
	}
	return days
}

// SpecialScheduleFilter captures filtering options for listing special schedules.
type SpecialScheduleFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
