package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for persisted timetables.
type TimetableStatus string

const (
	TimetableStatusDraft    TimetableStatus = "DRAFT"
	TimetableStatusActive   TimetableStatus = "ACTIVE"
	TimetableStatusArchived TimetableStatus = "ARCHIVED"
)

// TimetableVersion is one persisted snapshot of the weekly timetable.
// Snapshot holds the serialized week keyed by weekday then time label.
type TimetableVersion struct {
	ID             string          `db:"id" json:"id"`
	Version        int             `db:"version" json:"version"`
	Status         TimetableStatus `db:"status" json:"status"`
	Snapshot       types.JSONText  `db:"snapshot" json:"snapshot"`
	Penalty        float64         `db:"penalty" json:"penalty"`
	HardViolations int             `db:"hard_violations" json:"hard_violations"`
	Meta           types.JSONText  `db:"meta" json:"meta"`
	CreatedBy      *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableVersionMeta is the lightweight shape used by version listings.
type TimetableVersionMeta struct {
	ID             string          `db:"id" json:"id"`
	Version        int             `db:"version" json:"version"`
	Status         TimetableStatus `db:"status" json:"status"`
	Penalty        float64         `db:"penalty" json:"penalty"`
	HardViolations int             `db:"hard_violations" json:"hard_violations"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
