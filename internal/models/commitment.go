package models

import "time"

// Commitment records an externally booked (faculty or room, slot) pair from
// another published timetable. The conflict detector evaluates commitments
// alongside the working schedule so cross-timetable double-bookings surface
// as clashes.
type Commitment struct {
	ID        string    `db:"id" json:"id"`
	Day       int       `db:"day_of_week" json:"day_of_week"`
	SlotIndex int       `db:"slot_index" json:"slot_index"`
	FacultyID *string   `db:"faculty_id" json:"faculty_id,omitempty"`
	RoomID    *string   `db:"room_id" json:"room_id,omitempty"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
