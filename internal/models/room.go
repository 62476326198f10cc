package models

import "time"

// RoomCategory classifies rooms for block compatibility.
type RoomCategory string

const (
	RoomCategoryLectureHall RoomCategory = "LECTURE_HALL"
	RoomCategoryLab         RoomCategory = "LAB"
	RoomCategorySeminar     RoomCategory = "SEMINAR_ROOM"
	RoomCategoryAuditorium  RoomCategory = "AUDITORIUM"
)

// Room represents a bookable teaching space.
type Room struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Capacity  int          `db:"capacity" json:"capacity"`
	Category  RoomCategory `db:"category" json:"category"`
	Building  *string      `db:"building" json:"building,omitempty"`
	Active    bool         `db:"active" json:"active"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Search      string
	Category    *RoomCategory
	MinCapacity int
	Active      *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
