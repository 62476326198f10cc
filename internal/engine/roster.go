package engine

import (
	"fmt"
	"math"
)

// CourseCategory is the pedagogical type of a course.
type CourseCategory string

const (
	CategoryLecture  CourseCategory = "LECTURE"
	CategoryLab      CourseCategory = "LAB"
	CategorySeminar  CourseCategory = "SEMINAR"
	CategoryWorkshop CourseCategory = "WORKSHOP"
)

// RoomCategory classifies rooms for block compatibility.
type RoomCategory string

const (
	RoomLectureHall RoomCategory = "LECTURE_HALL"
	RoomLab         RoomCategory = "LAB"
	RoomSeminar     RoomCategory = "SEMINAR_ROOM"
	RoomAuditorium  RoomCategory = "AUDITORIUM"
)

// Course is an immutable description of one offered course.
type Course struct {
	ID             string
	Code           string
	Title          string
	Credits        int
	Category       CourseCategory
	TheoryHours    int
	PracticalHours int
	ExpectedSize   int
	RequiredTag    string
	Group          string
}

// Validate enforces the domain invariants before a course may enter the engine.
func (c *Course) Validate() error {
	if c.ID == "" || c.Code == "" {
		return fmt.Errorf("course requires id and code")
	}
	if c.TheoryHours+c.PracticalHours <= 0 {
		return fmt.Errorf("course %s: theory+practical hours must be positive", c.Code)
	}
	if c.TheoryHours < 0 || c.PracticalHours < 0 {
		return fmt.Errorf("course %s: negative weekly hours", c.Code)
	}
	return nil
}

// TheoryBlocks is the number of grid slots needed to cover the weekly theory hours.
func (c *Course) TheoryBlocks(slotMinutes int) int {
	return hourBlocks(c.TheoryHours, slotMinutes)
}

// PracticalBlocks is the number of grid slots needed to cover the weekly practical hours.
func (c *Course) PracticalBlocks(slotMinutes int) int {
	return hourBlocks(c.PracticalHours, slotMinutes)
}

func hourBlocks(hours, slotMinutes int) int {
	if hours <= 0 || slotMinutes <= 0 {
		return 0
	}
	return int(math.Ceil(float64(hours*60) / float64(slotMinutes)))
}

// Faculty describes one instructor and their teaching envelope.
type Faculty struct {
	ID             string
	Name           string
	Expertise      []string
	MaxWeeklyHours int
	// Days restricts availability to the listed weekday indices.
	// An empty map means every day is available.
	Days map[int]bool
	// Blocked marks individual unavailable slots inside available days.
	Blocked map[Slot]bool
}

// Validate enforces faculty invariants.
func (f *Faculty) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("faculty requires id")
	}
	if f.MaxWeeklyHours < 0 {
		return fmt.Errorf("faculty %s: maxWeeklyHours must be >= 0", f.ID)
	}
	return nil
}

// Available reports whether the faculty member can teach in the slot.
func (f *Faculty) Available(s Slot) bool {
	if len(f.Days) > 0 && !f.Days[s.Day] {
		return false
	}
	if f.Blocked != nil && f.Blocked[s] {
		return false
	}
	return true
}

// HasTag reports whether the expertise set contains the tag.
// An empty tag always matches.
func (f *Faculty) HasTag(tag string) bool {
	if tag == "" {
		return true
	}
	for _, t := range f.Expertise {
		if t == tag {
			return true
		}
	}
	return false
}

// Room is one bookable teaching space.
type Room struct {
	ID       string
	Name     string
	Capacity int
	Category RoomCategory
}

// Validate enforces room invariants.
func (r *Room) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("room requires id")
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("room %s: capacity must be positive", r.ID)
	}
	return nil
}

// Commitment is an externally booked slot: a faculty member or room already
// occupied by another published timetable. Clash constraints treat commitments
// exactly like placed assignments.
type Commitment struct {
	Slot      Slot
	FacultyID string
	RoomID    string
	Label     string
}

// ExclusionWindow is a soft no-go zone projected from a special schedule:
// placements for the named groups on the listed days are penalized, not
// forbidden.
type ExclusionWindow struct {
	Days   []int
	Groups []string
	Label  string
}

// Covers reports whether the window penalizes the given group on the given day.
func (w ExclusionWindow) Covers(group string, day int) bool {
	if group == "" {
		return false
	}
	dayHit := false
	for _, d := range w.Days {
		if d == day {
			dayHit = true
			break
		}
	}
	if !dayHit {
		return false
	}
	for _, g := range w.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Roster bundles the reference data a schedule is evaluated against.
type Roster struct {
	Courses    map[string]*Course
	Faculty    map[string]*Faculty
	Rooms      map[string]*Room
	Exclusions []ExclusionWindow

	commitments []Commitment
	facultyBusy map[Slot]map[string]string
	roomBusy    map[Slot]map[string]string
}

// NewRoster indexes reference data for constraint evaluation.
func NewRoster(courses []*Course, faculty []*Faculty, rooms []*Room) *Roster {
	r := &Roster{
		Courses:     make(map[string]*Course, len(courses)),
		Faculty:     make(map[string]*Faculty, len(faculty)),
		Rooms:       make(map[string]*Room, len(rooms)),
		facultyBusy: make(map[Slot]map[string]string),
		roomBusy:    make(map[Slot]map[string]string),
	}
	for _, c := range courses {
		r.Courses[c.ID] = c
	}
	for _, f := range faculty {
		r.Faculty[f.ID] = f
	}
	for _, room := range rooms {
		r.Rooms[room.ID] = room
	}
	return r
}

// Validate checks every record's invariants. Malformed reference data must be
// rejected before it ever reaches the solver or detector.
func (r *Roster) Validate() error {
	for _, c := range r.Courses {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, f := range r.Faculty {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	for _, room := range r.Rooms {
		if err := room.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AddCommitments registers external bookings to check clashes against.
func (r *Roster) AddCommitments(commitments ...Commitment) {
	for _, c := range commitments {
		r.commitments = append(r.commitments, c)
		if c.FacultyID != "" {
			if r.facultyBusy[c.Slot] == nil {
				r.facultyBusy[c.Slot] = make(map[string]string)
			}
			r.facultyBusy[c.Slot][c.FacultyID] = c.Label
		}
		if c.RoomID != "" {
			if r.roomBusy[c.Slot] == nil {
				r.roomBusy[c.Slot] = make(map[string]string)
			}
			r.roomBusy[c.Slot][c.RoomID] = c.Label
		}
	}
}

// FacultyCommitted reports an external booking for the faculty in the slot.
func (r *Roster) FacultyCommitted(slot Slot, facultyID string) (string, bool) {
	label, ok := r.facultyBusy[slot][facultyID]
	return label, ok
}

// RoomCommitted reports an external booking for the room in the slot.
func (r *Roster) RoomCommitted(slot Slot, roomID string) (string, bool) {
	label, ok := r.roomBusy[slot][roomID]
	return label, ok
}
