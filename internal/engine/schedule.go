package engine

import (
	"errors"
	"sort"
)

// Structural edit errors. These are caller contract violations, not
// conflicts: the store rejects them synchronously with no mutation.
var (
	ErrUnknownAssignment  = errors.New("assignment not found")
	ErrSlotOutOfGrid      = errors.New("target slot outside grid")
	ErrSlotOccupied       = errors.New("slot already holds an assignment")
	ErrDuplicateID        = errors.New("assignment id already placed")
	ErrNoSchedule         = errors.New("no schedule loaded")
	ErrGenerationInFlight = errors.New("generation already in flight")
)

// BlockKind distinguishes theory from practical hour blocks.
type BlockKind string

const (
	BlockTheory    BlockKind = "THEORY"
	BlockPractical BlockKind = "PRACTICAL"
)

// Assignment is one scheduled course-hour block. It is owned by exactly one
// slot at a time; moving it rewrites Slot, never duplicates the record.
type Assignment struct {
	ID        string
	CourseID  string
	FacultyID string
	RoomID    string
	Kind      BlockKind
	Slot      Slot
	Conflict  bool
}

// Schedule maps grid slots to at most one assignment each.
type Schedule struct {
	grid  Grid
	slots map[Slot]*Assignment
	byID  map[string]*Assignment
}

// Delta describes a single applied move, including the passive half of a swap.
type Delta struct {
	MovedID   string
	SwappedID string
	From      Slot
	To        Slot
}

// NewSchedule returns an empty schedule on the given grid.
func NewSchedule(grid Grid) *Schedule {
	return &Schedule{
		grid:  grid,
		slots: make(map[Slot]*Assignment),
		byID:  make(map[string]*Assignment),
	}
}

// Grid returns the grid the schedule is laid out on.
func (s *Schedule) Grid() Grid { return s.grid }

// Len is the number of placed assignments.
func (s *Schedule) Len() int { return len(s.byID) }

// At returns the assignment occupying the slot, or nil.
func (s *Schedule) At(slot Slot) *Assignment { return s.slots[slot] }

// Get returns the assignment with the given id, or nil.
func (s *Schedule) Get(id string) *Assignment { return s.byID[id] }

// Place inserts a new assignment into its slot.
func (s *Schedule) Place(a *Assignment) error {
	if !s.grid.Contains(a.Slot) {
		return ErrSlotOutOfGrid
	}
	if _, exists := s.byID[a.ID]; exists {
		return ErrDuplicateID
	}
	if s.slots[a.Slot] != nil {
		return ErrSlotOccupied
	}
	s.slots[a.Slot] = a
	s.byID[a.ID] = a
	return nil
}

// Remove deletes the assignment with the given id and returns it.
func (s *Schedule) Remove(id string) *Assignment {
	a := s.byID[id]
	if a == nil {
		return nil
	}
	delete(s.byID, id)
	delete(s.slots, a.Slot)
	return a
}

// Move relocates an assignment to the target slot. When the target already
// holds an assignment the two swap places; the occupant is never overwritten.
// Moving to an empty slot and swapping are the only two outcomes.
func (s *Schedule) Move(id string, to Slot) (*Delta, error) {
	a := s.byID[id]
	if a == nil {
		return nil, ErrUnknownAssignment
	}
	if !s.grid.Contains(to) {
		return nil, ErrSlotOutOfGrid
	}

	from := a.Slot
	if from == to {
		return &Delta{MovedID: id, From: from, To: to}, nil
	}

	delta := &Delta{MovedID: id, From: from, To: to}
	if occupant := s.slots[to]; occupant != nil {
		occupant.Slot = from
		s.slots[from] = occupant
		delta.SwappedID = occupant.ID
	} else {
		delete(s.slots, from)
	}
	a.Slot = to
	s.slots[to] = a
	return delta, nil
}

// Assignments returns all placed assignments in day-major slot order.
func (s *Schedule) Assignments() []*Assignment {
	out := make([]*Assignment, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slot.Day != out[j].Slot.Day {
			return out[i].Slot.Day < out[j].Slot.Day
		}
		if out[i].Slot.Index != out[j].Slot.Index {
			return out[i].Slot.Index < out[j].Slot.Index
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Clone deep-copies the schedule.
func (s *Schedule) Clone() *Schedule {
	clone := NewSchedule(s.grid)
	for _, a := range s.byID {
		copied := *a
		clone.slots[copied.Slot] = &copied
		clone.byID[copied.ID] = &copied
	}
	return clone
}
