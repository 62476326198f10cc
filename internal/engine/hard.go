package engine

import (
	"fmt"
	"sort"
)

// facultyClash forbids a faculty member appearing in two assignments of the
// same slot, or in a slot an external commitment already books them for.
type facultyClash struct{}

func (facultyClash) Name() string      { return ConstraintFacultyClash }
func (facultyClash) Incremental() bool { return true }

func (facultyClash) Evaluate(s *Schedule, r *Roster, scope Scope) []Violation {
	type key struct {
		slot Slot
		fac  string
	}
	grouped := make(map[key][]*Assignment)
	for _, a := range s.Assignments() {
		k := key{slot: a.Slot, fac: a.FacultyID}
		grouped[k] = append(grouped[k], a)
	}

	var out []Violation
	for k, group := range grouped {
		// groups are filtered whole so a partially in-scope pair is never split
		if !scope.All && !anyInScope(group, scope) {
			continue
		}
		if len(group) > 1 {
			out = append(out, Violation{
				Constraint:    ConstraintFacultyClash,
				Slots:         []Slot{k.slot},
				AssignmentIDs: ids(group),
				Message:       fmt.Sprintf("faculty %s double-booked on %s slot %d", k.fac, DayName(k.slot.Day), k.slot.Index),
			})
			continue
		}
		if label, busy := r.FacultyCommitted(k.slot, k.fac); busy {
			out = append(out, Violation{
				Constraint:    ConstraintFacultyClash,
				Slots:         []Slot{k.slot},
				AssignmentIDs: ids(group),
				Message:       fmt.Sprintf("faculty %s committed elsewhere (%s) on %s slot %d", k.fac, label, DayName(k.slot.Day), k.slot.Index),
			})
		}
	}
	sortViolations(out)
	return out
}

// roomClash is the room counterpart of facultyClash.
type roomClash struct{}

func (roomClash) Name() string      { return ConstraintRoomClash }
func (roomClash) Incremental() bool { return true }

func (roomClash) Evaluate(s *Schedule, r *Roster, scope Scope) []Violation {
	type key struct {
		slot Slot
		room string
	}
	grouped := make(map[key][]*Assignment)
	for _, a := range s.Assignments() {
		k := key{slot: a.Slot, room: a.RoomID}
		grouped[k] = append(grouped[k], a)
	}

	var out []Violation
	for k, group := range grouped {
		if !scope.All && !anyInScope(group, scope) {
			continue
		}
		if len(group) > 1 {
			out = append(out, Violation{
				Constraint:    ConstraintRoomClash,
				Slots:         []Slot{k.slot},
				AssignmentIDs: ids(group),
				Message:       fmt.Sprintf("room %s double-booked on %s slot %d", k.room, DayName(k.slot.Day), k.slot.Index),
			})
			continue
		}
		if label, busy := r.RoomCommitted(k.slot, k.room); busy {
			out = append(out, Violation{
				Constraint:    ConstraintRoomClash,
				Slots:         []Slot{k.slot},
				AssignmentIDs: ids(group),
				Message:       fmt.Sprintf("room %s committed elsewhere (%s) on %s slot %d", k.room, label, DayName(k.slot.Day), k.slot.Index),
			})
		}
	}
	sortViolations(out)
	return out
}

// facultyAvailability requires every assignment to sit inside the assigned
// faculty member's availability window.
type facultyAvailability struct{}

func (facultyAvailability) Name() string      { return ConstraintFacultyAvailability }
func (facultyAvailability) Incremental() bool { return true }

func (facultyAvailability) Evaluate(s *Schedule, r *Roster, scope Scope) []Violation {
	var out []Violation
	for _, a := range s.Assignments() {
		if !scope.Includes(a) {
			continue
		}
		fac := r.Faculty[a.FacultyID]
		if fac == nil {
			out = append(out, Violation{
				Constraint:    ConstraintFacultyAvailability,
				Slots:         []Slot{a.Slot},
				AssignmentIDs: []string{a.ID},
				Message:       fmt.Sprintf("assignment %s references unknown faculty %s", a.ID, a.FacultyID),
			})
			continue
		}
		if !fac.Available(a.Slot) {
			out = append(out, Violation{
				Constraint:    ConstraintFacultyAvailability,
				Slots:         []Slot{a.Slot},
				AssignmentIDs: []string{a.ID},
				Message:       fmt.Sprintf("faculty %s unavailable on %s slot %d", a.FacultyID, DayName(a.Slot.Day), a.Slot.Index),
			})
		}
	}
	sortViolations(out)
	return out
}

// roomCapacity requires the room to seat the course's expected section size.
type roomCapacity struct{}

func (roomCapacity) Name() string      { return ConstraintRoomCapacity }
func (roomCapacity) Incremental() bool { return true }

func (roomCapacity) Evaluate(s *Schedule, r *Roster, scope Scope) []Violation {
	var out []Violation
	for _, a := range s.Assignments() {
		if !scope.Includes(a) {
			continue
		}
		course := r.Courses[a.CourseID]
		room := r.Rooms[a.RoomID]
		if course == nil || room == nil {
			out = append(out, Violation{
				Constraint:    ConstraintRoomCapacity,
				Slots:         []Slot{a.Slot},
				AssignmentIDs: []string{a.ID},
				Message:       fmt.Sprintf("assignment %s references unknown course or room", a.ID),
			})
			continue
		}
		if course.ExpectedSize > 0 && room.Capacity < course.ExpectedSize {
			out = append(out, Violation{
				Constraint:    ConstraintRoomCapacity,
				Slots:         []Slot{a.Slot},
				AssignmentIDs: []string{a.ID},
				Message:       fmt.Sprintf("room %s (cap %d) too small for %s (%d expected)", room.ID, room.Capacity, course.Code, course.ExpectedSize),
			})
		}
	}
	sortViolations(out)
	return out
}

// facultyWeeklyLoad caps each faculty member's assigned hours per week. A
// zero cap is a real cap: such faculty may not hold any assignment.
type facultyWeeklyLoad struct {
	grid Grid
}

func (facultyWeeklyLoad) Name() string      { return ConstraintFacultyWeeklyLoad }
func (facultyWeeklyLoad) Incremental() bool { return true }

func (c facultyWeeklyLoad) Evaluate(s *Schedule, r *Roster, scope Scope) []Violation {
	byFaculty := make(map[string][]*Assignment)
	for _, a := range s.Assignments() {
		byFaculty[a.FacultyID] = append(byFaculty[a.FacultyID], a)
	}

	var out []Violation
	for facID, group := range byFaculty {
		if !scope.All && !scope.Faculty[facID] && !anyInScope(group, scope) {
			continue
		}
		fac := r.Faculty[facID]
		if fac == nil {
			continue
		}
		hours := c.grid.SlotHours(len(group))
		if hours > float64(fac.MaxWeeklyHours) {
			out = append(out, Violation{
				Constraint:    ConstraintFacultyWeeklyLoad,
				Slots:         slotsOf(group),
				AssignmentIDs: ids(group),
				Message:       fmt.Sprintf("faculty %s assigned %.1fh, max %dh", facID, hours, fac.MaxWeeklyHours),
			})
		}
	}
	sortViolations(out)
	return out
}

// courseCoverage requires every course's weekly theory and practical hours to
// be fully represented. It cannot be evaluated from a delta: a move never
// changes block counts but deletions and replacements do, so it always runs
// as a full pass.
type courseCoverage struct {
	grid Grid
}

func (courseCoverage) Name() string      { return ConstraintCourseCoverage }
func (courseCoverage) Incremental() bool { return false }

func (c courseCoverage) Evaluate(s *Schedule, r *Roster, scope Scope) []Violation {
	placed := make(map[string]map[BlockKind][]*Assignment)
	for _, a := range s.Assignments() {
		if placed[a.CourseID] == nil {
			placed[a.CourseID] = make(map[BlockKind][]*Assignment)
		}
		placed[a.CourseID][a.Kind] = append(placed[a.CourseID][a.Kind], a)
	}

	courseIDs := make([]string, 0, len(r.Courses))
	for id := range r.Courses {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	var out []Violation
	for _, id := range courseIDs {
		course := r.Courses[id]
		wantTheory := course.TheoryBlocks(c.grid.SlotMinutes)
		wantPractical := course.PracticalBlocks(c.grid.SlotMinutes)
		gotTheory := len(placed[id][BlockTheory])
		gotPractical := len(placed[id][BlockPractical])
		if gotTheory == wantTheory && gotPractical == wantPractical {
			continue
		}
		var involved []*Assignment
		involved = append(involved, placed[id][BlockTheory]...)
		involved = append(involved, placed[id][BlockPractical]...)
		out = append(out, Violation{
			Constraint:    ConstraintCourseCoverage,
			Slots:         slotsOf(involved),
			AssignmentIDs: ids(involved),
			Message: fmt.Sprintf("course %s coverage: theory %d/%d, practical %d/%d blocks",
				course.Code, gotTheory, wantTheory, gotPractical, wantPractical),
		})
	}
	sortViolations(out)
	return out
}

// maxConsecutive forbids faculty teaching runs longer than the configured
// number of adjacent slots.
type maxConsecutive struct {
	limitSlots int
}

func (maxConsecutive) Name() string      { return ConstraintMaxConsecutive }
func (maxConsecutive) Incremental() bool { return true }

func (c maxConsecutive) Evaluate(s *Schedule, r *Roster, scope Scope) []Violation {
	type key struct {
		fac string
		day int
	}
	byDay := make(map[key][]*Assignment)
	for _, a := range s.Assignments() {
		k := key{fac: a.FacultyID, day: a.Slot.Day}
		byDay[k] = append(byDay[k], a)
	}

	var out []Violation
	for k, group := range byDay {
		sort.Slice(group, func(i, j int) bool { return group[i].Slot.Index < group[j].Slot.Index })
		run := []*Assignment{}
		flush := func() {
			// runs span the whole day; each is filtered whole so a run is
			// never truncated at the scope boundary
			if len(run) > c.limitSlots && (scope.All || anyInScope(run, scope)) {
				out = append(out, Violation{
					Constraint:    ConstraintMaxConsecutive,
					Slots:         slotsOf(run),
					AssignmentIDs: ids(run),
					Message:       fmt.Sprintf("faculty %s teaches %d consecutive slots on %s, limit %d", k.fac, len(run), DayName(k.day), c.limitSlots),
				})
			}
			run = run[:0]
		}
		for _, a := range group {
			if len(run) > 0 && a.Slot.Index != run[len(run)-1].Slot.Index+1 {
				flush()
			}
			run = append(run, a)
		}
		flush()
	}
	sortViolations(out)
	return out
}

func ids(group []*Assignment) []string {
	out := make([]string, 0, len(group))
	for _, a := range group {
		out = append(out, a.ID)
	}
	sort.Strings(out)
	return out
}

func slotsOf(group []*Assignment) []Slot {
	out := make([]Slot, 0, len(group))
	for _, a := range group {
		out = append(out, a.Slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func anyInScope(group []*Assignment, scope Scope) bool {
	for _, a := range group {
		if scope.Includes(a) {
			return true
		}
	}
	return false
}
