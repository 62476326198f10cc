package engine

import "testing"

func testGrid() Grid {
	return Grid{Days: 5, SlotsPerDay: 4, SlotMinutes: 60, DayStart: "09:00"}
}

// testRoster builds a small feasible teaching week: two instructors, three
// rooms, one pure-theory course and one mixed theory/practical course.
func testRoster() *Roster {
	courses := []*Course{
		{
			ID: "c-algebra", Code: "MATH101", Title: "Linear Algebra",
			Credits: 3, Category: CategoryLecture,
			TheoryHours: 3, ExpectedSize: 40,
			RequiredTag: "math", Group: "CS-1",
		},
		{
			ID: "c-mechanics", Code: "PHYS201", Title: "Classical Mechanics",
			Credits: 4, Category: CategoryLecture,
			TheoryHours: 2, PracticalHours: 2, ExpectedSize: 25,
			RequiredTag: "physics", Group: "CS-1",
		},
	}
	faculty := []*Faculty{
		{
			ID: "f-rivera", Name: "Rivera",
			Expertise: []string{"math"}, MaxWeeklyHours: 18,
		},
		{
			ID: "f-chen", Name: "Chen",
			Expertise:      []string{"physics", "math"},
			MaxWeeklyHours: 16,
			Days:           map[int]bool{1: true, 2: true, 3: true, 4: true},
		},
	}
	rooms := []*Room{
		{ID: "r-hall", Name: "Hall A", Capacity: 60, Category: RoomLectureHall},
		{ID: "r-lab", Name: "Physics Lab", Capacity: 30, Category: RoomLab},
		{ID: "r-sem", Name: "Seminar 2", Capacity: 20, Category: RoomSeminar},
	}
	return NewRoster(courses, faculty, rooms)
}

func testCatalog() *Catalog {
	return NewCatalog(testGrid(), DefaultOptions())
}

func mustPlace(t *testing.T, s *Schedule, a *Assignment) {
	t.Helper()
	if err := s.Place(a); err != nil {
		t.Fatalf("place %s at %+v: %v", a.ID, a.Slot, err)
	}
}
