package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFeasibleWeek(t *testing.T) {
	grid := testGrid()
	roster := testRoster()
	catalog := testCatalog()

	res, err := Generate(context.Background(), grid, roster, catalog, DefaultBudget())
	require.NoError(t, err)
	require.Nil(t, res.Failure)
	require.NotNil(t, res.Schedule)

	// 3 theory blocks of algebra, 2 theory + 2 practical of mechanics
	assert.Equal(t, 7, res.Schedule.Len())
	assert.Equal(t, 7, res.Stats.TotalBlocks)
	assert.Equal(t, 7, res.Stats.PlacedBlocks)

	report := NewDetector(catalog).Detect(res.Schedule, roster)
	assert.False(t, report.HasHardViolations(), "generated schedules carry no hard violations: %v", report.Violations)
}

func TestGenerateRespectsFacultyDays(t *testing.T) {
	res, err := Generate(context.Background(), testGrid(), testRoster(), testCatalog(), DefaultBudget())
	require.NoError(t, err)
	require.Nil(t, res.Failure)

	for _, a := range res.Schedule.Assignments() {
		if a.FacultyID == "f-chen" {
			assert.LessOrEqual(t, a.Slot.Day, 4, "Chen only teaches Monday through Thursday")
		}
	}
}

func TestGenerateRoomCompatibility(t *testing.T) {
	roster := testRoster()
	res, err := Generate(context.Background(), testGrid(), roster, testCatalog(), DefaultBudget())
	require.NoError(t, err)
	require.Nil(t, res.Failure)

	for _, a := range res.Schedule.Assignments() {
		room := roster.Rooms[a.RoomID]
		require.NotNil(t, room)
		if a.Kind == BlockPractical {
			assert.Equal(t, RoomLab, room.Category, "practical blocks go to labs")
		} else {
			assert.NotEqual(t, RoomLab, room.Category, "theory blocks stay out of labs")
		}
		course := roster.Courses[a.CourseID]
		assert.GreaterOrEqual(t, room.Capacity, course.ExpectedSize)
	}
}

func TestGenerateRespectsCommitments(t *testing.T) {
	roster := testRoster()
	busy := Slot{Day: 1, Index: 1}
	roster.AddCommitments(
		Commitment{Slot: busy, FacultyID: "f-rivera", Label: "other cohort"},
		Commitment{Slot: busy, FacultyID: "f-chen", Label: "other cohort"},
	)

	res, err := Generate(context.Background(), testGrid(), roster, testCatalog(), DefaultBudget())
	require.NoError(t, err)
	require.Nil(t, res.Failure)

	assert.Nil(t, res.Schedule.At(busy), "no one is free to teach the committed slot")
}

func TestGenerateDeterministic(t *testing.T) {
	budget := DefaultBudget()
	budget.Seed = 7

	first, err := Generate(context.Background(), testGrid(), testRoster(), testCatalog(), budget)
	require.NoError(t, err)
	require.Nil(t, first.Failure)

	second, err := Generate(context.Background(), testGrid(), testRoster(), testCatalog(), budget)
	require.NoError(t, err)
	require.Nil(t, second.Failure)

	a := first.Schedule.Assignments()
	b := second.Schedule.Assignments()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, *a[i], *b[i], "identical seed reproduces the identical schedule")
	}
}

func TestGenerateInfeasibleExpertise(t *testing.T) {
	roster := testRoster()
	roster.Courses["c-organic"] = &Course{
		ID: "c-organic", Code: "CHEM301", Title: "Organic Chemistry",
		TheoryHours: 2, ExpectedSize: 20, RequiredTag: "chemistry",
	}

	res, err := Generate(context.Background(), testGrid(), roster, testCatalog(), DefaultBudget())
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.Nil(t, res.Schedule)

	require.Len(t, res.Failure.Unplaced, 2, "both chemistry blocks, nothing else")
	for _, u := range res.Failure.Unplaced {
		assert.Equal(t, "CHEM301", u.CourseCode)
		assert.Contains(t, u.Reason, "chemistry")
	}
	assert.NotEmpty(t, res.Failure.Error())
	assert.Equal(t, 7, res.Partial.Len(), "remaining courses still get a partial schedule")
}

func TestGenerateInfeasibleWeeklyLoad(t *testing.T) {
	grid := testGrid()
	courses := []*Course{{
		ID: "c-heavy", Code: "HEAVY1", TheoryHours: 4, ExpectedSize: 10, RequiredTag: "math",
	}}
	faculty := []*Faculty{{
		ID: "f-solo", Name: "Solo", Expertise: []string{"math"}, MaxWeeklyHours: 2,
	}}
	rooms := []*Room{{ID: "r1", Name: "R1", Capacity: 30, Category: RoomLectureHall}}
	roster := NewRoster(courses, faculty, rooms)

	res, err := Generate(context.Background(), grid, roster, testCatalog(), DefaultBudget())
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.Contains(t, res.Failure.Constraints, ConstraintFacultyWeeklyLoad)
	assert.NotEmpty(t, res.Failure.Unplaced)
}

func TestGenerateMaxConsecutiveInfeasibleDay(t *testing.T) {
	// one day of four slots and four required hours: any complete placement
	// runs four straight, past the default limit of three
	grid := Grid{Days: 1, SlotsPerDay: 4, SlotMinutes: 60, DayStart: "09:00"}
	courses := []*Course{{
		ID: "c-marathon", Code: "MATH401", TheoryHours: 4, ExpectedSize: 10, RequiredTag: "math",
	}}
	faculty := []*Faculty{{
		ID: "f-solo", Name: "Solo", Expertise: []string{"math"}, MaxWeeklyHours: 18,
	}}
	rooms := []*Room{{ID: "r1", Name: "R1", Capacity: 30, Category: RoomLectureHall}}
	roster := NewRoster(courses, faculty, rooms)

	res, err := Generate(context.Background(), grid, roster, NewCatalog(grid, DefaultOptions()), DefaultBudget())
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.Nil(t, res.Schedule)
	assert.Len(t, res.Failure.Unplaced, 4)
}

func TestGenerateBreaksLongTeachingRuns(t *testing.T) {
	grid := Grid{Days: 2, SlotsPerDay: 4, SlotMinutes: 60, DayStart: "09:00"}
	courses := []*Course{{
		ID: "c-marathon", Code: "MATH401", TheoryHours: 4, ExpectedSize: 10, RequiredTag: "math",
	}}
	faculty := []*Faculty{{
		ID: "f-solo", Name: "Solo", Expertise: []string{"math"}, MaxWeeklyHours: 18,
	}}
	rooms := []*Room{{ID: "r1", Name: "R1", Capacity: 30, Category: RoomLectureHall}}
	roster := NewRoster(courses, faculty, rooms)
	catalog := NewCatalog(grid, DefaultOptions())

	res, err := Generate(context.Background(), grid, roster, catalog, DefaultBudget())
	require.NoError(t, err)
	require.Nil(t, res.Failure)
	require.NotNil(t, res.Schedule)
	assert.Equal(t, 4, res.Schedule.Len())

	report := NewDetector(catalog).Detect(res.Schedule, roster)
	assert.Empty(t, report.ViolationsFor(ConstraintMaxConsecutive))
	assert.False(t, report.HasHardViolations(), "generated schedules carry no hard violations: %v", report.Violations)
}

func TestGenerateZeroWeeklyHourCap(t *testing.T) {
	courses := []*Course{{
		ID: "c-light", Code: "MATH102", TheoryHours: 2, ExpectedSize: 10, RequiredTag: "math",
	}}
	faculty := []*Faculty{{
		ID: "f-capped", Name: "Capped", Expertise: []string{"math"}, MaxWeeklyHours: 0,
	}}
	rooms := []*Room{{ID: "r1", Name: "R1", Capacity: 30, Category: RoomLectureHall}}
	roster := NewRoster(courses, faculty, rooms)

	res, err := Generate(context.Background(), testGrid(), roster, testCatalog(), DefaultBudget())
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.Nil(t, res.Schedule)
	assert.Contains(t, res.Failure.Constraints, ConstraintFacultyWeeklyLoad)
	require.Len(t, res.Failure.Unplaced, 2)
	for _, u := range res.Failure.Unplaced {
		assert.Contains(t, u.Reason, "zero weekly hour cap")
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, testGrid(), testRoster(), testCatalog(), DefaultBudget())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateRejectsInvalidRoster(t *testing.T) {
	roster := NewRoster([]*Course{{ID: "c1", Code: "X"}}, nil, nil)

	_, err := Generate(context.Background(), testGrid(), roster, testCatalog(), DefaultBudget())
	assert.Error(t, err)
}
