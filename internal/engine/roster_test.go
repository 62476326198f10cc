package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseBlockCounts(t *testing.T) {
	c := &Course{ID: "c1", Code: "X", TheoryHours: 3, PracticalHours: 2}

	assert.Equal(t, 3, c.TheoryBlocks(60))
	assert.Equal(t, 2, c.PracticalBlocks(60))
	assert.Equal(t, 4, c.TheoryBlocks(45), "3h in 45-minute slots rounds up")
	assert.Equal(t, 0, (&Course{}).TheoryBlocks(60))
}

func TestCourseValidate(t *testing.T) {
	assert.Error(t, (&Course{Code: "X", TheoryHours: 1}).Validate(), "missing id")
	assert.Error(t, (&Course{ID: "c1", Code: "X"}).Validate(), "zero hours")
	assert.Error(t, (&Course{ID: "c1", Code: "X", TheoryHours: 2, PracticalHours: -1}).Validate())
	assert.NoError(t, (&Course{ID: "c1", Code: "X", TheoryHours: 2}).Validate())
}

func TestFacultyAvailable(t *testing.T) {
	f := &Faculty{
		ID:      "f1",
		Days:    map[int]bool{1: true, 2: true},
		Blocked: map[Slot]bool{{Day: 1, Index: 3}: true},
	}

	assert.True(t, f.Available(Slot{Day: 1, Index: 1}))
	assert.False(t, f.Available(Slot{Day: 1, Index: 3}), "blocked slot")
	assert.False(t, f.Available(Slot{Day: 3, Index: 1}), "day not listed")

	open := &Faculty{ID: "f2"}
	assert.True(t, open.Available(Slot{Day: 5, Index: 4}), "empty day set means every day")
}

func TestFacultyHasTag(t *testing.T) {
	f := &Faculty{ID: "f1", Expertise: []string{"math", "stats"}}

	assert.True(t, f.HasTag("math"))
	assert.False(t, f.HasTag("physics"))
	assert.True(t, f.HasTag(""), "no requirement always matches")
}

func TestExclusionWindowCovers(t *testing.T) {
	w := ExclusionWindow{Days: []int{5}, Groups: []string{"CS-1"}, Label: "department meeting"}

	assert.True(t, w.Covers("CS-1", 5))
	assert.False(t, w.Covers("CS-1", 4))
	assert.False(t, w.Covers("CS-2", 5))
	assert.False(t, w.Covers("", 5), "ungrouped courses are never covered")
}

func TestRosterValidate(t *testing.T) {
	require.NoError(t, testRoster().Validate())

	bad := NewRoster(
		[]*Course{{ID: "c1", Code: "X"}},
		nil,
		nil,
	)
	assert.Error(t, bad.Validate())
}

func TestRosterCommitments(t *testing.T) {
	r := testRoster()
	slot := Slot{Day: 2, Index: 1}
	r.AddCommitments(
		Commitment{Slot: slot, FacultyID: "f-chen", Label: "dept timetable"},
		Commitment{Slot: slot, RoomID: "r-lab", Label: "maintenance"},
	)

	label, busy := r.FacultyCommitted(slot, "f-chen")
	assert.True(t, busy)
	assert.Equal(t, "dept timetable", label)

	_, busy = r.FacultyCommitted(slot, "f-rivera")
	assert.False(t, busy)

	_, busy = r.RoomCommitted(slot, "r-lab")
	assert.True(t, busy)

	_, busy = r.RoomCommitted(Slot{Day: 2, Index: 2}, "r-lab")
	assert.False(t, busy)
}
