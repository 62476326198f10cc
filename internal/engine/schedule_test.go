package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulePlace(t *testing.T) {
	s := NewSchedule(testGrid())
	a := &Assignment{ID: "a1", CourseID: "c-algebra", Slot: Slot{Day: 1, Index: 1}}

	require.NoError(t, s.Place(a))
	assert.Equal(t, a, s.At(Slot{Day: 1, Index: 1}))
	assert.Equal(t, a, s.Get("a1"))
	assert.Equal(t, 1, s.Len())

	assert.ErrorIs(t, s.Place(&Assignment{ID: "a1", Slot: Slot{Day: 2, Index: 1}}), ErrDuplicateID)
	assert.ErrorIs(t, s.Place(&Assignment{ID: "a2", Slot: Slot{Day: 1, Index: 1}}), ErrSlotOccupied)
	assert.ErrorIs(t, s.Place(&Assignment{ID: "a3", Slot: Slot{Day: 9, Index: 1}}), ErrSlotOutOfGrid)
	assert.Equal(t, 1, s.Len(), "failed placements must not mutate")
}

func TestScheduleMoveToEmptySlot(t *testing.T) {
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "a1", Slot: Slot{Day: 1, Index: 1}})

	delta, err := s.Move("a1", Slot{Day: 2, Index: 3})
	require.NoError(t, err)

	assert.Equal(t, "a1", delta.MovedID)
	assert.Empty(t, delta.SwappedID)
	assert.Equal(t, Slot{Day: 1, Index: 1}, delta.From)
	assert.Equal(t, Slot{Day: 2, Index: 3}, delta.To)

	assert.Nil(t, s.At(Slot{Day: 1, Index: 1}))
	assert.Equal(t, "a1", s.At(Slot{Day: 2, Index: 3}).ID)
}

func TestScheduleMoveSwapsOccupant(t *testing.T) {
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "a1", Slot: Slot{Day: 1, Index: 1}})
	mustPlace(t, s, &Assignment{ID: "a2", Slot: Slot{Day: 1, Index: 2}})

	delta, err := s.Move("a1", Slot{Day: 1, Index: 2})
	require.NoError(t, err)

	assert.Equal(t, "a2", delta.SwappedID)
	assert.Equal(t, "a2", s.At(Slot{Day: 1, Index: 1}).ID)
	assert.Equal(t, "a1", s.At(Slot{Day: 1, Index: 2}).ID)
	assert.Equal(t, 2, s.Len(), "swap never drops the occupant")
}

func TestScheduleMoveNoop(t *testing.T) {
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "a1", Slot: Slot{Day: 1, Index: 1}})

	delta, err := s.Move("a1", Slot{Day: 1, Index: 1})
	require.NoError(t, err)
	assert.Empty(t, delta.SwappedID)
	assert.Equal(t, delta.From, delta.To)
	assert.Equal(t, "a1", s.At(Slot{Day: 1, Index: 1}).ID)
}

func TestScheduleMoveErrors(t *testing.T) {
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "a1", Slot: Slot{Day: 1, Index: 1}})

	_, err := s.Move("ghost", Slot{Day: 1, Index: 2})
	assert.ErrorIs(t, err, ErrUnknownAssignment)

	_, err = s.Move("a1", Slot{Day: 7, Index: 1})
	assert.ErrorIs(t, err, ErrSlotOutOfGrid)
	assert.Equal(t, Slot{Day: 1, Index: 1}, s.Get("a1").Slot, "rejected moves leave the schedule untouched")
}

func TestScheduleRemove(t *testing.T) {
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "a1", Slot: Slot{Day: 1, Index: 1}})

	removed := s.Remove("a1")
	require.NotNil(t, removed)
	assert.Equal(t, "a1", removed.ID)
	assert.Nil(t, s.At(Slot{Day: 1, Index: 1}))
	assert.Nil(t, s.Remove("a1"), "second remove returns nil")
}

func TestScheduleAssignmentsOrdered(t *testing.T) {
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "c", Slot: Slot{Day: 3, Index: 1}})
	mustPlace(t, s, &Assignment{ID: "a", Slot: Slot{Day: 1, Index: 2}})
	mustPlace(t, s, &Assignment{ID: "b", Slot: Slot{Day: 1, Index: 4}})

	var ids []string
	for _, a := range s.Assignments() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestScheduleCloneIsIndependent(t *testing.T) {
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "a1", Slot: Slot{Day: 1, Index: 1}})

	clone := s.Clone()
	_, err := clone.Move("a1", Slot{Day: 2, Index: 2})
	require.NoError(t, err)

	assert.Equal(t, Slot{Day: 1, Index: 1}, s.Get("a1").Slot)
	assert.Equal(t, Slot{Day: 2, Index: 2}, clone.Get("a1").Slot)
}
