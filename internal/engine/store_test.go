package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *Roster) {
	t.Helper()
	roster := testRoster()
	return NewStore(NewDetector(testCatalog()), roster), roster
}

func seedStore(t *testing.T, store *Store) {
	t.Helper()
	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "a1", CourseID: "c-algebra", FacultyID: "f-rivera", RoomID: "r-hall", Kind: BlockTheory, Slot: Slot{Day: 1, Index: 1}})
	mustPlace(t, s, &Assignment{ID: "a2", CourseID: "c-mechanics", FacultyID: "f-chen", RoomID: "r-hall", Kind: BlockTheory, Slot: Slot{Day: 2, Index: 1}})
	store.Replace(s)
}

func TestStoreMoveWithoutSchedule(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Move("a1", Slot{Day: 1, Index: 2})
	assert.ErrorIs(t, err, ErrNoSchedule)
}

func TestStoreMoveStructuralErrors(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	_, err := store.Move("ghost", Slot{Day: 1, Index: 2})
	assert.ErrorIs(t, err, ErrUnknownAssignment)

	_, err = store.Move("a1", Slot{Day: 9, Index: 1})
	assert.ErrorIs(t, err, ErrSlotOutOfGrid)

	snapshot, _ := store.Snapshot()
	assert.Equal(t, Slot{Day: 1, Index: 1}, snapshot.Get("a1").Slot, "rejected moves leave the schedule untouched")
}

func TestStoreMoveUpdatesReportAndFlags(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	// Friday is outside Chen's teaching days
	res, err := store.Move("a2", Slot{Day: 5, Index: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Report.ViolationsFor(ConstraintFacultyAvailability))
	assert.True(t, res.Report.Conflicted("a2"))

	snapshot, report := store.Snapshot()
	assert.True(t, snapshot.Get("a2").Conflict, "conflict flag mirrored onto the stored assignment")
	assert.True(t, report.Conflicted("a2"))

	// moving back clears the flag
	res, err = store.Move("a2", Slot{Day: 2, Index: 1})
	require.NoError(t, err)
	assert.False(t, res.Report.Conflicted("a2"))
	snapshot, _ = store.Snapshot()
	assert.False(t, snapshot.Get("a2").Conflict)
}

func TestStoreMoveSwap(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	res, err := store.Move("a1", Slot{Day: 2, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, "a2", res.Delta.SwappedID)

	snapshot, _ := store.Snapshot()
	assert.Equal(t, Slot{Day: 2, Index: 1}, snapshot.Get("a1").Slot)
	assert.Equal(t, Slot{Day: 1, Index: 1}, snapshot.Get("a2").Slot)
}

func TestStoreSnapshotIsClone(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	snapshot, _ := store.Snapshot()
	_, err := snapshot.Move("a1", Slot{Day: 3, Index: 3})
	require.NoError(t, err)

	fresh, _ := store.Snapshot()
	assert.Equal(t, Slot{Day: 1, Index: 1}, fresh.Get("a1").Slot, "snapshots never leak mutations back")
}

func TestStoreGenerationLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	require.NoError(t, store.BeginGeneration())
	assert.True(t, store.Generating())
	assert.ErrorIs(t, store.BeginGeneration(), ErrGenerationInFlight)

	s := NewSchedule(testGrid())
	mustPlace(t, s, &Assignment{ID: "b1", CourseID: "c-algebra", FacultyID: "f-rivera", RoomID: "r-hall", Kind: BlockTheory, Slot: Slot{Day: 3, Index: 1}})
	installed, report := store.EndGeneration(s)

	assert.False(t, store.Generating())
	require.NotNil(t, installed)
	assert.NotNil(t, installed.Get("b1"))
	assert.Nil(t, installed.Get("a1"), "generation replaces the previous schedule")
	assert.NotNil(t, report)
}

func TestStoreCancelledGenerationKeepsSchedule(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	require.NoError(t, store.BeginGeneration())
	installed, _ := store.EndGeneration(nil)

	require.NotNil(t, installed)
	assert.NotNil(t, installed.Get("a1"), "cancelled generation leaves the old schedule in place")
}

func TestStoreMoveQueuesBehindGeneration(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	require.NoError(t, store.BeginGeneration())

	done := make(chan *MoveResult, 1)
	go func() {
		res, err := store.Move("a1", Slot{Day: 4, Index: 2})
		assert.NoError(t, err)
		done <- res
	}()

	select {
	case <-done:
		t.Fatal("move must wait for the in-flight generation")
	case <-time.After(50 * time.Millisecond):
	}

	store.EndGeneration(nil)

	select {
	case res := <-done:
		assert.Equal(t, Slot{Day: 4, Index: 2}, res.Delta.To)
	case <-time.After(2 * time.Second):
		t.Fatal("queued move never released")
	}

	snapshot, _ := store.Snapshot()
	assert.Equal(t, Slot{Day: 4, Index: 2}, snapshot.Get("a1").Slot)
}

func TestStoreSetRosterReevaluates(t *testing.T) {
	store, _ := newTestStore(t)
	seedStore(t, store)

	// shrink the hall so the algebra section no longer fits
	roster := testRoster()
	roster.Rooms["r-hall"].Capacity = 10
	report := store.SetRoster(roster)

	require.NotNil(t, report)
	assert.NotEmpty(t, report.ViolationsFor(ConstraintRoomCapacity))
	assert.True(t, report.Conflicted("a1"))
}
