package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type mockCourseLister struct {
	courses []models.Course
}

func (m *mockCourseLister) ListActive(ctx context.Context) ([]models.Course, error) {
	return m.courses, nil
}

type mockFacultyLister struct {
	faculty []models.Faculty
}

func (m *mockFacultyLister) ListActive(ctx context.Context) ([]models.Faculty, error) {
	return m.faculty, nil
}

type mockRoomLister struct {
	rooms []models.Room
}

func (m *mockRoomLister) ListActive(ctx context.Context) ([]models.Room, error) {
	return m.rooms, nil
}

type mockVersionRepo struct {
	created  []*models.TimetableVersion
	updated  int
	active   *models.TimetableVersion
	versions []models.TimetableVersionMeta
}

func (m *mockVersionRepo) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	version.ID = "tv-1"
	version.Version = len(m.created) + 1
	m.created = append(m.created, version)
	return nil
}

func (m *mockVersionRepo) ListVersions(ctx context.Context, limit int) ([]models.TimetableVersionMeta, error) {
	return m.versions, nil
}

func (m *mockVersionRepo) FindByID(ctx context.Context, id string) (*models.TimetableVersion, error) {
	for _, v := range m.created {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockVersionRepo) FindActive(ctx context.Context) (*models.TimetableVersion, error) {
	if m.active == nil {
		return nil, sql.ErrNoRows
	}
	return m.active, nil
}

func (m *mockVersionRepo) UpdateSnapshot(ctx context.Context, id string, snapshot types.JSONText, penalty float64, hardViolations int) error {
	m.updated++
	return nil
}

func (m *mockVersionRepo) ActivateExclusive(ctx context.Context, id string) error {
	return nil
}

func (m *mockVersionRepo) PruneOldVersions(ctx context.Context, keep int) error {
	return nil
}

func serviceGrid() engine.Grid {
	return engine.Grid{Days: 5, SlotsPerDay: 4, SlotMinutes: 60, DayStart: "09:00"}
}

func serviceStore(t *testing.T) *engine.Store {
	t.Helper()
	catalog := engine.NewCatalog(serviceGrid(), engine.DefaultOptions())
	roster := engine.NewRoster(
		[]*engine.Course{{ID: "c-algebra", Code: "MATH101", TheoryHours: 1, ExpectedSize: 30}},
		[]*engine.Faculty{{ID: "f-rivera", Name: "Rivera", MaxWeeklyHours: 18}},
		[]*engine.Room{{ID: "r-hall", Name: "Hall A", Capacity: 60, Category: engine.RoomLectureHall}},
	)
	return engine.NewStore(engine.NewDetector(catalog), roster)
}

func newTestTimetableService(t *testing.T, store *engine.Store, versions timetableVersionRepository) *TimetableService {
	t.Helper()
	repos := TimetableRepos{
		Courses:  &mockCourseLister{},
		Faculty:  &mockFacultyLister{},
		Rooms:    &mockRoomLister{},
		Versions: versions,
	}
	cfg := TimetableServiceConfig{Grid: serviceGrid(), Budget: engine.DefaultBudget()}
	return NewTimetableService(store, cfg, repos, nil, nil, validator.New(), zap.NewNop())
}

func placeAssignment(t *testing.T, store *engine.Store, id string, day, index int) {
	t.Helper()
	schedule := engine.NewSchedule(serviceGrid())
	require.NoError(t, schedule.Place(&engine.Assignment{
		ID:        id,
		CourseID:  "c-algebra",
		FacultyID: "f-rivera",
		RoomID:    "r-hall",
		Kind:      engine.BlockTheory,
		Slot:      engine.Slot{Day: day, Index: index},
	}))
	store.Replace(schedule)
}

func TestTimetableServiceMoveRejectsUnknownDay(t *testing.T) {
	store := serviceStore(t)
	placeAssignment(t, store, "a1", 1, 1)
	service := newTestTimetableService(t, store, &mockVersionRepo{})

	_, err := service.Move(context.Background(), dto.MoveAssignmentRequest{
		AssignmentID: "a1",
		Day:          "FUNDAY",
		Time:         "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceMoveRejectsOffGridTime(t *testing.T) {
	store := serviceStore(t)
	placeAssignment(t, store, "a1", 1, 1)
	service := newTestTimetableService(t, store, &mockVersionRepo{})

	_, err := service.Move(context.Background(), dto.MoveAssignmentRequest{
		AssignmentID: "a1",
		Day:          "MONDAY",
		Time:         "09:30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceMoveUnknownAssignment(t *testing.T) {
	store := serviceStore(t)
	placeAssignment(t, store, "a1", 1, 1)
	service := newTestTimetableService(t, store, &mockVersionRepo{})

	_, err := service.Move(context.Background(), dto.MoveAssignmentRequest{
		AssignmentID: "ghost",
		Day:          "MONDAY",
		Time:         "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceMoveRelocates(t *testing.T) {
	store := serviceStore(t)
	placeAssignment(t, store, "a1", 1, 1)
	service := newTestTimetableService(t, store, &mockVersionRepo{})

	resp, err := service.Move(context.Background(), dto.MoveAssignmentRequest{
		AssignmentID: "a1",
		Day:          "TUESDAY",
		Time:         "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", resp.MovedID)
	assert.Empty(t, resp.SwappedID)
	assert.Equal(t, dto.SlotAddress{Day: "MONDAY", Time: "09:00"}, resp.From)
	assert.Equal(t, dto.SlotAddress{Day: "TUESDAY", Time: "10:00"}, resp.To)

	record, ok := resp.Week["TUESDAY"]["10:00"]
	require.True(t, ok)
	assert.Equal(t, "a1", record.ID)
	assert.Equal(t, "c-algebra", record.CourseID)
	_, stillThere := resp.Week["MONDAY"]["09:00"]
	assert.False(t, stillThere)
}

func TestTimetableServiceGetFromStore(t *testing.T) {
	store := serviceStore(t)
	placeAssignment(t, store, "a1", 3, 2)
	service := newTestTimetableService(t, store, &mockVersionRepo{})

	resp, err := service.GetTimetable(context.Background())
	require.NoError(t, err)
	record, ok := resp.Week["WEDNESDAY"]["10:00"]
	require.True(t, ok)
	assert.Equal(t, "a1", record.ID)
	assert.False(t, record.IsConflict)
}

func TestTimetableServiceGetHydratesFromDatabase(t *testing.T) {
	week := dto.SerializedWeek{
		"MONDAY": {"09:00": dto.SlotRecord{ID: "a1", CourseID: "c-algebra", FacultyID: "f-rivera", RoomID: "r-hall"}},
	}
	snapshot, err := json.Marshal(week)
	require.NoError(t, err)
	versions := &mockVersionRepo{active: &models.TimetableVersion{
		ID:       "tv-9",
		Version:  9,
		Status:   models.TimetableStatusActive,
		Snapshot: types.JSONText(snapshot),
		Penalty:  2.5,
	}}
	service := newTestTimetableService(t, serviceStore(t), versions)

	resp, err := service.GetTimetable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, resp.Version)
	assert.InDelta(t, 2.5, resp.Conflicts.SoftPenalty, 1e-9)
	assert.Equal(t, "a1", resp.Week["MONDAY"]["09:00"].ID)
}

func TestTimetableServiceGetNoActiveTimetable(t *testing.T) {
	service := newTestTimetableService(t, serviceStore(t), &mockVersionRepo{})

	_, err := service.GetTimetable(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateWhileBusy(t *testing.T) {
	store := serviceStore(t)
	require.NoError(t, store.BeginGeneration())
	defer store.EndGeneration(nil)

	repos := TimetableRepos{
		Courses: &mockCourseLister{courses: []models.Course{{
			ID: "c-algebra", Code: "MATH101", Category: models.CourseCategoryLecture,
			TheoryHours: 1, ExpectedSize: 30, Active: true,
		}}},
		Faculty: &mockFacultyLister{faculty: []models.Faculty{{
			ID: "f-rivera", Name: "Rivera", MaxWeeklyHours: 18, Active: true,
		}}},
		Rooms: &mockRoomLister{rooms: []models.Room{{
			ID: "r-hall", Name: "Hall A", Capacity: 60, Category: models.RoomCategoryLectureHall, Active: true,
		}}},
		Versions: &mockVersionRepo{},
	}
	cfg := TimetableServiceConfig{Grid: serviceGrid(), Budget: engine.DefaultBudget()}
	service := NewTimetableService(store, cfg, repos, nil, nil, validator.New(), zap.NewNop())

	_, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGenerationBusy.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateRunsToCompletion(t *testing.T) {
	store := serviceStore(t)
	versions := &mockVersionRepo{}
	repos := TimetableRepos{
		Courses: &mockCourseLister{courses: []models.Course{{
			ID: "c-algebra", Code: "MATH101", Category: models.CourseCategoryLecture,
			TheoryHours: 1, ExpectedSize: 30, Active: true,
		}}},
		Faculty: &mockFacultyLister{faculty: []models.Faculty{{
			ID: "f-rivera", Name: "Rivera", MaxWeeklyHours: 18, Active: true,
		}}},
		Rooms: &mockRoomLister{rooms: []models.Room{{
			ID: "r-hall", Name: "Hall A", Capacity: 60, Category: models.RoomCategoryLectureHall, Active: true,
		}}},
		Versions: versions,
	}
	cfg := TimetableServiceConfig{Grid: serviceGrid(), Budget: engine.DefaultBudget()}
	service := NewTimetableService(store, cfg, repos, nil, nil, validator.New(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)
	defer service.Stop()

	status, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{}, "u1")
	require.NoError(t, err)
	assert.Equal(t, GenerationStateRunning, status.State)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if service.Status().State == GenerationStateSucceeded {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	final := service.Status()
	require.Equal(t, GenerationStateSucceeded, final.State)
	require.Len(t, versions.created, 1)
	assert.Equal(t, 0, versions.created[0].HardViolations)

	schedule, report := store.Snapshot()
	require.NotNil(t, schedule)
	assert.Equal(t, 1, schedule.Len())
	assert.False(t, report.HasHardViolations())
}

func TestTimetableServiceCancelWithoutRun(t *testing.T) {
	service := newTestTimetableService(t, serviceStore(t), &mockVersionRepo{})

	err := service.CancelGenerate(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
