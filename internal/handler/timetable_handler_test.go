package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/service"
)

type stubCourseLister struct{}

func (stubCourseLister) ListActive(ctx context.Context) ([]models.Course, error) { return nil, nil }

type stubFacultyLister struct{}

func (stubFacultyLister) ListActive(ctx context.Context) ([]models.Faculty, error) { return nil, nil }

type stubRoomLister struct{}

func (stubRoomLister) ListActive(ctx context.Context) ([]models.Room, error) { return nil, nil }

type stubVersionRepo struct{}

func (stubVersionRepo) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	return nil
}

func (stubVersionRepo) ListVersions(ctx context.Context, limit int) ([]models.TimetableVersionMeta, error) {
	return nil, nil
}

func (stubVersionRepo) FindByID(ctx context.Context, id string) (*models.TimetableVersion, error) {
	return nil, sql.ErrNoRows
}

func (stubVersionRepo) FindActive(ctx context.Context) (*models.TimetableVersion, error) {
	return nil, sql.ErrNoRows
}

func (stubVersionRepo) UpdateSnapshot(ctx context.Context, id string, snapshot types.JSONText, penalty float64, hardViolations int) error {
	return nil
}

func (stubVersionRepo) ActivateExclusive(ctx context.Context, id string) error { return nil }

func (stubVersionRepo) PruneOldVersions(ctx context.Context, keep int) error { return nil }

func handlerGrid() engine.Grid {
	return engine.Grid{Days: 5, SlotsPerDay: 4, SlotMinutes: 60, DayStart: "09:00"}
}

func newTimetableFixture(t *testing.T) (*TimetableHandler, *engine.Store) {
	t.Helper()
	catalog := engine.NewCatalog(handlerGrid(), engine.DefaultOptions())
	roster := engine.NewRoster(
		[]*engine.Course{{ID: "c-algebra", Code: "MATH101", TheoryHours: 1, ExpectedSize: 30}},
		[]*engine.Faculty{{ID: "f-rivera", Name: "Rivera", MaxWeeklyHours: 18}},
		[]*engine.Room{{ID: "r-hall", Name: "Hall A", Capacity: 60, Category: engine.RoomLectureHall}},
	)
	store := engine.NewStore(engine.NewDetector(catalog), roster)

	svc := service.NewTimetableService(store, service.TimetableServiceConfig{
		Grid:   handlerGrid(),
		Budget: engine.DefaultBudget(),
	}, service.TimetableRepos{
		Courses:  stubCourseLister{},
		Faculty:  stubFacultyLister{},
		Rooms:    stubRoomLister{},
		Versions: stubVersionRepo{},
	}, nil, nil, nil, nil)
	return NewTimetableHandler(svc), store
}

func loadSchedule(t *testing.T, store *engine.Store) {
	t.Helper()
	schedule := engine.NewSchedule(handlerGrid())
	require.NoError(t, schedule.Place(&engine.Assignment{
		ID:        "a1",
		CourseID:  "c-algebra",
		FacultyID: "f-rivera",
		RoomID:    "r-hall",
		Kind:      engine.BlockTheory,
		Slot:      engine.Slot{Day: 1, Index: 1},
	}))
	store.Replace(schedule)
}

func TestTimetableHandlerMove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newTimetableFixture(t)
	loadSchedule(t, store)

	body, _ := json.Marshal(dto.MoveAssignmentRequest{
		AssignmentID: "a1",
		Day:          "TUESDAY",
		Time:         "10:00",
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/moves", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Move(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.MoveResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "a1", envelope.Data.MovedID)
	assert.Equal(t, "TUESDAY", envelope.Data.To.Day)
	assert.Equal(t, "10:00", envelope.Data.To.Time)
}

func TestTimetableHandlerMoveUnknownDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store := newTimetableFixture(t)
	loadSchedule(t, store)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/moves",
		bytes.NewBufferString(`{"assignmentId":"a1","day":"FUNDAY","time":"09:00"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Move(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerMoveMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTimetableFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/moves", bytes.NewBufferString(`{"assignmentId":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Move(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGetWithoutTimetable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTimetableFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timetable", nil)
	c.Request = req

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerStatusIdle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTimetableFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timetable/status", nil)
	c.Request = req

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.GenerationStatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, service.GenerationStateIdle, envelope.Data.State)
}

func TestTimetableHandlerCancelWithoutRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTimetableFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/timetable/generate", nil)
	c.Request = req

	handler.CancelGenerate(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}
