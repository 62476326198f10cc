package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type mockCourseRepo struct {
	items       map[string]*models.Course
	codeIndex   map[string]string
	listResult  []models.Course
	listTotal   int
	listErr     error
	deactivated []string
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.items[id]; ok {
		cp := *course
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	if owner, ok := m.codeIndex[code]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.items == nil {
		m.items = make(map[string]*models.Course)
	}
	if course.ID == "" {
		course.ID = "generated"
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	cp := *course
	m.items[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if m.items == nil {
		m.items = make(map[string]*models.Course)
	}
	cp := *course
	m.items[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if c, ok := m.items[id]; ok {
		c.Active = false
	}
	return nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidateRoster(ctx context.Context) {
	m.calls++
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{}
	invalidator := &mockInvalidator{}
	service := NewCourseService(repo, invalidator, validator.New(), zap.NewNop())

	course, err := service.Create(context.Background(), CreateCourseRequest{
		Code:         "math101 ",
		Title:        "Algebra I",
		Credits:      3,
		Category:     "LECTURE",
		TheoryHours:  3,
		ExpectedSize: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", course.Code)
	assert.True(t, course.Active)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, 1, invalidator.calls)
}

func TestCourseServiceCreateRejectsZeroHours(t *testing.T) {
	service := NewCourseService(&mockCourseRepo{}, nil, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateCourseRequest{
		Code:     "MATH101",
		Title:    "Algebra I",
		Category: "LECTURE",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCourseServiceCreateRejectsUnknownCategory(t *testing.T) {
	service := NewCourseService(&mockCourseRepo{}, nil, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateCourseRequest{
		Code:        "MATH101",
		Title:       "Algebra I",
		Category:    "STUDIO",
		TheoryHours: 3,
	})
	require.Error(t, err)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockCourseRepo{codeIndex: map[string]string{"MATH101": "other"}}
	service := NewCourseService(repo, nil, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateCourseRequest{
		Code:        "MATH101",
		Title:       "Algebra I",
		Category:    "LECTURE",
		TheoryHours: 3,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCourseServiceUpdate(t *testing.T) {
	tag := "math"
	repo := &mockCourseRepo{
		items: map[string]*models.Course{
			"c1": {ID: "c1", Code: "MATH101", Title: "Algebra I", Category: models.CourseCategoryLecture, TheoryHours: 3, Active: true},
		},
	}
	invalidator := &mockInvalidator{}
	service := NewCourseService(repo, invalidator, validator.New(), zap.NewNop())

	course, err := service.Update(context.Background(), "c1", UpdateCourseRequest{
		Code:        "MATH101",
		Title:       "Algebra II",
		Credits:     4,
		Category:    "LECTURE",
		TheoryHours: 4,
		RequiredTag: &tag,
	})
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", course.Title)
	require.NotNil(t, course.RequiredTag)
	assert.Equal(t, "math", *course.RequiredTag)
	assert.Equal(t, 1, invalidator.calls)
}

func TestCourseServiceUpdateNotFound(t *testing.T) {
	service := NewCourseService(&mockCourseRepo{}, nil, validator.New(), zap.NewNop())

	_, err := service.Update(context.Background(), "missing", UpdateCourseRequest{
		Code:        "MATH101",
		Title:       "Algebra I",
		Category:    "LECTURE",
		TheoryHours: 3,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCourseServiceDeactivate(t *testing.T) {
	repo := &mockCourseRepo{
		items: map[string]*models.Course{
			"c1": {ID: "c1", Code: "MATH101", Active: true},
		},
	}
	invalidator := &mockInvalidator{}
	service := NewCourseService(repo, invalidator, validator.New(), zap.NewNop())

	require.NoError(t, service.Deactivate(context.Background(), "c1"))
	assert.Equal(t, []string{"c1"}, repo.deactivated)
	assert.Equal(t, 1, invalidator.calls)

	err := service.Deactivate(context.Background(), "missing")
	require.Error(t, err)
}
