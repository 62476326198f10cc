package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Deactivate(ctx context.Context, id string) error
}

// rosterInvalidator is notified whenever reference data changes so dependent
// timetable state can be re-evaluated.
type rosterInvalidator interface {
	InvalidateRoster(ctx context.Context)
}

// CreateCourseRequest represents payload for creating courses.
type CreateCourseRequest struct {
	Code           string  `json:"code" validate:"required,max=32"`
	Title          string  `json:"title" validate:"required,max=255"`
	Credits        int     `json:"credits" validate:"min=0,max=30"`
	Category       string  `json:"category" validate:"required,oneof=LECTURE LAB SEMINAR WORKSHOP"`
	TheoryHours    int     `json:"theory_hours" validate:"min=0,max=40"`
	PracticalHours int     `json:"practical_hours" validate:"min=0,max=40"`
	ExpectedSize   int     `json:"expected_size" validate:"min=0,max=2000"`
	RequiredTag    *string `json:"required_tag" validate:"omitempty,max=100"`
	GroupLabel     *string `json:"group_label" validate:"omitempty,max=100"`
}

// UpdateCourseRequest represents payload for updating courses.
type UpdateCourseRequest struct {
	Code           string  `json:"code" validate:"required,max=32"`
	Title          string  `json:"title" validate:"required,max=255"`
	Credits        int     `json:"credits" validate:"min=0,max=30"`
	Category       string  `json:"category" validate:"required,oneof=LECTURE LAB SEMINAR WORKSHOP"`
	TheoryHours    int     `json:"theory_hours" validate:"min=0,max=40"`
	PracticalHours int     `json:"practical_hours" validate:"min=0,max=40"`
	ExpectedSize   int     `json:"expected_size" validate:"min=0,max=2000"`
	RequiredTag    *string `json:"required_tag" validate:"omitempty,max=100"`
	GroupLabel     *string `json:"group_label" validate:"omitempty,max=100"`
	Active         *bool   `json:"active"`
}

// CourseService orchestrates course operations.
type CourseService struct {
	repo        courseRepository
	invalidator rosterInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, invalidator rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns courses plus pagination data.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return courses, pagination, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a new course record.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if req.TheoryHours+req.PracticalHours <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course requires at least one weekly hour")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already used")
	}

	course := &models.Course{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Title:          strings.TrimSpace(req.Title),
		Credits:        req.Credits,
		Category:       models.CourseCategory(req.Category),
		TheoryHours:    req.TheoryHours,
		PracticalHours: req.PracticalHours,
		ExpectedSize:   req.ExpectedSize,
		RequiredTag:    normalizeOptional(req.RequiredTag),
		GroupLabel:     normalizeOptional(req.GroupLabel),
		Active:         true,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidate(ctx)
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if req.TheoryHours+req.PracticalHours <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course requires at least one weekly hour")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already used")
	}

	course.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	course.Title = strings.TrimSpace(req.Title)
	course.Credits = req.Credits
	course.Category = models.CourseCategory(req.Category)
	course.TheoryHours = req.TheoryHours
	course.PracticalHours = req.PracticalHours
	course.ExpectedSize = req.ExpectedSize
	course.RequiredTag = normalizeOptional(req.RequiredTag)
	course.GroupLabel = normalizeOptional(req.GroupLabel)
	if req.Active != nil {
		course.Active = *req.Active
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidate(ctx)
	return course, nil
}

// Deactivate marks a course inactive so future generations skip it.
func (s *CourseService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate course")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateRoster(ctx)
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
