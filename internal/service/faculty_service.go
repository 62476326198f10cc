package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, member *models.Faculty) error
	Update(ctx context.Context, member *models.Faculty) error
	Deactivate(ctx context.Context, id string) error
}

// AvailabilityRequest is the request shape for faculty availability.
type AvailabilityRequest struct {
	Days    []int            `json:"days" validate:"omitempty,dive,min=1,max=7"`
	Blocked []models.SlotRef `json:"blocked" validate:"omitempty,dive"`
}

// CreateFacultyRequest represents payload for creating faculty.
type CreateFacultyRequest struct {
	Name           string               `json:"name" validate:"required,max=255"`
	Email          *string              `json:"email" validate:"omitempty,email"`
	Expertise      []string             `json:"expertise" validate:"omitempty,dive,max=100"`
	MaxWeeklyHours int                  `json:"max_weekly_hours" validate:"min=0,max=80"`
	Availability   *AvailabilityRequest `json:"availability"`
}

// UpdateFacultyRequest represents payload for updating faculty.
type UpdateFacultyRequest struct {
	Name           string               `json:"name" validate:"required,max=255"`
	Email          *string              `json:"email" validate:"omitempty,email"`
	Expertise      []string             `json:"expertise" validate:"omitempty,dive,max=100"`
	MaxWeeklyHours int                  `json:"max_weekly_hours" validate:"min=0,max=80"`
	Availability   *AvailabilityRequest `json:"availability"`
	Active         *bool                `json:"active"`
}

// FacultyService orchestrates faculty operations.
type FacultyService struct {
	repo        facultyRepository
	invalidator rosterInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFacultyService constructs a FacultyService.
func NewFacultyService(repo facultyRepository, invalidator rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns faculty plus pagination data.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	faculty, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
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
	return faculty, pagination, nil
}

// Get returns a faculty member by id.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty member")
	}
	return member, nil
}

// Create registers a new faculty record.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	if req.Email != nil {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty email uniqueness")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
	}

	member := &models.Faculty{
		Name:           strings.TrimSpace(req.Name),
		Email:          normalizeOptional(req.Email),
		MaxWeeklyHours: req.MaxWeeklyHours,
		Active:         true,
	}
	var err error
	if member.Expertise, err = encodeTags(req.Expertise); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expertise tags")
	}
	if member.Availability, err = encodeAvailability(req.Availability); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability")
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty member")
	}
	s.invalidate(ctx)
	return member, nil
}

// Update modifies an existing faculty record.
func (s *FacultyService) Update(ctx context.Context, id string, req UpdateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty member")
	}

	if req.Email != nil {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty email uniqueness")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
	}

	member.Name = strings.TrimSpace(req.Name)
	member.Email = normalizeOptional(req.Email)
	member.MaxWeeklyHours = req.MaxWeeklyHours
	if member.Expertise, err = encodeTags(req.Expertise); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expertise tags")
	}
	if member.Availability, err = encodeAvailability(req.Availability); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability")
	}
	if req.Active != nil {
		member.Active = *req.Active
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty member")
	}
	s.invalidate(ctx)
	return member, nil
}

// Deactivate marks a faculty member inactive.
func (s *FacultyService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty member not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty member")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate faculty member")
	}
	s.invalidate(ctx)
	return nil
}

func (s *FacultyService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateRoster(ctx)
	}
}

func encodeTags(tags []string) (types.JSONText, error) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.ToLower(strings.TrimSpace(tag))
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	payload, err := json.Marshal(cleaned)
	if err != nil {
		return nil, err
	}
	return types.JSONText(payload), nil
}

func encodeAvailability(req *AvailabilityRequest) (types.JSONText, error) {
	window := models.FacultyAvailability{}
	if req != nil {
		window.Days = req.Days
		window.Blocked = req.Blocked
	}
	payload, err := json.Marshal(window)
	if err != nil {
		return nil, err
	}
	return types.JSONText(payload), nil
}
