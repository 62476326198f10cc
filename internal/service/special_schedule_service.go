package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type specialScheduleRepository interface {
	List(ctx context.Context, filter models.SpecialScheduleFilter) ([]models.SpecialSchedule, int, error)
	FindByID(ctx context.Context, id string) (*models.SpecialSchedule, error)
	Create(ctx context.Context, schedule *models.SpecialSchedule) error
	Delete(ctx context.Context, id string) error
}

// CreateSpecialScheduleRequest represents payload for creating special schedules.
type CreateSpecialScheduleRequest struct {
	Title     string   `json:"title" validate:"required,max=255"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Groups    []string `json:"groups" validate:"omitempty,dive,max=100"`
}

// SpecialScheduleService orchestrates special schedule operations.
type SpecialScheduleService struct {
	repo        specialScheduleRepository
	invalidator rosterInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSpecialScheduleService constructs a SpecialScheduleService.
func NewSpecialScheduleService(repo specialScheduleRepository, invalidator rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *SpecialScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpecialScheduleService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns special schedules plus pagination data.
func (s *SpecialScheduleService) List(ctx context.Context, filter models.SpecialScheduleFilter) ([]models.SpecialSchedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list special schedules")
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
	return schedules, pagination, nil
}

// Create registers a new special schedule window.
func (s *SpecialScheduleService) Create(ctx context.Context, req CreateSpecialScheduleRequest) (*models.SpecialSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid special schedule payload")
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}

	groups := make([]string, 0, len(req.Groups))
	for _, g := range req.Groups {
		if trimmed := strings.TrimSpace(g); trimmed != "" {
			groups = append(groups, trimmed)
		}
	}
	payload, err := json.Marshal(groups)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group labels")
	}

	schedule := &models.SpecialSchedule{
		Title:     strings.TrimSpace(req.Title),
		StartDate: start,
		EndDate:   end,
		Groups:    types.JSONText(payload),
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create special schedule")
	}
	s.invalidate(ctx)
	return schedule, nil
}

// Delete removes a special schedule window.
func (s *SpecialScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "special schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load special schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete special schedule")
	}
	s.invalidate(ctx)
	return nil
}

func (s *SpecialScheduleService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateRoster(ctx)
	}
}
