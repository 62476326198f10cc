package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/campusops/timetable-api/internal/models"
)

const specialScheduleColumns = "id, title, start_date, end_date, groups, created_at, updated_at"

// SpecialScheduleRepository manages persistence for special schedules.
type SpecialScheduleRepository struct {
	db *sqlx.DB
}

// NewSpecialScheduleRepository constructs a SpecialScheduleRepository.
func NewSpecialScheduleRepository(db *sqlx.DB) *SpecialScheduleRepository {
	return &SpecialScheduleRepository{db: db}
}

// List returns special schedules inside the optional date window.
func (r *SpecialScheduleRepository) List(ctx context.Context, filter models.SpecialScheduleFilter) ([]models.SpecialSchedule, int, error) {
	base := "FROM special_schedules WHERE 1=1"
	var args []interface{}

	if filter.From != nil {
		base += fmt.Sprintf(" AND end_date >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		base += fmt.Sprintf(" AND start_date <= $%d", len(args)+1)
		args = append(args, *filter.To)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_date LIMIT %d OFFSET %d", specialScheduleColumns, base, size, offset)
	var schedules []models.SpecialSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list special schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count special schedules: %w", err)
	}

	return schedules, total, nil
}

// ListOverlapping returns special schedules intersecting the date range,
// the generator's input for exclusion windows.
func (r *SpecialScheduleRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]models.SpecialSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM special_schedules WHERE end_date >= $1 AND start_date <= $2 ORDER BY start_date", specialScheduleColumns)
	var schedules []models.SpecialSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, from, to); err != nil {
		return nil, fmt.Errorf("list overlapping special schedules: %w", err)
	}
	return schedules, nil
}

// FindByID fetches a special schedule by ID.
func (r *SpecialScheduleRepository) FindByID(ctx context.Context, id string) (*models.SpecialSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM special_schedules WHERE id = $1", specialScheduleColumns)
	var schedule models.SpecialSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Create inserts a new special schedule.
func (r *SpecialScheduleRepository) Create(ctx context.Context, schedule *models.SpecialSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if len(schedule.Groups) == 0 {
		schedule.Groups = types.JSONText(`[]`)
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO special_schedules (id, title, start_date, end_date, groups, created_at, updated_at)
		VALUES (:id, :title, :start_date, :end_date, :groups, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create special schedule: %w", err)
	}
	return nil
}

// Delete removes a special schedule.
func (r *SpecialScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM special_schedules WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete special schedule: %w", err)
	}
	return nil
}
