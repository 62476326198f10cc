package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// CommitmentRepository manages externally booked faculty/room slots.
type CommitmentRepository struct {
	db *sqlx.DB
}

// NewCommitmentRepository constructs a CommitmentRepository.
func NewCommitmentRepository(db *sqlx.DB) *CommitmentRepository {
	return &CommitmentRepository{db: db}
}

// ListAll returns every commitment, the detector's cross-timetable input.
func (r *CommitmentRepository) ListAll(ctx context.Context) ([]models.Commitment, error) {
	const query = `SELECT id, day_of_week, slot_index, faculty_id, room_id, label, created_at FROM commitments ORDER BY day_of_week, slot_index`
	var commitments []models.Commitment
	if err := r.db.SelectContext(ctx, &commitments, query); err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	return commitments, nil
}

// Create inserts a new commitment.
func (r *CommitmentRepository) Create(ctx context.Context, commitment *models.Commitment) error {
	if commitment.ID == "" {
		commitment.ID = uuid.NewString()
	}
	if commitment.CreatedAt.IsZero() {
		commitment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO commitments (id, day_of_week, slot_index, faculty_id, room_id, label, created_at)
		VALUES (:id, :day_of_week, :slot_index, :faculty_id, :room_id, :label, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, commitment); err != nil {
		return fmt.Errorf("create commitment: %w", err)
	}
	return nil
}

// Delete removes a commitment.
func (r *CommitmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM commitments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete commitment: %w", err)
	}
	return nil
}
