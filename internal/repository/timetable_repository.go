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

const timetableColumns = "id, version, status, snapshot, penalty, hard_violations, meta, created_by, created_at, updated_at"

// TimetableRepository persists versioned timetable snapshots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a snapshot assigning the next version number.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	if version == nil {
		return fmt.Errorf("timetable version payload is nil")
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.Status == "" {
		version.Status = models.TimetableStatusDraft
	}
	if len(version.Snapshot) == 0 {
		version.Snapshot = types.JSONText(`{}`)
	}
	if len(version.Meta) == 0 {
		version.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if version.CreatedAt.IsZero() {
		version.CreatedAt = now
	}
	version.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions`
	if err := sqlx.GetContext(ctx, target, &version.Version, nextVersionQuery); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetable_versions (id, version, status, snapshot, penalty, hard_violations, meta, created_by, created_at, updated_at)
VALUES (:id, :version, :status, :snapshot, :penalty, :hard_violations, :meta, :created_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, version); err != nil {
		return fmt.Errorf("insert timetable version: %w", err)
	}
	return nil
}

// ListVersions returns lightweight version metadata, newest first.
func (r *TimetableRepository) ListVersions(ctx context.Context, limit int) ([]models.TimetableVersionMeta, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT id, version, status, penalty, hard_violations, created_at FROM timetable_versions ORDER BY version DESC LIMIT %d", limit)
	var versions []models.TimetableVersionMeta
	if err := r.db.SelectContext(ctx, &versions, query); err != nil {
		return nil, fmt.Errorf("list timetable versions: %w", err)
	}
	return versions, nil
}

// FindByID loads a full snapshot by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableVersion, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_versions WHERE id = $1", timetableColumns)
	var version models.TimetableVersion
	if err := r.db.GetContext(ctx, &version, query, id); err != nil {
		return nil, err
	}
	return &version, nil
}

// FindActive loads the currently active snapshot, if any.
func (r *TimetableRepository) FindActive(ctx context.Context) (*models.TimetableVersion, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_versions WHERE status = $1 ORDER BY version DESC LIMIT 1", timetableColumns)
	var version models.TimetableVersion
	if err := r.db.GetContext(ctx, &version, query, models.TimetableStatusActive); err != nil {
		return nil, err
	}
	return &version, nil
}

// UpdateSnapshot rewrites the stored week and conflict counters of a version.
// Used after interactive moves against the active timetable.
func (r *TimetableRepository) UpdateSnapshot(ctx context.Context, id string, snapshot types.JSONText, penalty float64, hardViolations int) error {
	const query = `UPDATE timetable_versions SET snapshot = $2, penalty = $3, hard_violations = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, snapshot, penalty, hardViolations, time.Now().UTC()); err != nil {
		return fmt.Errorf("update timetable snapshot: %w", err)
	}
	return nil
}

// ActivateExclusive marks one version active and archives any other active
// version inside a single transaction.
func (r *TimetableRepository) ActivateExclusive(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate timetable: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	const archiveQuery = `UPDATE timetable_versions SET status = $1, updated_at = $2 WHERE status = $3 AND id <> $4`
	if _, err := tx.ExecContext(ctx, archiveQuery, models.TimetableStatusArchived, now, models.TimetableStatusActive, id); err != nil {
		return fmt.Errorf("archive previous timetable: %w", err)
	}

	const activateQuery = `UPDATE timetable_versions SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, activateQuery, models.TimetableStatusActive, now, id); err != nil {
		return fmt.Errorf("activate timetable: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activate timetable: %w", err)
	}
	return nil
}

// PruneOldVersions keeps the newest keep versions and deletes the rest,
// never touching the active one.
func (r *TimetableRepository) PruneOldVersions(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	const query = `DELETE FROM timetable_versions
WHERE status <> $1
  AND id NOT IN (SELECT id FROM timetable_versions ORDER BY version DESC LIMIT $2)`
	if _, err := r.db.ExecContext(ctx, query, models.TimetableStatusActive, keep); err != nil {
		return fmt.Errorf("prune timetable versions: %w", err)
	}
	return nil
}
