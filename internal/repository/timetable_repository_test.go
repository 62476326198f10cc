package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))
	mock.ExpectExec("INSERT INTO timetable_versions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	version := &models.TimetableVersion{
		Snapshot: types.JSONText(`{"MONDAY":{}}`),
		Penalty:  2.5,
	}
	require.NoError(t, repo.CreateVersioned(context.Background(), nil, version))

	assert.Equal(t, 3, version.Version, "version comes from MAX+1")
	assert.NotEmpty(t, version.ID)
	assert.Equal(t, models.TimetableStatusDraft, version.Status, "defaults to draft")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreateVersionedNil(t *testing.T) {
	db, _, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	assert.Error(t, repo.CreateVersioned(context.Background(), nil, nil))
}

func TestTimetableRepositoryListVersions(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "version", "status", "penalty", "hard_violations", "created_at"}).
		AddRow("v2", 2, "ACTIVE", 1.0, 0, time.Now()).
		AddRow("v1", 1, "ARCHIVED", 4.0, 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, version, status, penalty, hard_violations, created_at FROM timetable_versions ORDER BY version DESC LIMIT 20")).
		WillReturnRows(rows)

	versions, err := repo.ListVersions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, models.TimetableStatusActive, versions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryActivateExclusive(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET status = $1, updated_at = $2 WHERE status = $3 AND id <> $4")).
		WithArgs("ARCHIVED", sqlmock.AnyArg(), "ACTIVE", "v2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("ACTIVE", sqlmock.AnyArg(), "v2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ActivateExclusive(context.Background(), "v2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateSnapshot(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET snapshot = $2, penalty = $3, hard_violations = $4, updated_at = $5 WHERE id = $1")).
		WithArgs("v1", sqlmock.AnyArg(), 3.0, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSnapshot(context.Background(), "v1", types.JSONText(`{}`), 3.0, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
