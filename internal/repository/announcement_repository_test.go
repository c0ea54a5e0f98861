package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-course-api/internal/models"
)

func newAnnouncementMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAnnouncementRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newAnnouncementMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec("INSERT INTO announcements").
		WithArgs(sqlmock.AnyArg(), "Welcome", "First week plan", false, "user-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	announcement := &models.Announcement{Title: "Welcome", Content: "First week plan", PostedBy: "user-1"}
	require.NoError(t, repo.Create(context.Background(), announcement))
	assert.NotEmpty(t, announcement.ID)
	assert.False(t, announcement.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newAnnouncementMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "content", "pinned", "posted_by", "created_at", "updated_at"}).
		AddRow("ann-1", "Welcome", "First week plan", true, "user-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content, pinned, posted_by, created_at, updated_at FROM announcements WHERE id = $1")).
		WithArgs("ann-1").
		WillReturnRows(rows)

	announcement, err := repo.GetByID(context.Background(), "ann-1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", announcement.Title)
	assert.True(t, announcement.Pinned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryListOrdersPinnedFirst(t *testing.T) {
	db, mock, cleanup := newAnnouncementMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "content", "pinned", "posted_by", "created_at", "updated_at"}).
		AddRow("ann-2", "Exam schedule", "", true, "user-1", now, now).
		AddRow("ann-1", "Welcome", "First week plan", false, "user-1", now.Add(-time.Hour), now)
	mock.ExpectQuery("ORDER BY pinned DESC, created_at DESC").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM announcements").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	announcements, total, err := repo.List(context.Background(), models.AnnouncementFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, announcements, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, "ann-2", announcements[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newAnnouncementMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec("UPDATE announcements SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Announcement{ID: "gone", Title: "x"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newAnnouncementMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec("DELETE FROM announcements WHERE id").
		WithArgs("ann-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "ann-1"))

	mock.ExpectExec("DELETE FROM announcements WHERE id").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
