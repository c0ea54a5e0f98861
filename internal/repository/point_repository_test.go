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

func newPointMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPointRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newPointMock(t)
	defer cleanup()
	repo := NewPointRepository(db)

	mock.ExpectExec("INSERT INTO points").
		WithArgs(sqlmock.AnyArg(), "student-1", 10, "helped peers", "staff-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.PointEntry{StudentID: "student-1", Amount: 10, Reason: "helped peers", GivenBy: "staff-1"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newPointMock(t)
	defer cleanup()
	repo := NewPointRepository(db)

	mock.ExpectExec("DELETE FROM points WHERE id").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newPointMock(t)
	defer cleanup()
	repo := NewPointRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "amount", "reason", "given_by", "created_at"}).
		AddRow("pt-2", "student-1", 5, "quiz", "staff-1", now).
		AddRow("pt-1", "student-1", 10, "project", "staff-2", now.Add(-time.Hour))
	mock.ExpectQuery("FROM points").
		WithArgs("student-1").
		WillReturnRows(rows)

	entries, err := repo.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "pt-2", entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepositorySumByStudent(t *testing.T) {
	db, mock, cleanup := newPointMock(t)
	defer cleanup()
	repo := NewPointRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM points WHERE student_id = $1")).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(15))

	total, err := repo.SumByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepositoryTotalsByStudents(t *testing.T) {
	db, mock, cleanup := newPointMock(t)
	defer cleanup()
	repo := NewPointRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "total"}).
		AddRow("student-1", 15).
		AddRow("student-2", 3)
	mock.ExpectQuery("GROUP BY student_id").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	totals, err := repo.TotalsByStudents(context.Background(), []string{"student-1", "student-2", "student-3"})
	require.NoError(t, err)
	assert.Equal(t, 15, totals["student-1"])
	assert.Equal(t, 3, totals["student-2"])
	_, ok := totals["student-3"]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointRepositoryTotalsByStudentsEmptyInput(t *testing.T) {
	db, _, cleanup := newPointMock(t)
	defer cleanup()
	repo := NewPointRepository(db)

	totals, err := repo.TotalsByStudents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, totals)
}
