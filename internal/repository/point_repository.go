package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-course-api/internal/models"
)

// PointRepository provides persistence for the manual point ledger.
type PointRepository struct {
	db *sqlx.DB
}

// NewPointRepository creates the repository.
func NewPointRepository(db *sqlx.DB) *PointRepository {
	return &PointRepository{db: db}
}

// Create inserts a new point entry.
func (r *PointRepository) Create(ctx context.Context, entry *models.PointEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO points (id, student_id, amount, reason, given_by, created_at)
VALUES (:id, :student_id, :amount, :reason, :given_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create point entry: %w", err)
	}
	return nil
}

// GetByID returns a point entry by identifier.
func (r *PointRepository) GetByID(ctx context.Context, id string) (*models.PointEntry, error) {
	const query = `SELECT id, student_id, amount, reason, given_by, created_at FROM points WHERE id = $1`
	var entry models.PointEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes a point entry permanently.
func (r *PointRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM points WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete point entry: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByStudent returns a student's entries, newest first.
func (r *PointRepository) ListByStudent(ctx context.Context, studentID string) ([]models.PointEntry, error) {
	const query = `SELECT id, student_id, amount, reason, given_by, created_at FROM points
WHERE student_id = $1 ORDER BY created_at DESC`
	var entries []models.PointEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list points by student: %w", err)
	}
	return entries, nil
}

// SumByStudent returns the total amount awarded to a student.
func (r *PointRepository) SumByStudent(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM points WHERE student_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID); err != nil {
		return 0, fmt.Errorf("sum points by student: %w", err)
	}
	return total, nil
}

// TotalsByStudents returns per-student totals for the given students.
// Students without entries are absent from the map.
func (r *PointRepository) TotalsByStudents(ctx context.Context, studentIDs []string) (map[string]int, error) {
	totals := make(map[string]int, len(studentIDs))
	if len(studentIDs) == 0 {
		return totals, nil
	}
	const query = `SELECT student_id, COALESCE(SUM(amount), 0) AS total FROM points
WHERE student_id = ANY($1) GROUP BY student_id`
	rows := []struct {
		StudentID string `db:"student_id"`
		Total     int    `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("sum points by students: %w", err)
	}
	for _, row := range rows {
		totals[row.StudentID] = row.Total
	}
	return totals, nil
}
