package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-course-api/internal/models"
)

// GroupRepository persists leader-student assignments. The unique
// constraint on student_id backs the at-most-one-leader invariant.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Replace installs the assignment as the student's current one in a single
// atomic statement. Any prior assignment for the student, whichever leader
// owned it, is superseded in place. Concurrent calls serialize on the
// student_id unique constraint, so the last commit wins and the student
// never holds two leaders.
func (r *GroupRepository) Replace(ctx context.Context, assignment *models.GroupAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO group_assignments (id, leader_id, student_id, assigned_at)
		VALUES (:id, :leader_id, :student_id, :assigned_at)
		ON CONFLICT (student_id) DO UPDATE
		SET id = EXCLUDED.id,
		    leader_id = EXCLUDED.leader_id,
		    assigned_at = EXCLUDED.assigned_at`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("replace group assignment: %w", err)
	}
	return nil
}

// GetByStudent returns the student's current assignment.
func (r *GroupRepository) GetByStudent(ctx context.Context, studentID string) (*models.GroupAssignment, error) {
	const query = `SELECT id, leader_id, student_id, assigned_at FROM group_assignments WHERE student_id = $1`
	var assignment models.GroupAssignment
	if err := r.db.GetContext(ctx, &assignment, query, studentID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListMembersByLeader returns the roster of students currently assigned to
// the leader, joined with their profiles, ordered by name for stable
// output.
func (r *GroupRepository) ListMembersByLeader(ctx context.Context, leaderID string) ([]models.GroupMember, error) {
	const query = `SELECT g.id AS assignment_id, g.student_id, u.full_name, u.email, g.assigned_at
FROM group_assignments g
JOIN users u ON u.id = g.student_id
WHERE g.leader_id = $1
ORDER BY u.full_name ASC`
	var members []models.GroupMember
	if err := r.db.SelectContext(ctx, &members, query, leaderID); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}
