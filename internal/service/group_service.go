package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
)

type groupRepository interface {
	Replace(ctx context.Context, assignment *models.GroupAssignment) error
	GetByStudent(ctx context.Context, studentID string) (*models.GroupAssignment, error)
	ListMembersByLeader(ctx context.Context, leaderID string) ([]models.GroupMember, error)
}

type groupUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// GroupService maintains the leader-student assignment registry. A student
// holds at most one leader at a time; assigning a new leader atomically
// supersedes the previous assignment whoever owned it.
type GroupService struct {
	repo      groupRepository
	users     groupUserReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs the service.
func NewGroupService(repo groupRepository, users groupUserReader, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, users: users, validator: validate, logger: logger}
}

// Assign makes the leader the student's current group leader.
func (s *GroupService) Assign(ctx context.Context, in models.AssignGroupInput) (*models.GroupAssignment, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if in.LeaderID == in.StudentID {
		return nil, appErrors.Clone(appErrors.ErrInvalidRelation, "leader and student must be different users")
	}
	leader, err := s.users.FindByID(ctx, in.LeaderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leader not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leader")
	}
	if !leader.Role.CanLeadGroup() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRelation, "leader must be a staff member")
	}
	student, err := s.users.FindByID(ctx, in.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Role.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRelation, "assignee must be a student")
	}
	assignment := &models.GroupAssignment{LeaderID: leader.ID, StudentID: student.ID}
	if err := s.repo.Replace(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign group")
	}
	s.logger.Info("group assignment replaced",
		zap.String("leader_id", leader.ID),
		zap.String("student_id", student.ID))
	return assignment, nil
}

// ListStudents returns the roster currently assigned to the leader.
func (s *GroupService) ListStudents(ctx context.Context, leaderID string) ([]models.GroupMember, error) {
	if _, err := s.users.FindByID(ctx, leaderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leader not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leader")
	}
	members, err := s.repo.ListMembersByLeader(ctx, leaderID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group members")
	}
	return members, nil
}

// LeaderOf returns the student's current assignment.
func (s *GroupService) LeaderOf(ctx context.Context, studentID string) (*models.GroupAssignment, error) {
	assignment, err := s.repo.GetByStudent(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group assignment")
	}
	return assignment, nil
}
