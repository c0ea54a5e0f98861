package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
)

type pointRepository interface {
	Create(ctx context.Context, entry *models.PointEntry) error
	GetByID(ctx context.Context, id string) (*models.PointEntry, error)
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.PointEntry, error)
	SumByStudent(ctx context.Context, studentID string) (int, error)
}

type pointsUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// PointsService manages the manual experience point ledger.
type PointsService struct {
	repo      pointRepository
	users     pointsUserReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPointsService constructs the service.
func NewPointsService(repo pointRepository, users pointsUserReader, validate *validator.Validate, logger *zap.Logger) *PointsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PointsService{repo: repo, users: users, validator: validate, logger: logger}
}

// Grant awards points to a student. The amount check runs before the
// privilege check so a non-positive amount fails validation for every
// actor, whatever their role.
func (s *PointsService) Grant(ctx context.Context, actor models.User, in models.GrantPointsInput) (*models.PointEntry, error) {
	if in.Amount <= 0 {
		return nil, appErrors.NewValidation(map[string][]string{"amount": {msgAmountPositive}})
	}
	if !actor.Role.CanGrantPoints() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	recipient, err := s.users.FindByID(ctx, in.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !recipient.Role.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRelation, "points can only be granted to students")
	}
	entry := &models.PointEntry{
		StudentID: recipient.ID,
		Amount:    in.Amount,
		Reason:    in.Reason,
		GivenBy:   actor.ID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create point entry")
	}
	s.logger.Info("points granted",
		zap.String("point_id", entry.ID),
		zap.String("student_id", entry.StudentID),
		zap.Int("amount", entry.Amount),
		zap.String("given_by", actor.ID))
	return entry, nil
}

// Revoke permanently removes a point entry. Admins revoke any entry;
// everyone else only entries they granted themselves.
func (s *PointsService) Revoke(ctx context.Context, actor models.User, pointID string) error {
	entry, err := s.repo.GetByID(ctx, pointID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "point entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load point entry")
	}
	if !actor.Role.CanRevokePoint(entry.GivenBy == actor.ID) {
		return appErrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "point entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete point entry")
	}
	s.logger.Info("points revoked", zap.String("point_id", pointID), zap.String("revoked_by", actor.ID))
	return nil
}

// ListByStudent returns a student's entries, newest first, with a ledger
// summary.
func (s *PointsService) ListByStudent(ctx context.Context, studentID string) ([]models.PointEntry, *models.PointSummary, error) {
	if _, err := s.users.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	entries, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list point entries")
	}
	total, err := s.repo.SumByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum point entries")
	}
	summary := &models.PointSummary{StudentID: studentID, Total: total, Entries: len(entries)}
	return entries, summary, nil
}
