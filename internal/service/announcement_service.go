package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
)

type announcementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementService handles the announcement board. Any authenticated
// user may post, edit and delete; there is deliberately no ownership
// check on these operations.
type AnnouncementService struct {
	repo   announcementRepository
	logger *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, logger: logger}
}

// Create posts a new announcement for the actor. New announcements always
// start unpinned.
func (s *AnnouncementService) Create(ctx context.Context, actor models.User, in models.CreateAnnouncementInput) (*models.Announcement, error) {
	if fields := requirePresence(nil, "title", in.Title); len(fields) > 0 {
		return nil, appErrors.NewValidation(fields)
	}
	announcement := &models.Announcement{
		Title:    in.Title,
		Content:  in.Content,
		Pinned:   false,
		PostedBy: actor.ID,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	s.logger.Info("announcement created", zap.String("announcement_id", announcement.ID), zap.String("posted_by", actor.ID))
	return announcement, nil
}

// Get returns an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get announcement")
	}
	return announcement, nil
}

// List returns a page of announcements, pinned entries first, newest next.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Update applies the provided fields to an existing announcement. Fields
// left nil keep their stored value; the resulting title must stay
// non-blank.
func (s *AnnouncementService) Update(ctx context.Context, id string, in models.UpdateAnnouncementInput) (*models.Announcement, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	if in.Title != nil {
		existing.Title = *in.Title
	}
	if in.Content != nil {
		existing.Content = *in.Content
	}
	if in.Pinned != nil {
		existing.Pinned = *in.Pinned
	}
	if fields := requirePresence(nil, "title", existing.Title); len(fields) > 0 {
		return nil, appErrors.NewValidation(fields)
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return existing, nil
}

// Delete removes an announcement by id.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}
