package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
)

type announcementRepoStub struct {
	created   []*models.Announcement
	updated   []*models.Announcement
	getItem   *models.Announcement
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	listItems []models.Announcement
	listTotal int
	listErr   error
}

func (s *announcementRepoStub) Create(ctx context.Context, announcement *models.Announcement) error {
	if s.createErr != nil {
		return s.createErr
	}
	announcement.ID = "ann-1"
	s.created = append(s.created, announcement)
	return nil
}

func (s *announcementRepoStub) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.getItem == nil {
		return nil, sql.ErrNoRows
	}
	item := *s.getItem
	return &item, nil
}

func (s *announcementRepoStub) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	return s.listItems, s.listTotal, s.listErr
}

func (s *announcementRepoStub) Update(ctx context.Context, announcement *models.Announcement) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, announcement)
	return nil
}

func (s *announcementRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteErr
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	return appErr.Fields
}

func TestAnnouncementServiceCreateRejectsBlankTitle(t *testing.T) {
	repo := &announcementRepoStub{}
	svc := NewAnnouncementService(repo, nil)
	actor := models.User{ID: "user-1", Role: models.RoleStudent}

	for _, title := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), actor, models.CreateAnnouncementInput{Title: title, Content: "body"})
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
		assert.Equal(t, map[string][]string{"title": {"can't be blank"}}, fieldsOf(t, err))
	}
	assert.Empty(t, repo.created)
}

func TestAnnouncementServiceCreateStartsUnpinned(t *testing.T) {
	repo := &announcementRepoStub{}
	svc := NewAnnouncementService(repo, nil)
	actor := models.User{ID: "user-1", Role: models.RoleStudent}

	created, err := svc.Create(context.Background(), actor, models.CreateAnnouncementInput{Title: "Welcome", Content: "First week"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", created.Title)
	assert.Equal(t, "First week", created.Content)
	assert.False(t, created.Pinned)
	assert.Equal(t, "user-1", created.PostedBy)
	require.Len(t, repo.created, 1)
}

func TestAnnouncementServiceGetNotFound(t *testing.T) {
	svc := NewAnnouncementService(&announcementRepoStub{}, nil)

	_, err := svc.Get(context.Background(), "gone")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAnnouncementServiceUpdateAppliesPartialFields(t *testing.T) {
	repo := &announcementRepoStub{getItem: &models.Announcement{ID: "ann-1", Title: "Welcome", Content: "old", Pinned: false}}
	svc := NewAnnouncementService(repo, nil)

	pinned := true
	updated, err := svc.Update(context.Background(), "ann-1", models.UpdateAnnouncementInput{Pinned: &pinned})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", updated.Title)
	assert.Equal(t, "old", updated.Content)
	assert.True(t, updated.Pinned)
	require.Len(t, repo.updated, 1)
}

func TestAnnouncementServiceUpdateRejectsBlankResultingTitle(t *testing.T) {
	repo := &announcementRepoStub{getItem: &models.Announcement{ID: "ann-1", Title: "Welcome"}}
	svc := NewAnnouncementService(repo, nil)

	blank := " "
	_, err := svc.Update(context.Background(), "ann-1", models.UpdateAnnouncementInput{Title: &blank})
	require.Error(t, err)
	assert.Equal(t, map[string][]string{"title": {"can't be blank"}}, fieldsOf(t, err))
	assert.Empty(t, repo.updated)
}

func TestAnnouncementServiceUpdateNotFound(t *testing.T) {
	svc := NewAnnouncementService(&announcementRepoStub{}, nil)

	title := "x"
	_, err := svc.Update(context.Background(), "gone", models.UpdateAnnouncementInput{Title: &title})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAnnouncementServiceDeleteNotFound(t *testing.T) {
	svc := NewAnnouncementService(&announcementRepoStub{deleteErr: sql.ErrNoRows}, nil)

	err := svc.Delete(context.Background(), "gone")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAnnouncementServiceListDefaultsPagination(t *testing.T) {
	repo := &announcementRepoStub{
		listItems: []models.Announcement{{ID: "ann-1", Pinned: true}, {ID: "ann-2"}},
		listTotal: 2,
	}
	svc := NewAnnouncementService(repo, nil)

	rows, pagination, err := svc.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}
