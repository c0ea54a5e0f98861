package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-course-api/internal/models"
	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
)

type materialStore interface {
	Create(ctx context.Context, material *models.Material) error
	GetByID(ctx context.Context, id string) (*models.Material, error)
	ListChildren(ctx context.Context, parentID *string) ([]models.Material, error)
	CollectSubtree(ctx context.Context, rootID string) ([]models.Material, error)
	DeleteSubtree(ctx context.Context, ids []string) error
}

type materialFileStorage interface {
	SaveStream(path string, r io.Reader) (string, error)
	Open(path string) (*os.File, error)
	Delete(path string) error
}

type materialSignedURLSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

type blobCleanupScheduler interface {
	Schedule(paths ...string)
}

type materialMetricsRecorder interface {
	ObserveSubtreeDelete(records int)
}

// MaterialUpload carries upload metadata and the byte stream.
type MaterialUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

// UploadFileMeta holds the caller-supplied fields for a new file node.
// Files always live under a folder parent.
type UploadFileMeta struct {
	ParentID    string
	Name        string
	Description string
}

// MaterialDownload bundles an open blob with metadata for streaming.
type MaterialDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
}

// MaterialServiceConfig holds upload limits and URL construction inputs.
type MaterialServiceConfig struct {
	MaxFileSize int64
	APIPrefix   string
}

// MaterialService manages the course material tree: folder and file nodes
// with parent/child invariants, cascading deletion, and blob cleanup
// coupled to record deletion.
type MaterialService struct {
	repo    materialStore
	storage materialFileStorage
	signer  materialSignedURLSigner
	cleanup blobCleanupScheduler
	metrics materialMetricsRecorder
	logger  *zap.Logger
	cfg     MaterialServiceConfig
}

// NewMaterialService constructs the service with defaults.
func NewMaterialService(repo materialStore, storage materialFileStorage, signer materialSignedURLSigner, cleanup blobCleanupScheduler, metrics materialMetricsRecorder, logger *zap.Logger, cfg MaterialServiceConfig) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 25 * 1024 * 1024
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &MaterialService{
		repo:    repo,
		storage: storage,
		signer:  signer,
		cleanup: cleanup,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// CreateFolder creates a folder node, at the tree root when no parent is
// given, otherwise under an existing folder parent.
func (s *MaterialService) CreateFolder(ctx context.Context, actor models.User, in models.CreateFolderInput) (*models.Material, error) {
	if fields := requirePresence(nil, "name", in.Name); len(fields) > 0 {
		return nil, appErrors.NewValidation(fields)
	}
	parentID := normalizeParentID(in.ParentID)
	if parentID != nil {
		if _, err := s.folderByID(ctx, *parentID, "parent folder not found"); err != nil {
			return nil, err
		}
	}
	material := &models.Material{
		ParentID:    parentID,
		Kind:        models.MaterialKindFolder,
		Name:        in.Name,
		Description: in.Description,
		UploadedBy:  actor.ID,
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create folder")
	}
	s.logger.Info("folder created", zap.String("material_id", material.ID), zap.String("uploaded_by", actor.ID))
	return material, nil
}

// UploadFile stores the byte stream and creates a file node under an
// existing folder parent. When the record insert fails after the blob was
// written, the blob is removed again so no orphan survives the request.
func (s *MaterialService) UploadFile(ctx context.Context, actor models.User, meta UploadFileMeta, upload MaterialUpload) (*models.Material, error) {
	fields := requirePresence(nil, "name", meta.Name)
	fields = requirePresence(fields, "parent_id", meta.ParentID)
	if upload.Content == nil {
		if fields == nil {
			fields = make(map[string][]string, 1)
		}
		fields["file"] = append(fields["file"], msgBlank)
	}
	if len(fields) > 0 {
		return nil, appErrors.NewValidation(fields)
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the maximum size of %d bytes", s.cfg.MaxFileSize))
	}
	parent, err := s.folderByID(ctx, meta.ParentID, "parent folder not found")
	if err != nil {
		return nil, err
	}

	path := s.storagePath(upload.Filename, meta.Name)
	stored, err := s.storage.SaveStream(path, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	material := &models.Material{
		ParentID:    &parent.ID,
		Kind:        models.MaterialKindFile,
		Name:        meta.Name,
		Description: meta.Description,
		UploadedBy:  actor.ID,
		FilePath:    stored,
		FileSize:    upload.Size,
		MimeType:    upload.MimeType,
	}
	if err := s.repo.Create(ctx, material); err != nil {
		if cleanupErr := s.storage.Delete(stored); cleanupErr != nil {
			s.logger.Warn("failed to remove blob after insert failure", zap.String("path", stored), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create file record")
	}
	s.logger.Info("file uploaded",
		zap.String("material_id", material.ID),
		zap.String("path", stored),
		zap.Int64("size", upload.Size),
		zap.String("uploaded_by", actor.ID))
	return material, nil
}

// Get returns a node by id.
func (s *MaterialService) Get(ctx context.Context, id string) (*models.Material, error) {
	material, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get material")
	}
	return material, nil
}

// ListRoots returns the top-level nodes of the tree.
func (s *MaterialService) ListRoots(ctx context.Context) ([]models.Material, error) {
	roots, err := s.repo.ListChildren(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	return roots, nil
}

// ListChildren returns the immediate children of a folder node.
func (s *MaterialService) ListChildren(ctx context.Context, folderID string) ([]models.Material, error) {
	folder, err := s.folderByID(ctx, folderID, "material not found")
	if err != nil {
		return nil, err
	}
	children, err := s.repo.ListChildren(ctx, &folder.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list material children")
	}
	return children, nil
}

// Delete removes the node and its entire subtree. All records go in one
// transaction; blob removal runs after the commit and is retried until it
// sticks, so a store failure leaves both records and blobs untouched.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	subtree, err := s.repo.CollectSubtree(ctx, node.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect material subtree")
	}

	ids := make([]string, 0, len(subtree))
	var blobPaths []string
	for _, descendant := range subtree {
		ids = append(ids, descendant.ID)
		if descendant.Kind.IsFile() && descendant.FilePath != "" {
			blobPaths = append(blobPaths, descendant.FilePath)
		}
	}
	if err := s.repo.DeleteSubtree(ctx, ids); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material subtree")
	}
	if len(blobPaths) > 0 && s.cleanup != nil {
		s.cleanup.Schedule(blobPaths...)
	}
	if s.metrics != nil {
		s.metrics.ObserveSubtreeDelete(len(ids))
	}
	s.logger.Info("material subtree deleted",
		zap.String("material_id", node.ID),
		zap.Int("records", len(ids)),
		zap.Int("blobs", len(blobPaths)))
	return nil
}

// DownloadURL returns a signed, expiring download link for a file node.
func (s *MaterialService) DownloadURL(ctx context.Context, id string) (string, time.Time, error) {
	node, err := s.fileByID(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	token, expiresAt, err := s.signer.Generate(node.ID, node.FilePath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	downloadURL := fmt.Sprintf("%s/materials/%s/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), node.ID, url.QueryEscape(token))
	return downloadURL, expiresAt, nil
}

// Download opens the blob of a file node after verifying the token binds
// this node and its stored path.
func (s *MaterialService) Download(ctx context.Context, id, token string) (*MaterialDownload, error) {
	node, err := s.fileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tokenID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil || tokenID != node.ID || relPath != node.FilePath {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.storage.Open(node.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return &MaterialDownload{
		File:      file,
		Filename:  downloadFilename(node),
		MimeType:  node.MimeType,
		SizeBytes: node.FileSize,
	}, nil
}

// folderByID loads a node and requires it to be a folder.
func (s *MaterialService) folderByID(ctx context.Context, id, missingMsg string) (*models.Material, error) {
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, missingMsg)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if !node.Kind.IsFolder() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRelation, "parent must be a folder")
	}
	return node, nil
}

// fileByID loads a node and requires it to be a file.
func (s *MaterialService) fileByID(ctx context.Context, id string) (*models.Material, error) {
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if !node.Kind.IsFile() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRelation, "download is only available for files")
	}
	return node, nil
}

// storagePath builds a collision-resistant blob path under materials/.
func (s *MaterialService) storagePath(originalFilename, fallbackName string) string {
	source := originalFilename
	if strings.TrimSpace(source) == "" {
		source = fallbackName
	}
	ext := strings.ToLower(filepath.Ext(source))
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base = sanitizeFilename(base)
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("materials/%s_%d_%s%s", base, time.Now().Unix(), randomHex(4), ext)
}

func normalizeParentID(parentID *string) *string {
	if parentID == nil || strings.TrimSpace(*parentID) == "" {
		return nil
	}
	return parentID
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '.':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-_")
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

func downloadFilename(node *models.Material) string {
	name := node.Name
	if filepath.Ext(name) == "" {
		if ext := filepath.Ext(node.FilePath); ext != "" {
			name += ext
		}
	}
	return name
}
