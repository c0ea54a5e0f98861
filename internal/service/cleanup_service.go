package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus-course-api/pkg/errors"
	"github.com/noah-isme/campus-course-api/pkg/jobs"
)

const blobDeleteJobType = "material.blob.delete"

const journalWriteTimeout = 5 * time.Second

type cleanupJournal interface {
	Journal(ctx context.Context, paths ...string) error
	Resolve(ctx context.Context, path string) error
	Pending(ctx context.Context) ([]string, error)
}

type cleanupBlobStorage interface {
	Delete(path string) error
}

type cleanupMetricsRecorder interface {
	ObserveBlobDeleted()
	ObserveBlobCleanupFailure()
	ObserveCleanupSweep(pending int)
}

// CleanupConfig tunes the blob deletion worker pool.
type CleanupConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// CleanupService removes blobs whose records are already gone. Deletions
// are idempotent and retried, and every scheduled path is journaled first,
// so a crash between record commit and blob cleanup leaves a trail the
// startup sweep can recover.
type CleanupService struct {
	journal cleanupJournal
	storage cleanupBlobStorage
	metrics cleanupMetricsRecorder
	logger  *zap.Logger
	queue   *jobs.Queue
}

// NewCleanupService constructs the service and its retry queue.
func NewCleanupService(journal cleanupJournal, storage cleanupBlobStorage, metrics cleanupMetricsRecorder, logger *zap.Logger, cfg CleanupConfig) *CleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CleanupService{journal: journal, storage: storage, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("blob-cleanup", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the deletion workers.
func (s *CleanupService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop shuts the workers down.
func (s *CleanupService) Stop() {
	s.queue.Stop()
}

// Schedule journals the paths and queues their deletion. The journal write
// runs on a background context so an already-answered request cannot
// cancel it.
func (s *CleanupService) Schedule(paths ...string) {
	if len(paths) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()
	if err := s.journal.Journal(ctx, paths...); err != nil {
		s.logger.Warn("failed to journal blob paths", zap.Int("paths", len(paths)), zap.Error(err))
	}
	for _, path := range paths {
		s.enqueue(path)
	}
}

// Sweep re-queues every journaled path. Run at startup it recovers blobs
// orphaned by a crash between record commit and blob cleanup.
func (s *CleanupService) Sweep(ctx context.Context) error {
	paths, err := s.journal.Pending(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read cleanup journal")
	}
	if s.metrics != nil {
		s.metrics.ObserveCleanupSweep(len(paths))
	}
	for _, path := range paths {
		s.enqueue(path)
	}
	if len(paths) > 0 {
		s.logger.Info("cleanup sweep scheduled", zap.Int("paths", len(paths)))
	}
	return nil
}

func (s *CleanupService) enqueue(path string) {
	job := jobs.Job{ID: uuid.NewString(), Type: blobDeleteJobType, Payload: path}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Error("failed to enqueue blob deletion", zap.String("path", path), zap.Error(err))
	}
}

func (s *CleanupService) handleJob(ctx context.Context, job jobs.Job) error {
	path, _ := job.Payload.(string)
	if path == "" {
		s.logger.Warn("cleanup job carries no path", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.storage.Delete(path); err != nil {
		if s.metrics != nil {
			s.metrics.ObserveBlobCleanupFailure()
		}
		return fmt.Errorf("delete blob %s: %w", path, err)
	}
	if err := s.journal.Resolve(ctx, path); err != nil {
		// The blob is gone; a later sweep re-tries the stale journal entry
		// and the delete stays idempotent.
		s.logger.Warn("failed to clear journal entry", zap.String("path", path), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveBlobDeleted()
	}
	return nil
}
