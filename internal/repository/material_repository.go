package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-course-api/internal/models"
)

// MaterialRepository persists the material tree as an adjacency list:
// every node carries a parent_id pointing at a folder node, nil for roots.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs the repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts a new tree node.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if material.CreatedAt.IsZero() {
		material.CreatedAt = now
	}
	material.UpdatedAt = now
	const query = `INSERT INTO materials (id, parent_id, kind, name, description, uploaded_by, file_path, file_size, mime_type, created_at, updated_at)
VALUES (:id, :parent_id, :kind, :name, :description, :uploaded_by, :file_path, :file_size, :mime_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// GetByID returns a node by identifier.
func (r *MaterialRepository) GetByID(ctx context.Context, id string) (*models.Material, error) {
	const query = `SELECT id, parent_id, kind, name, description, uploaded_by, file_path, file_size, mime_type, created_at, updated_at
FROM materials WHERE id = $1`
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// ListChildren returns the immediate children of a folder, folders first,
// then files, each alphabetically. A nil parentID lists the tree roots.
func (r *MaterialRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Material, error) {
	const base = `SELECT id, parent_id, kind, name, description, uploaded_by, file_path, file_size, mime_type, created_at, updated_at
FROM materials `
	const order = ` ORDER BY kind DESC, name ASC`

	var materials []models.Material
	var err error
	if parentID == nil {
		err = r.db.SelectContext(ctx, &materials, base+`WHERE parent_id IS NULL`+order)
	} else {
		err = r.db.SelectContext(ctx, &materials, base+`WHERE parent_id = $1`+order, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list material children: %w", err)
	}
	return materials, nil
}

// CollectSubtree returns the subtree rooted at the given node, deepest
// nodes first so that children always precede their parents. The root
// itself is included and comes last.
func (r *MaterialRepository) CollectSubtree(ctx context.Context, rootID string) ([]models.Material, error) {
	const query = `WITH RECURSIVE subtree AS (
	SELECT id, parent_id, kind, name, file_path, 0 AS depth FROM materials WHERE id = $1
	UNION ALL
	SELECT m.id, m.parent_id, m.kind, m.name, m.file_path, s.depth + 1
	FROM materials m JOIN subtree s ON m.parent_id = s.id
)
SELECT id, parent_id, kind, name, file_path FROM subtree ORDER BY depth DESC, id ASC`
	var nodes []models.Material
	if err := r.db.SelectContext(ctx, &nodes, query, rootID); err != nil {
		return nil, fmt.Errorf("collect material subtree: %w", err)
	}
	return nodes, nil
}

// DeleteSubtree removes the given nodes in one transaction: either every
// record goes or, on any store failure, none do. Blob cleanup happens
// outside this transaction.
func (r *MaterialRepository) DeleteSubtree(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin material delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM materials WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete material subtree: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit material delete: %w", err)
	}
	return nil
}
