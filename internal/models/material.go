package models

import "time"

// MaterialKind distinguishes folder nodes from file nodes.
type MaterialKind string

const (
	MaterialKindFolder MaterialKind = "FOLDER"
	MaterialKindFile   MaterialKind = "FILE"
)

// IsFolder reports whether the kind is the folder kind.
func (k MaterialKind) IsFolder() bool {
	return k == MaterialKindFolder
}

// IsFile reports whether the kind is the file kind.
func (k MaterialKind) IsFile() bool {
	return k == MaterialKindFile
}

// Material represents one node of the course material tree. Folders may
// contain children; files carry a stored blob. ParentID is nil only for
// tree roots, and a parent always references a folder node. The file
// columns stay empty for folders.
type Material struct {
	ID          string       `db:"id" json:"id"`
	ParentID    *string      `db:"parent_id" json:"parent_id,omitempty"`
	Kind        MaterialKind `db:"kind" json:"kind"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description,omitempty"`
	UploadedBy  string       `db:"uploaded_by" json:"uploaded_by"`
	FilePath    string       `db:"file_path" json:"-"`
	FileSize    int64        `db:"file_size" json:"file_size,omitempty"`
	MimeType    string       `db:"mime_type" json:"mime_type,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CreateFolderInput holds the caller-supplied fields for a new folder.
// A nil ParentID creates a tree root.
type CreateFolderInput struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}
