package models

import (
	"time"

	"github.com/google/uuid"
)

// Backend kinds a connection profile can point at.
const (
	SourceKindFile       = "file"
	SourceKindRelational = "relational"
	SourceKindDocument   = "document"
)

// ValidSourceKind reports whether kind names a supported backend.
func ValidSourceKind(kind string) bool {
	switch kind {
	case SourceKindFile, SourceKindRelational, SourceKindDocument:
		return true
	}
	return false
}

// ConnectionProfile describes one registered data source. Only the fields
// relevant to SourceKind are meaningful; the rest may be stored but are
// ignored. A relational/document profile requires host, port, and
// database name; a file profile requires a file path.
type ConnectionProfile struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	SourceKind string    `json:"source_kind"`
	Host       string    `json:"host,omitempty"`
	Port       int       `json:"port,omitempty"`
	Database   string    `json:"database_name,omitempty"`
	Username   string    `json:"username,omitempty"`
	Password   string    `json:"-"`
	FilePath   string    `json:"file_path,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
