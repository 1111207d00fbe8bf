package storage

import (
	"context"
	"database/sql"
	"regexp"

	"docrag/internal/apperr"
)

var projectIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ValidateProjectID reports whether id is a usable project identifier:
// non-empty and alphanumeric only.
func ValidateProjectID(id string) error {
	if !projectIDPattern.MatchString(id) {
		return apperr.Wrapf(apperr.ErrProjectID, "project id %q must be non-empty and alphanumeric", id)
	}
	return nil
}

// ProjectStore defines the interface for project record operations.
type ProjectStore interface {
	// GetOrCreate returns the project with the given id, creating it if
	// absent. Idempotent and safe under concurrent calls.
	GetOrCreate(ctx context.Context, projectID string) (*Project, error)
	// GetByProjectID returns the project or apperr.ErrNotFound.
	GetByProjectID(ctx context.Context, projectID string) (*Project, error)
}

// ProjectRepo provides methods for project operations backed by SQLite.
// It implements the ProjectStore interface.
type ProjectRepo struct {
	db *sql.DB
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// GetOrCreate returns the project with the given id, creating it lazily on
// first reference. The UNIQUE constraint on project_id makes the create
// path race tolerant: INSERT OR IGNORE followed by a re-read.
func (r *ProjectRepo) GetOrCreate(ctx context.Context, projectID string) (*Project, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO projects (project_id) VALUES (?)",
		projectID,
	)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to create project: %v", err)
	}

	return r.GetByProjectID(ctx, projectID)
}

// GetByProjectID returns the project or apperr.ErrNotFound.
func (r *ProjectRepo) GetByProjectID(ctx context.Context, projectID string) (*Project, error) {
	var p Project
	err := r.db.QueryRowContext(ctx,
		"SELECT id, project_id, created_at FROM projects WHERE project_id = ?",
		projectID,
	).Scan(&p.ID, &p.ProjectID, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "project %q", projectID)
	}
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrStorage, "failed to query project: %v", err)
	}

	return &p, nil
}
