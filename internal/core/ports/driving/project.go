package driving

import (
	"context"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// ProjectService manages project records and their cascading deletion.
type ProjectService interface {
	// CreateProject persists a new project.
	CreateProject(ctx context.Context, name, description string) (*domain.Project, error)

	// Project retrieves a project by id.
	Project(ctx context.Context, id string) (*domain.Project, error)

	// ListProjects returns all projects.
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// DeleteProject cascades: vector collections, blob objects, then
	// metadata records. Sub-resource failures are logged but never
	// block the cascade; the project record is removed regardless.
	DeleteProject(ctx context.Context, id string) error
}
