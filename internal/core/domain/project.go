package domain

import "time"

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

// Project statuses.
const (
	ProjectActive  ProjectStatus = "active"
	ProjectDeleted ProjectStatus = "deleted"
)

// Project is the owning container for jobs and indexes. Deleting a
// project cascades to its indexes (vector collections), jobs (blob
// objects) and finally the records themselves.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// Name is the human-readable name.
	Name string

	// Description is an optional free-text description.
	Description string

	// Status is the lifecycle status.
	Status ProjectStatus

	// CreatedAt is when the project was created.
	CreatedAt time.Time

	// UpdatedAt is when the project was last updated.
	UpdatedAt time.Time
}
