package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// newProjectManager wires a project manager over the environment's
// stores.
func newProjectManager(env *testEnv) *ProjectManager {
	return NewProjectManager(env.projects, env.jobs, env.indexes, env.blobs, env.vectors)
}

// TestCreateProject tests creating and fetching a project.
func TestCreateProject(t *testing.T) {
	env := newTestEnv()
	svc := newProjectManager(env)
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "research", "papers and notes")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, domain.ProjectActive, project.Status)

	got, err := svc.Project(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "research", got.Name)
	assert.Equal(t, "papers and notes", got.Description)
}

// TestCreateProject_EmptyName tests name validation.
func TestCreateProject_EmptyName(t *testing.T) {
	env := newTestEnv()
	svc := newProjectManager(env)

	_, err := svc.CreateProject(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestListProjects tests listing.
func TestListProjects(t *testing.T) {
	env := newTestEnv()
	svc := newProjectManager(env)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, "second", "")
	require.NoError(t, err)

	// The environment seeds one project already.
	projects, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

// TestDeleteProject_Cascade tests that deletion removes the project's
// indexes, collections, jobs, and blobs.
func TestDeleteProject_Cascade(t *testing.T) {
	env := newTestEnv()
	svc := newProjectManager(env)
	ctx := context.Background()

	jobA := env.addCompletedJob("alpha beta gamma delta epsilon")
	jobB := env.addCompletedJob("one two three four five")
	idx := env.createIndex(jobA, jobB)

	_, err := env.orchestrator.RequestSync(ctx, idx.ID, "")
	require.NoError(t, err)
	env.orchestrator.Wait()

	require.NoError(t, svc.DeleteProject(ctx, env.projectID))

	_, err = env.projects.Get(ctx, env.projectID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.indexes.Get(ctx, idx.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, env.vectors.deleted, idx.CollectionName())

	for _, jobID := range []string{jobA, jobB} {
		_, err = env.jobs.Get(ctx, jobID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = env.blobs.Get(ctx, jobID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
}

// TestDeleteProject_NotFound tests deleting an unknown project.
func TestDeleteProject_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newProjectManager(env)

	err := svc.DeleteProject(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
