// Package access decides whether a caller may act on a project and,
// depending on policy, on the sections and tasks beneath it.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// ErrForbidden is returned when the caller does not own the project.
var ErrForbidden = errors.New("access denied")

// Authorize checks ownership of an already loaded project. A nil project
// is reported as not found before ownership is considered.
func Authorize(callerID string, project *model.Project) error {
	if project == nil {
		return repository.ErrProjectNotFound
	}
	if project.OwnerID != callerID {
		return ErrForbidden
	}
	return nil
}

type projectGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
}

type sectionGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Section, error)
}

type taskGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
}

// Guard resolves the parent chain of a record and applies Authorize to
// the owning project. With strict set to false, sections and tasks are only
// checked for existence.
type Guard struct {
	projects projectGetter
	sections sectionGetter
	tasks    taskGetter
	strict   bool
}

func NewGuard(projects projectGetter, sections sectionGetter, tasks taskGetter, strict bool) *Guard {
	return &Guard{
		projects: projects,
		sections: sections,
		tasks:    tasks,
		strict:   strict,
	}
}

// Strict reports whether section and task access is checked against the
// owning project.
func (g *Guard) Strict() bool {
	return g.strict
}

// Project loads the project and verifies the caller owns it. Project
// endpoints always go through this check regardless of policy.
func (g *Guard) Project(ctx context.Context, callerID string, projectID uuid.UUID) (*model.Project, error) {
	project, err := g.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(callerID, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ProjectScope guards endpoints addressed by a project id that act on the
// project's sections or tasks.
func (g *Guard) ProjectScope(ctx context.Context, callerID string, projectID uuid.UUID) error {
	if !g.strict {
		return nil
	}
	_, err := g.Project(ctx, callerID, projectID)
	return err
}

// Section loads the section and, in strict mode, verifies the caller owns
// its project.
func (g *Guard) Section(ctx context.Context, callerID string, sectionID uuid.UUID) (*model.Section, error) {
	section, err := g.sections.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if g.strict {
		if _, err := g.Project(ctx, callerID, section.ProjectID); err != nil {
			return nil, err
		}
	}
	return section, nil
}

// Task loads the task and, in strict mode, walks task -> section -> project.
func (g *Guard) Task(ctx context.Context, callerID string, taskID uuid.UUID) (*model.Task, error) {
	task, err := g.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if g.strict {
		if _, err := g.Section(ctx, callerID, task.SectionID); err != nil {
			return nil, err
		}
	}
	return task, nil
}
