package usecase

import (
	"errors"
	"fmt"
	"strings"

	"toggl-assistant/internal/domain"
)

var (
	ErrNoProjects           = errors.New("no projects available; check PROJECTS_LIST or run config")
	ErrUnknownProject       = errors.New("unknown project")
	ErrDuplicateProjectName = errors.New("duplicate project name")
)

// ProjectChoices keeps the active projects accepted by allow, in service
// order. Names must be unique ignoring case since the name is what the user
// picks.
func ProjectChoices(projects []domain.Project, allow func(name string) bool) ([]domain.ProjectChoice, error) {
	seen := make(map[string]struct{}, len(projects))
	out := make([]domain.ProjectChoice, 0, len(projects))
	for _, p := range projects {
		if !p.Active || (allow != nil && !allow(p.Name)) {
			continue
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProjectName, p.Name)
		}
		seen[key] = struct{}{}
		out = append(out, domain.ProjectChoice{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

// ResolveProject finds the choice named name, ignoring case.
func ResolveProject(choices []domain.ProjectChoice, name string) (domain.ProjectChoice, error) {
	for _, c := range choices {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return domain.ProjectChoice{}, fmt.Errorf("%w: %q", ErrUnknownProject, name)
}

// ProjectNames returns the names of projects in order.
func ProjectNames(projects []domain.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Name)
	}
	return out
}
