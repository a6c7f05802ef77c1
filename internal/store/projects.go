package store

import (
	"context"
	"fmt"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

// ListProjects returns all projects in insertion order
func (s *Store) ListProjects() []domain.Project {
	var out []domain.Project
	s.read(func(st *domain.State) { out = st.Projects.Items() })
	return out
}

// GetProject returns a project by id
func (s *Store) GetProject(id string) (domain.Project, error) {
	var (
		out domain.Project
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Projects, "project", id) })
	return out, err
}

// ProjectsForQuotation returns the projects created from a quotation
func (s *Store) ProjectsForQuotation(quotationID string) []domain.Project {
	var out []domain.Project
	s.read(func(st *domain.State) {
		for _, p := range st.Projects.Items() {
			if p.QuotationID == quotationID {
				out = append(out, p)
			}
		}
	})
	return out
}

// CreateProject adds a project directly, outside quotation approval
func (s *Store) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	var out domain.Project
	err := s.mutate(ctx, mutation{op: "create_project", collection: "projects"}, func(st *domain.State, now time.Time, m *mutation) error {
		if p.Status == "" {
			p.Status = domain.ProjectStatusSurvey
		}
		if domain.ProjectStatusRank(p.Status) < 0 {
			return fmt.Errorf("%w: unknown project status %q", domain.ErrInvalidInput, p.Status)
		}
		if err := s.check(p); err != nil {
			return err
		}
		out = insertRecord(&st.Projects, p, s.ids.New("PRJ"), now, s.deriveProject(now))
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateProject applies mutate to the project with the given id. This is the only way
// documents, timeline events and team members change. Status only moves forward.
func (s *Store) UpdateProject(ctx context.Context, id string, mutate func(*domain.Project)) (domain.Project, error) {
	var out domain.Project
	err := s.mutate(ctx, mutation{op: "update_project", collection: "projects", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		prev, ok := st.Projects.Get(id)
		if !ok {
			return notFound("project", id)
		}
		next, err := updateRecord(&st.Projects, "project", id, now, mutate, s.deriveProject(now))
		if err != nil {
			return err
		}
		rank := domain.ProjectStatusRank(next.Status)
		if rank < 0 {
			return fmt.Errorf("%w: unknown project status %q", domain.ErrInvalidInput, next.Status)
		}
		if rank < domain.ProjectStatusRank(prev.Status) {
			return fmt.Errorf("%w: project %s cannot move from %s back to %s",
				domain.ErrInvalidTransition, id, prev.Status, next.Status)
		}
		if err := s.check(next); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

// deriveProject clamps progress and gives new owned items their identity
func (s *Store) deriveProject(now time.Time) func(*domain.Project) {
	return func(p *domain.Project) {
		p.Progress = clamp(p.Progress, 0, 100)
		if p.Documents == nil {
			p.Documents = []domain.ProjectDocument{}
		}
		if p.Timeline == nil {
			p.Timeline = []domain.TimelineEvent{}
		}
		if p.Team == nil {
			p.Team = []domain.TeamMember{}
		}
		for i := range p.Documents {
			if p.Documents[i].ID == "" {
				p.Documents[i].ID = s.ids.New("DOC")
			}
			if p.Documents[i].UploadedAt.IsZero() {
				p.Documents[i].UploadedAt = domain.NewTimestamp(now)
			}
		}
		for i := range p.Timeline {
			if p.Timeline[i].ID == "" {
				p.Timeline[i].ID = s.ids.New("EVT")
			}
			if p.Timeline[i].Status == "" {
				p.Timeline[i].Status = domain.TimelineStatusPlanned
			}
		}
		for i := range p.Team {
			if p.Team[i].ID == "" {
				p.Team[i].ID = s.ids.New("TM")
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
