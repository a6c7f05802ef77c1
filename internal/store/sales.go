package store

import (
	"context"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

const (
	// approvedProjectDuration is how far out an approved quotation's project is expected to finish
	approvedProjectDuration = 30 * 24 * time.Hour

	autoAssignedManager = "Auto Assigned"
	pendingLocation     = "TBD"
)

// ============================================================================
// Leads
// ============================================================================

// ListLeads returns all leads in insertion order
func (s *Store) ListLeads() []domain.Lead {
	var out []domain.Lead
	s.read(func(st *domain.State) { out = st.Leads.Items() })
	return out
}

// GetLead returns a lead by id
func (s *Store) GetLead(id string) (domain.Lead, error) {
	var (
		out domain.Lead
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Leads, "lead", id) })
	return out, err
}

// CreateLead adds a lead; id and timestamps on the input are ignored
func (s *Store) CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	var out domain.Lead
	err := s.mutate(ctx, mutation{op: "create_lead", collection: "leads"}, func(st *domain.State, now time.Time, m *mutation) error {
		if lead.Status == "" {
			lead.Status = domain.LeadStatusNew
		}
		if err := s.check(lead); err != nil {
			return err
		}
		out = insertRecord(&st.Leads, lead, s.ids.New("LD"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateLead applies mutate to the lead with the given id
func (s *Store) UpdateLead(ctx context.Context, id string, mutate func(*domain.Lead)) (domain.Lead, error) {
	var out domain.Lead
	err := s.mutate(ctx, mutation{op: "update_lead", collection: "leads", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.Leads, "lead", id, now, mutate, nil)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// DeleteLead removes a lead. Surveys and quotations referencing it are kept.
func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return s.mutate(ctx, mutation{op: "delete_lead", collection: "leads", id: id}, func(st *domain.State, _ time.Time, _ *mutation) error {
		if !st.Leads.Delete(id) {
			return notFound("lead", id)
		}
		return nil
	})
}

// ============================================================================
// Surveys
// ============================================================================

// ListSurveys returns all surveys in insertion order
func (s *Store) ListSurveys() []domain.Survey {
	var out []domain.Survey
	s.read(func(st *domain.State) { out = st.Surveys.Items() })
	return out
}

// GetSurvey returns a survey by id
func (s *Store) GetSurvey(id string) (domain.Survey, error) {
	var (
		out domain.Survey
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Surveys, "survey", id) })
	return out, err
}

// CreateSurvey adds a survey
func (s *Store) CreateSurvey(ctx context.Context, survey domain.Survey) (domain.Survey, error) {
	var out domain.Survey
	err := s.mutate(ctx, mutation{op: "create_survey", collection: "surveys"}, func(st *domain.State, now time.Time, m *mutation) error {
		if survey.Status == "" {
			survey.Status = domain.SurveyStatusPlanned
		}
		if survey.Photos == nil {
			survey.Photos = []string{}
		}
		if err := s.check(survey); err != nil {
			return err
		}
		out = insertRecord(&st.Surveys, survey, s.ids.New("SUR"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateSurvey applies mutate to the survey with the given id
func (s *Store) UpdateSurvey(ctx context.Context, id string, mutate func(*domain.Survey)) (domain.Survey, error) {
	var out domain.Survey
	err := s.mutate(ctx, mutation{op: "update_survey", collection: "surveys", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.Surveys, "survey", id, now, mutate, nil)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// ============================================================================
// Quotations
// ============================================================================

// ListQuotations returns all quotations in insertion order
func (s *Store) ListQuotations() []domain.Quotation {
	var out []domain.Quotation
	s.read(func(st *domain.State) { out = st.Quotations.Items() })
	return out
}

// GetQuotation returns a quotation by id
func (s *Store) GetQuotation(id string) (domain.Quotation, error) {
	var (
		out domain.Quotation
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Quotations, "quotation", id) })
	return out, err
}

// CreateQuotation adds a quotation. It cannot be created already approved.
func (s *Store) CreateQuotation(ctx context.Context, q domain.Quotation) (domain.Quotation, error) {
	var out domain.Quotation
	err := s.mutate(ctx, mutation{op: "create_quotation", collection: "quotations"}, func(st *domain.State, now time.Time, m *mutation) error {
		switch q.Status {
		case "":
			q.Status = domain.QuotationStatusDraft
		case domain.QuotationStatusApproved:
			return domain.ErrInvalidTransition
		}
		if err := s.check(q); err != nil {
			return err
		}
		out = insertRecord(&st.Quotations, q, s.ids.New("QUO"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateQuotation applies mutate to the quotation with the given id.
// Approval goes through ApproveQuotation so that the project is created with it.
func (s *Store) UpdateQuotation(ctx context.Context, id string, mutate func(*domain.Quotation)) (domain.Quotation, error) {
	var out domain.Quotation
	err := s.mutate(ctx, mutation{op: "update_quotation", collection: "quotations", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		prev, ok := st.Quotations.Get(id)
		if !ok {
			return notFound("quotation", id)
		}
		next, err := updateRecord(&st.Quotations, "quotation", id, now, mutate, nil)
		if err != nil {
			return err
		}
		if next.Status == domain.QuotationStatusApproved && prev.Status != domain.QuotationStatusApproved {
			return domain.ErrInvalidTransition
		}
		if err := s.check(next); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

// ApproveQuotation approves a Sent quotation and creates its project.
// Quotations in any other status are left as they are.
func (s *Store) ApproveQuotation(ctx context.Context, id string) (domain.Project, error) {
	var out domain.Project
	err := s.mutate(ctx, mutation{op: "approve_quotation", collection: "quotations", related: []string{"projects"}, id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		q, ok := st.Quotations.Get(id)
		if !ok {
			return notFound("quotation", id)
		}
		if q.Status != domain.QuotationStatusSent {
			return errUnchanged
		}

		ts := domain.NewTimestamp(now)
		q.Status = domain.QuotationStatusApproved
		q.UpdatedAt = ts
		st.Quotations.Put(q)

		project := insertRecord(&st.Projects, domain.Project{
			QuotationID:        q.ID,
			Customer:           q.Customer,
			Capacity:           q.Capacity,
			Location:           pendingLocation,
			Status:             domain.ProjectStatusSurvey,
			Progress:           0,
			StartDate:          ts.String(),
			ExpectedCompletion: domain.NewTimestamp(now.Add(approvedProjectDuration)).String(),
			ProjectManager:     autoAssignedManager,
			TotalValue:         q.TotalAmount,
			Documents:          []domain.ProjectDocument{},
			Timeline:           []domain.TimelineEvent{},
			Team:               []domain.TeamMember{},
		}, s.ids.New("PRJ"), now, nil)
		out = project
		return nil
	})
	return out, err
}
