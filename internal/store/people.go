package store

import (
	"context"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

// ============================================================================
// Employees
// ============================================================================

// ListEmployees returns all employees in insertion order
func (s *Store) ListEmployees() []domain.Employee {
	var out []domain.Employee
	s.read(func(st *domain.State) { out = st.Employees.Items() })
	return out
}

// GetEmployee returns an employee by id
func (s *Store) GetEmployee(id string) (domain.Employee, error) {
	var (
		out domain.Employee
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Employees, "employee", id) })
	return out, err
}

// CreateEmployee adds an employee, Active unless stated otherwise
func (s *Store) CreateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	var out domain.Employee
	err := s.mutate(ctx, mutation{op: "create_employee", collection: "employees"}, func(st *domain.State, now time.Time, m *mutation) error {
		if e.Status == "" {
			e.Status = domain.EmployeeStatusActive
		}
		if err := s.check(e); err != nil {
			return err
		}
		out = insertRecord(&st.Employees, e, s.ids.New("EMP"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateEmployee applies mutate to an employee
func (s *Store) UpdateEmployee(ctx context.Context, id string, mutate func(*domain.Employee)) (domain.Employee, error) {
	var out domain.Employee
	err := s.mutate(ctx, mutation{op: "update_employee", collection: "employees", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.Employees, "employee", id, now, mutate, nil)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// ToggleEmployeeStatus switches an employee between Active and Inactive
func (s *Store) ToggleEmployeeStatus(ctx context.Context, id string) (domain.Employee, error) {
	return s.UpdateEmployee(ctx, id, func(e *domain.Employee) {
		if e.Status == domain.EmployeeStatusActive {
			e.Status = domain.EmployeeStatusInactive
		} else {
			e.Status = domain.EmployeeStatusActive
		}
	})
}

// DeleteEmployee removes an employee
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.mutate(ctx, mutation{op: "delete_employee", collection: "employees", id: id}, func(st *domain.State, _ time.Time, _ *mutation) error {
		if !st.Employees.Delete(id) {
			return notFound("employee", id)
		}
		return nil
	})
}

// ============================================================================
// Compliance
// ============================================================================

// ListComplianceRecords returns all compliance records with their status derived against now
func (s *Store) ListComplianceRecords() []domain.ComplianceRecord {
	now := s.now()
	var out []domain.ComplianceRecord
	s.read(func(st *domain.State) { out = st.ComplianceRecords.Items() })
	for i := range out {
		out[i].Status = domain.ComplianceStatusFor(out[i], now)
	}
	return out
}

// GetComplianceRecord returns a compliance record with its status derived against now
func (s *Store) GetComplianceRecord(id string) (domain.ComplianceRecord, error) {
	var (
		out domain.ComplianceRecord
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.ComplianceRecords, "compliance record", id) })
	if err != nil {
		return out, err
	}
	out.Status = domain.ComplianceStatusFor(out, s.now())
	return out, nil
}

// ExpiringComplianceRecords returns the records that are expired or expiring soon
func (s *Store) ExpiringComplianceRecords() []domain.ComplianceRecord {
	var out []domain.ComplianceRecord
	for _, rec := range s.ListComplianceRecords() {
		if rec.Status != domain.ComplianceStatusValid {
			out = append(out, rec)
		}
	}
	return out
}

// CreateComplianceRecord adds a certificate; its status is derived from the expiry date
func (s *Store) CreateComplianceRecord(ctx context.Context, rec domain.ComplianceRecord) (domain.ComplianceRecord, error) {
	var out domain.ComplianceRecord
	err := s.mutate(ctx, mutation{op: "create_compliance_record", collection: "complianceRecords"}, func(st *domain.State, now time.Time, m *mutation) error {
		if err := s.check(rec); err != nil {
			return err
		}
		out = insertRecord(&st.ComplianceRecords, rec, s.ids.New("COMP"), now, deriveCompliance(now))
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateComplianceRecord applies mutate to a compliance record and re-derives its status
func (s *Store) UpdateComplianceRecord(ctx context.Context, id string, mutate func(*domain.ComplianceRecord)) (domain.ComplianceRecord, error) {
	var out domain.ComplianceRecord
	err := s.mutate(ctx, mutation{op: "update_compliance_record", collection: "complianceRecords", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.ComplianceRecords, "compliance record", id, now, mutate, deriveCompliance(now))
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

func deriveCompliance(now time.Time) func(*domain.ComplianceRecord) {
	return func(rec *domain.ComplianceRecord) {
		rec.Status = domain.ComplianceStatusFor(*rec, now)
	}
}

// ============================================================================
// Community posts
// ============================================================================

// ListCommunityPosts returns all posts in insertion order
func (s *Store) ListCommunityPosts() []domain.CommunityPost {
	var out []domain.CommunityPost
	s.read(func(st *domain.State) { out = st.CommunityPosts.Items() })
	return out
}

// GetCommunityPost returns a post by id
func (s *Store) GetCommunityPost(id string) (domain.CommunityPost, error) {
	var (
		out domain.CommunityPost
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.CommunityPosts, "community post", id) })
	return out, err
}

// CreateCommunityPost publishes a post with zeroed counters
func (s *Store) CreateCommunityPost(ctx context.Context, p domain.CommunityPost) (domain.CommunityPost, error) {
	var out domain.CommunityPost
	err := s.mutate(ctx, mutation{op: "create_community_post", collection: "communityPosts"}, func(st *domain.State, now time.Time, m *mutation) error {
		p.Likes = 0
		p.Comments = 0
		if err := s.check(p); err != nil {
			return err
		}
		out = insertRecord(&st.CommunityPosts, p, s.ids.New("POST"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateCommunityPost applies mutate to a post
func (s *Store) UpdateCommunityPost(ctx context.Context, id string, mutate func(*domain.CommunityPost)) (domain.CommunityPost, error) {
	var out domain.CommunityPost
	err := s.mutate(ctx, mutation{op: "update_community_post", collection: "communityPosts", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.CommunityPosts, "community post", id, now, mutate, nil)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}
