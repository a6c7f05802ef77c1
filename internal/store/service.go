package store

import (
	"context"
	"fmt"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

// TicketView is a service ticket with its read-time SLA fields
type TicketView struct {
	domain.ServiceTicket
	SLADeadline time.Time `json:"slaDeadline"`
	SLABreached bool      `json:"slaBreached"`
}

// ListServiceTickets returns all tickets in insertion order
func (s *Store) ListServiceTickets() []domain.ServiceTicket {
	var out []domain.ServiceTicket
	s.read(func(st *domain.State) { out = st.ServiceTickets.Items() })
	return out
}

// GetServiceTicket returns a ticket by id
func (s *Store) GetServiceTicket(id string) (domain.ServiceTicket, error) {
	var (
		out domain.ServiceTicket
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.ServiceTickets, "service ticket", id) })
	return out, err
}

// ServiceTicketViews returns all tickets with their SLA deadline computed against now
func (s *Store) ServiceTicketViews() []TicketView {
	now := s.now()
	tickets := s.ListServiceTickets()
	out := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketView{
			ServiceTicket: t,
			SLADeadline:   t.SLADeadline(),
			SLABreached:   t.SLABreached(now),
		})
	}
	return out
}

// CreateServiceTicket opens a ticket
func (s *Store) CreateServiceTicket(ctx context.Context, t domain.ServiceTicket) (domain.ServiceTicket, error) {
	var out domain.ServiceTicket
	err := s.mutate(ctx, mutation{op: "create_service_ticket", collection: "serviceTickets"}, func(st *domain.State, now time.Time, m *mutation) error {
		if t.Status == "" {
			t.Status = domain.TicketStatusOpen
		}
		if t.Priority == "" {
			t.Priority = domain.TicketPriorityMedium
		}
		if err := s.check(t); err != nil {
			return err
		}
		out = insertRecord(&st.ServiceTickets, t, s.ids.New("TKT"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateServiceTicket applies mutate to a ticket. Status changes go through AdvanceServiceTicket.
func (s *Store) UpdateServiceTicket(ctx context.Context, id string, mutate func(*domain.ServiceTicket)) (domain.ServiceTicket, error) {
	var out domain.ServiceTicket
	err := s.mutate(ctx, mutation{op: "update_service_ticket", collection: "serviceTickets", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		prev, ok := st.ServiceTickets.Get(id)
		if !ok {
			return notFound("service ticket", id)
		}
		next, err := updateRecord(&st.ServiceTickets, "service ticket", id, now, mutate, nil)
		if err != nil {
			return err
		}
		if next.Status != prev.Status {
			return fmt.Errorf("%w: ticket status changes through advance", domain.ErrInvalidTransition)
		}
		if err := s.check(next); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

// AdvanceServiceTicket moves a ticket one step forward. Closed tickets are left as they are.
func (s *Store) AdvanceServiceTicket(ctx context.Context, id string) (domain.ServiceTicket, error) {
	var out domain.ServiceTicket
	err := s.mutate(ctx, mutation{op: "advance_service_ticket", collection: "serviceTickets", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		current, ok := st.ServiceTickets.Get(id)
		if !ok {
			return notFound("service ticket", id)
		}
		next, ok := domain.NextTicketStatus(current.Status)
		if !ok {
			out = current
			return errUnchanged
		}
		var err error
		out, err = updateRecord(&st.ServiceTickets, "service ticket", id, now, func(t *domain.ServiceTicket) {
			t.Status = next
		}, nil)
		return err
	})
	return out, err
}
