package store

import (
	"context"
	"fmt"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

// ============================================================================
// Logistics
// ============================================================================

// ListLogistics returns all logistics orders in insertion order
func (s *Store) ListLogistics() []domain.LogisticsOrder {
	var out []domain.LogisticsOrder
	s.read(func(st *domain.State) { out = st.Logistics.Items() })
	return out
}

// GetLogisticsOrder returns a logistics order by id
func (s *Store) GetLogisticsOrder(id string) (domain.LogisticsOrder, error) {
	var (
		out domain.LogisticsOrder
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Logistics, "logistics order", id) })
	return out, err
}

// CreateLogisticsOrder adds a shipment in status Planned
func (s *Store) CreateLogisticsOrder(ctx context.Context, order domain.LogisticsOrder) (domain.LogisticsOrder, error) {
	var out domain.LogisticsOrder
	err := s.mutate(ctx, mutation{op: "create_logistics_order", collection: "logistics"}, func(st *domain.State, now time.Time, m *mutation) error {
		if order.Status == "" {
			order.Status = domain.LogisticsStatusPlanned
		}
		if err := s.check(order); err != nil {
			return err
		}
		out = insertRecord(&st.Logistics, order, s.ids.New("LOG"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateLogisticsOrder applies mutate to a logistics order. Status changes go through AdvanceLogistics.
func (s *Store) UpdateLogisticsOrder(ctx context.Context, id string, mutate func(*domain.LogisticsOrder)) (domain.LogisticsOrder, error) {
	var out domain.LogisticsOrder
	err := s.mutate(ctx, mutation{op: "update_logistics_order", collection: "logistics", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		prev, ok := st.Logistics.Get(id)
		if !ok {
			return notFound("logistics order", id)
		}
		next, err := updateRecord(&st.Logistics, "logistics order", id, now, mutate, nil)
		if err != nil {
			return err
		}
		if next.Status != prev.Status {
			return fmt.Errorf("%w: logistics status changes through advance", domain.ErrInvalidTransition)
		}
		if err := s.check(next); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

// AdvanceLogistics moves a shipment one step forward. Delivered shipments are left as they are.
// Dispatching without a dispatch date records today.
func (s *Store) AdvanceLogistics(ctx context.Context, id string) (domain.LogisticsOrder, error) {
	var out domain.LogisticsOrder
	err := s.mutate(ctx, mutation{op: "advance_logistics", collection: "logistics", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		current, ok := st.Logistics.Get(id)
		if !ok {
			return notFound("logistics order", id)
		}
		next, ok := domain.NextLogisticsStatus(current.Status)
		if !ok {
			out = current
			return errUnchanged
		}
		var err error
		out, err = updateRecord(&st.Logistics, "logistics order", id, now, func(o *domain.LogisticsOrder) {
			o.Status = next
			if next == domain.LogisticsStatusDispatched && o.DispatchDate == "" {
				o.DispatchDate = now.UTC().Format("2006-01-02")
			}
		}, nil)
		return err
	})
	return out, err
}

// ============================================================================
// Installations
// ============================================================================

// ListInstallations returns all installations in insertion order
func (s *Store) ListInstallations() []domain.Installation {
	var out []domain.Installation
	s.read(func(st *domain.State) { out = st.Installations.Items() })
	return out
}

// GetInstallation returns an installation by id
func (s *Store) GetInstallation(id string) (domain.Installation, error) {
	var (
		out domain.Installation
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Installations, "installation", id) })
	return out, err
}

// CreateInstallation adds an installation. Without tasks it gets the default checklist.
func (s *Store) CreateInstallation(ctx context.Context, inst domain.Installation) (domain.Installation, error) {
	var out domain.Installation
	err := s.mutate(ctx, mutation{op: "create_installation", collection: "installations"}, func(st *domain.State, now time.Time, m *mutation) error {
		if len(inst.Tasks) == 0 {
			inst.Tasks = make([]domain.InstallationTask, 0, len(domain.DefaultInstallationTasks))
			for _, name := range domain.DefaultInstallationTasks {
				inst.Tasks = append(inst.Tasks, domain.InstallationTask{Name: name})
			}
		}
		if err := s.check(inst); err != nil {
			return err
		}
		out = insertRecord(&st.Installations, inst, s.ids.New("INST"), now, domain.DeriveInstallation)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateInstallation applies mutate to an installation; progress and status are always re-derived
func (s *Store) UpdateInstallation(ctx context.Context, id string, mutate func(*domain.Installation)) (domain.Installation, error) {
	var out domain.Installation
	err := s.mutate(ctx, mutation{op: "update_installation", collection: "installations", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.Installations, "installation", id, now, mutate, domain.DeriveInstallation)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// ToggleInstallationTask flips one checklist task and re-derives progress and status.
// Completing the last task records today as the end date.
func (s *Store) ToggleInstallationTask(ctx context.Context, id string, index int) (domain.Installation, error) {
	var out domain.Installation
	err := s.mutate(ctx, mutation{op: "toggle_installation_task", collection: "installations", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		current, ok := st.Installations.Get(id)
		if !ok {
			return notFound("installation", id)
		}
		if index < 0 || index >= len(current.Tasks) {
			return fmt.Errorf("%w: installation %s has no task %d", domain.ErrInvalidInput, id, index)
		}
		var err error
		out, err = updateRecord(&st.Installations, "installation", id, now, func(inst *domain.Installation) {
			inst.Tasks[index].Completed = !inst.Tasks[index].Completed
		}, func(inst *domain.Installation) {
			domain.DeriveInstallation(inst)
			if inst.Status == domain.InstallationStatusCompleted && inst.EndDate == "" {
				inst.EndDate = now.UTC().Format("2006-01-02")
			}
		})
		return err
	})
	return out, err
}
