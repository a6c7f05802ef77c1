package store

import (
	"context"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

const (
	firstStageName       = "Glass Cleaning"
	startedBatchProgress = 5
)

// ============================================================================
// Production orders
// ============================================================================

// ListProductionOrders returns all production orders in insertion order
func (s *Store) ListProductionOrders() []domain.ProductionOrder {
	var out []domain.ProductionOrder
	s.read(func(st *domain.State) { out = st.ProductionOrders.Items() })
	return out
}

// GetProductionOrder returns a production order by id
func (s *Store) GetProductionOrder(id string) (domain.ProductionOrder, error) {
	var (
		out domain.ProductionOrder
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.ProductionOrders, "production order", id) })
	return out, err
}

// CreateProductionOrder adds a production order. Use StartProductionBatch to put a batch on the line.
func (s *Store) CreateProductionOrder(ctx context.Context, order domain.ProductionOrder) (domain.ProductionOrder, error) {
	var out domain.ProductionOrder
	err := s.mutate(ctx, mutation{op: "create_production_order", collection: "productionOrders"}, func(st *domain.State, now time.Time, m *mutation) error {
		if order.Status == "" {
			order.Status = domain.ProductionOrderStatusPending
		}
		id := s.ids.New("BATCH")
		if order.BatchID == "" {
			order.BatchID = id
		}
		if err := s.check(order); err != nil {
			return err
		}
		out = insertRecord(&st.ProductionOrders, order, id, now, deriveProductionOrder)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateProductionOrder applies mutate to a production order
func (s *Store) UpdateProductionOrder(ctx context.Context, id string, mutate func(*domain.ProductionOrder)) (domain.ProductionOrder, error) {
	var out domain.ProductionOrder
	err := s.mutate(ctx, mutation{op: "update_production_order", collection: "productionOrders", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.ProductionOrders, "production order", id, now, mutate, deriveProductionOrder)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

func deriveProductionOrder(o *domain.ProductionOrder) {
	o.Progress = clamp(o.Progress, 0, 100)
}

// StartProductionBatch puts a new batch for a project on the line at the first stage and
// counts it against that stage. The project id is not checked.
func (s *Store) StartProductionBatch(ctx context.Context, projectID, capacity string) (domain.ProductionOrder, error) {
	var out domain.ProductionOrder
	err := s.mutate(ctx, mutation{op: "start_production_batch", collection: "productionOrders", related: []string{"productionLineStages"}}, func(st *domain.State, now time.Time, m *mutation) error {
		id := s.ids.New("BATCH")
		out = insertRecord(&st.ProductionOrders, domain.ProductionOrder{
			ProjectID: projectID,
			BatchID:   id,
			Capacity:  capacity,
			Stage:     firstStageName,
			Status:    domain.ProductionOrderStatusInProgress,
			Progress:  startedBatchProgress,
		}, id, now, nil)
		m.id = out.ID

		stages := st.ProductionLineStages.Items()
		if len(stages) == 0 {
			return nil
		}
		_, err := updateRecord(&st.ProductionLineStages, "production stage", stages[0].ID, now, func(stage *domain.ProductionLineStage) {
			stage.Batches++
		}, nil)
		return err
	})
	return out, err
}

// ============================================================================
// Production line stages
// ============================================================================

// ListProductionStages returns the line stages in line order
func (s *Store) ListProductionStages() []domain.ProductionLineStage {
	var out []domain.ProductionLineStage
	s.read(func(st *domain.State) { out = st.ProductionLineStages.Items() })
	return out
}

// GetProductionStage returns a line stage by id
func (s *Store) GetProductionStage(id string) (domain.ProductionLineStage, error) {
	var (
		out domain.ProductionLineStage
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.ProductionLineStages, "production stage", id) })
	return out, err
}

// UpdateProductionStage applies mutate to a stage and re-derives its status from the delay
func (s *Store) UpdateProductionStage(ctx context.Context, id string, mutate func(*domain.ProductionLineStage)) (domain.ProductionLineStage, error) {
	var out domain.ProductionLineStage
	err := s.mutate(ctx, mutation{op: "update_production_stage", collection: "productionLineStages", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.ProductionLineStages, "production stage", id, now, mutate, domain.DeriveStage)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// ReassignWorkers moves up to count workers from one stage to another. Each moved worker
// takes ten minutes off the target stage's delay, and the target status is re-derived.
// The source stage keeps its status. It returns the number of workers moved.
func (s *Store) ReassignWorkers(ctx context.Context, fromID, toID string, count int) (int, error) {
	moved := 0
	err := s.mutate(ctx, mutation{op: "reassign_workers", collection: "productionLineStages", id: toID}, func(st *domain.State, now time.Time, _ *mutation) error {
		from, ok := st.ProductionLineStages.Get(fromID)
		if !ok {
			return notFound("production stage", fromID)
		}
		if !st.ProductionLineStages.Has(toID) {
			return notFound("production stage", toID)
		}
		if count <= 0 || fromID == toID {
			return errUnchanged
		}

		moved = min(count, from.Workers)
		if moved <= 0 {
			moved = 0
			return errUnchanged
		}

		if _, err := updateRecord(&st.ProductionLineStages, "production stage", fromID, now, func(stage *domain.ProductionLineStage) {
			stage.Workers -= moved
		}, nil); err != nil {
			return err
		}
		_, err := updateRecord(&st.ProductionLineStages, "production stage", toID, now, func(stage *domain.ProductionLineStage) {
			stage.Workers += moved
			stage.Delay = max(0, stage.Delay-domain.DelayRecoveredPerWorker*moved)
		}, domain.DeriveStage)
		return err
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// ============================================================================
// Quality records
// ============================================================================

// ListQualityRecords returns all quality records in insertion order
func (s *Store) ListQualityRecords() []domain.QualityRecord {
	var out []domain.QualityRecord
	s.read(func(st *domain.State) { out = st.QualityRecords.Items() })
	return out
}

// GetQualityRecord returns a quality record by id
func (s *Store) GetQualityRecord(id string) (domain.QualityRecord, error) {
	var (
		out domain.QualityRecord
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.QualityRecords, "quality record", id) })
	return out, err
}

// CreateQualityRecord adds an inspection result
func (s *Store) CreateQualityRecord(ctx context.Context, rec domain.QualityRecord) (domain.QualityRecord, error) {
	var out domain.QualityRecord
	err := s.mutate(ctx, mutation{op: "create_quality_record", collection: "qualityRecords"}, func(st *domain.State, now time.Time, m *mutation) error {
		if rec.Status == "" {
			rec.Status = domain.QualityStatusHold
		}
		if err := s.check(rec); err != nil {
			return err
		}
		out = insertRecord(&st.QualityRecords, rec, s.ids.New("QC"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateQualityRecord applies mutate to a quality record
func (s *Store) UpdateQualityRecord(ctx context.Context, id string, mutate func(*domain.QualityRecord)) (domain.QualityRecord, error) {
	var out domain.QualityRecord
	err := s.mutate(ctx, mutation{op: "update_quality_record", collection: "qualityRecords", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.QualityRecords, "quality record", id, now, mutate, nil)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// DeleteQualityRecord removes a quality record
func (s *Store) DeleteQualityRecord(ctx context.Context, id string) error {
	return s.mutate(ctx, mutation{op: "delete_quality_record", collection: "qualityRecords", id: id}, func(st *domain.State, _ time.Time, _ *mutation) error {
		if !st.QualityRecords.Delete(id) {
			return notFound("quality record", id)
		}
		return nil
	})
}
