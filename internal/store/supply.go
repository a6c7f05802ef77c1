package store

import (
	"context"
	"time"

	"github.com/solaros/solar-os/internal/domain"
)

// ============================================================================
// Inventory
// ============================================================================

// ListInventory returns all inventory items in insertion order
func (s *Store) ListInventory() []domain.InventoryItem {
	var out []domain.InventoryItem
	s.read(func(st *domain.State) { out = st.Inventory.Items() })
	return out
}

// GetInventoryItem returns an inventory item by id
func (s *Store) GetInventoryItem(id string) (domain.InventoryItem, error) {
	var (
		out domain.InventoryItem
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Inventory, "inventory item", id) })
	return out, err
}

// LowStockItems returns the items whose status is warning or critical
func (s *Store) LowStockItems() []domain.InventoryItem {
	var out []domain.InventoryItem
	s.read(func(st *domain.State) {
		for _, item := range st.Inventory.Items() {
			if item.Status != domain.InventoryStatusGood {
				out = append(out, item)
			}
		}
	})
	return out
}

// CreateInventoryItem adds an item; available and status are derived
func (s *Store) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := s.mutate(ctx, mutation{op: "create_inventory_item", collection: "inventory"}, func(st *domain.State, now time.Time, m *mutation) error {
		if err := s.check(item); err != nil {
			return err
		}
		out = insertRecord(&st.Inventory, item, s.ids.New("INV"), now, domain.DeriveInventory)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdateInventoryItem applies mutate to an item and re-derives available and status
func (s *Store) UpdateInventoryItem(ctx context.Context, id string, mutate func(*domain.InventoryItem)) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := s.mutate(ctx, mutation{op: "update_inventory_item", collection: "inventory", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		var err error
		out, err = updateRecord(&st.Inventory, "inventory item", id, now, mutate, domain.DeriveInventory)
		if err != nil {
			return err
		}
		return s.check(out)
	})
	return out, err
}

// ============================================================================
// Purchase orders
// ============================================================================

// ListPurchaseOrders returns all purchase orders in insertion order
func (s *Store) ListPurchaseOrders() []domain.PurchaseOrder {
	var out []domain.PurchaseOrder
	s.read(func(st *domain.State) { out = st.PurchaseOrders.Items() })
	return out
}

// GetPurchaseOrder returns a purchase order by id
func (s *Store) GetPurchaseOrder(id string) (domain.PurchaseOrder, error) {
	var (
		out domain.PurchaseOrder
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.PurchaseOrders, "purchase order", id) })
	return out, err
}

// CreatePurchaseOrder adds a purchase order in status Open. Item name and unit are
// filled from the referenced item when not given.
func (s *Store) CreatePurchaseOrder(ctx context.Context, po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	var out domain.PurchaseOrder
	err := s.mutate(ctx, mutation{op: "create_purchase_order", collection: "purchaseOrders"}, func(st *domain.State, now time.Time, m *mutation) error {
		po.Status = domain.PurchaseOrderStatusOpen
		if item, ok := st.Inventory.Get(po.ItemID); ok {
			if po.ItemName == "" {
				po.ItemName = item.Name
			}
			if po.Unit == "" {
				po.Unit = item.Unit
			}
		}
		if err := s.check(po); err != nil {
			return err
		}
		out = insertRecord(&st.PurchaseOrders, po, s.ids.New("PO"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// UpdatePurchaseOrder applies mutate to a purchase order. Receipt goes through
// ReceivePurchaseOrder so that stock is credited with it.
func (s *Store) UpdatePurchaseOrder(ctx context.Context, id string, mutate func(*domain.PurchaseOrder)) (domain.PurchaseOrder, error) {
	var out domain.PurchaseOrder
	err := s.mutate(ctx, mutation{op: "update_purchase_order", collection: "purchaseOrders", id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		prev, ok := st.PurchaseOrders.Get(id)
		if !ok {
			return notFound("purchase order", id)
		}
		next, err := updateRecord(&st.PurchaseOrders, "purchase order", id, now, mutate, nil)
		if err != nil {
			return err
		}
		if next.Status == domain.PurchaseOrderStatusReceived && prev.Status != domain.PurchaseOrderStatusReceived {
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

// ReceivePurchaseOrder credits the ordered quantity to the item's total stock and marks
// the order Received. Orders already Received or Cancelled are left as they are.
func (s *Store) ReceivePurchaseOrder(ctx context.Context, id string) error {
	return s.mutate(ctx, mutation{op: "receive_purchase_order", collection: "purchaseOrders", related: []string{"inventory"}, id: id}, func(st *domain.State, now time.Time, _ *mutation) error {
		po, ok := st.PurchaseOrders.Get(id)
		if !ok {
			return notFound("purchase order", id)
		}
		if po.Status == domain.PurchaseOrderStatusReceived || po.Status == domain.PurchaseOrderStatusCancelled {
			return errUnchanged
		}

		if _, err := updateRecord(&st.Inventory, "inventory item", po.ItemID, now, func(item *domain.InventoryItem) {
			item.TotalStock += po.Quantity
		}, domain.DeriveInventory); err != nil {
			return err
		}

		_, err := updateRecord(&st.PurchaseOrders, "purchase order", id, now, func(p *domain.PurchaseOrder) {
			p.Status = domain.PurchaseOrderStatusReceived
		}, nil)
		return err
	})
}
