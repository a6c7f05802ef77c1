package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory_DerivedFieldsIgnoreCaller(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	item, err := s.CreateInventoryItem(ctx, domain.InventoryItem{
		Name:       "Junction Boxes",
		Unit:       "Units",
		TotalStock: 300,
		Reserved:   50,
		MinStock:   500,
		Available:  10000,
		Status:     domain.InventoryStatusGood,
	})
	require.NoError(t, err)
	// 250 == 500 × 0.5 is not below half, so the item is only a warning
	assert.Equal(t, 250, item.Available)
	assert.Equal(t, domain.InventoryStatusWarning, item.Status)

	item, err = s.UpdateInventoryItem(ctx, item.ID, func(i *domain.InventoryItem) { i.Reserved = 51 })
	require.NoError(t, err)
	assert.Equal(t, 249, item.Available)
	assert.Equal(t, domain.InventoryStatusCritical, item.Status)

	item, err = s.UpdateInventoryItem(ctx, item.ID, func(i *domain.InventoryItem) { i.TotalStock = 1000 })
	require.NoError(t, err)
	assert.Equal(t, 949, item.Available)
	assert.Equal(t, domain.InventoryStatusGood, item.Status)
}

func TestLowStockItems(t *testing.T) {
	s, _ := newTestStore(t)

	low := s.LowStockItems()
	require.Len(t, low, 1)
	assert.Equal(t, "INV-001", low[0].ID)
}

func TestCreatePurchaseOrder_FillsFromItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	po, err := s.CreatePurchaseOrder(ctx, domain.PurchaseOrder{
		ItemID:   "INV-002",
		Quantity: 100,
		Supplier: "Saint-Gobain",
		Status:   domain.PurchaseOrderStatusReceived,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusOpen, po.Status)
	assert.Equal(t, "Tempered Glass", po.ItemName)
	assert.Equal(t, "Sheets", po.Unit)
}

func TestReceivePurchaseOrder(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	po, err := s.CreatePurchaseOrder(ctx, domain.PurchaseOrder{ItemID: "INV-001", Quantity: 300, Supplier: "Waaree"})
	require.NoError(t, err)

	require.NoError(t, s.ReceivePurchaseOrder(ctx, po.ID))

	item, err := s.GetInventoryItem("INV-001")
	require.NoError(t, err)
	assert.Equal(t, 1500, item.TotalStock)
	assert.Equal(t, 550, item.Available)
	assert.Equal(t, domain.InventoryStatusGood, item.Status)

	received, err := s.GetPurchaseOrder(po.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusReceived, received.Status)
	saves := snap.count()

	// receiving twice credits stock once
	require.NoError(t, s.ReceivePurchaseOrder(ctx, po.ID))
	item, _ = s.GetInventoryItem("INV-001")
	assert.Equal(t, 1500, item.TotalStock)
	assert.Equal(t, saves, snap.count())
}

func TestReceivePurchaseOrder_Cancelled(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	po, err := s.CreatePurchaseOrder(ctx, domain.PurchaseOrder{ItemID: "INV-001", Quantity: 300, Supplier: "Waaree"})
	require.NoError(t, err)
	_, err = s.UpdatePurchaseOrder(ctx, po.ID, func(p *domain.PurchaseOrder) { p.Status = domain.PurchaseOrderStatusCancelled })
	require.NoError(t, err)

	require.NoError(t, s.ReceivePurchaseOrder(ctx, po.ID))
	item, _ := s.GetInventoryItem("INV-001")
	assert.Equal(t, 1200, item.TotalStock)
}

func TestReceivePurchaseOrder_MissingItem(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	po, err := s.CreatePurchaseOrder(ctx, domain.PurchaseOrder{ItemID: "INV-404", Quantity: 5, Supplier: "Nobody"})
	require.NoError(t, err)

	err = s.ReceivePurchaseOrder(ctx, po.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, _ := s.GetPurchaseOrder(po.ID)
	assert.Equal(t, domain.PurchaseOrderStatusOpen, got.Status)
}

func TestUpdatePurchaseOrder_ReceiptOnlyThroughWorkflow(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	po, err := s.CreatePurchaseOrder(ctx, domain.PurchaseOrder{ItemID: "INV-001", Quantity: 10, Supplier: "Waaree"})
	require.NoError(t, err)

	_, err = s.UpdatePurchaseOrder(ctx, po.ID, func(p *domain.PurchaseOrder) { p.Status = domain.PurchaseOrderStatusReceived })
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	ordered, err := s.UpdatePurchaseOrder(ctx, po.ID, func(p *domain.PurchaseOrder) { p.Status = domain.PurchaseOrderStatusOrdered })
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusOrdered, ordered.Status)

	require.NoError(t, s.ReceivePurchaseOrder(ctx, po.ID))
	item, _ := s.GetInventoryItem("INV-001")
	assert.Equal(t, 1210, item.TotalStock)
}
