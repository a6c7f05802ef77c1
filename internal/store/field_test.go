package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceLogistics(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	order, err := s.CreateLogisticsOrder(ctx, domain.LogisticsOrder{
		ProjectID:    "PRJ-001",
		FromLocation: "Factory, Chakan",
		ToLocation:   "Pune",
		Transporter:  "VRL",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LogisticsStatusPlanned, order.Status)

	want := []domain.LogisticsStatus{
		domain.LogisticsStatusDispatched,
		domain.LogisticsStatusInTransit,
		domain.LogisticsStatusDelivered,
	}
	for _, status := range want {
		order, err = s.AdvanceLogistics(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}
	assert.Equal(t, "2024-06-01", order.DispatchDate)
	saves := snap.count()

	order, err = s.AdvanceLogistics(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LogisticsStatusDelivered, order.Status)
	assert.Equal(t, saves, snap.count())
}

func TestAdvanceLogistics_KeepsGivenDispatchDate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	order, err := s.CreateLogisticsOrder(ctx, domain.LogisticsOrder{ProjectID: "PRJ-001", DispatchDate: "2024-05-30"})
	require.NoError(t, err)

	order, err = s.AdvanceLogistics(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-30", order.DispatchDate)
}

func TestUpdateLogisticsOrder_StatusOnlyThroughAdvance(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	order, err := s.CreateLogisticsOrder(ctx, domain.LogisticsOrder{ProjectID: "PRJ-001"})
	require.NoError(t, err)

	_, err = s.UpdateLogisticsOrder(ctx, order.ID, func(o *domain.LogisticsOrder) { o.Status = domain.LogisticsStatusDelivered })
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	updated, err := s.UpdateLogisticsOrder(ctx, order.ID, func(o *domain.LogisticsOrder) { o.VehicleNumber = "MH12 AB 1234" })
	require.NoError(t, err)
	assert.Equal(t, "MH12 AB 1234", updated.VehicleNumber)
}

func TestInstallation_DefaultChecklist(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	inst, err := s.CreateInstallation(ctx, domain.Installation{ProjectID: "PRJ-001", Technician: "Vikram", StartDate: "2024-06-03"})
	require.NoError(t, err)

	require.Len(t, inst.Tasks, 6)
	assert.Equal(t, "Site Preparation", inst.Tasks[0].Name)
	assert.Equal(t, "Testing", inst.Tasks[5].Name)
	assert.Equal(t, 0, inst.Progress)
	assert.Equal(t, domain.InstallationStatusScheduled, inst.Status)
}

func TestToggleInstallationTask(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	inst, err := s.CreateInstallation(ctx, domain.Installation{ProjectID: "PRJ-001", Technician: "Vikram"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		inst, err = s.ToggleInstallationTask(ctx, inst.ID, i)
		require.NoError(t, err)
	}
	assert.Equal(t, 50, inst.Progress)
	assert.Equal(t, domain.InstallationStatusInProgress, inst.Status)
	assert.Empty(t, inst.EndDate)

	inst, err = s.ToggleInstallationTask(ctx, inst.ID, 2)
	require.NoError(t, err)
	assert.False(t, inst.Tasks[2].Completed)
	assert.Equal(t, 33, inst.Progress)

	for _, i := range []int{2, 3, 4, 5} {
		inst, err = s.ToggleInstallationTask(ctx, inst.ID, i)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, inst.Progress)
	assert.Equal(t, domain.InstallationStatusCompleted, inst.Status)
	assert.Equal(t, "2024-06-01", inst.EndDate)
}

func TestToggleInstallationTask_BadIndex(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	inst, err := s.CreateInstallation(ctx, domain.Installation{ProjectID: "PRJ-001", Technician: "Vikram"})
	require.NoError(t, err)
	saves := snap.count()

	for _, index := range []int{-1, 6} {
		_, err = s.ToggleInstallationTask(ctx, inst.ID, index)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	}
	assert.Equal(t, saves, snap.count())

	_, err = s.ToggleInstallationTask(ctx, "INST-404", 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateInstallation_RederivesProgress(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	inst, err := s.CreateInstallation(ctx, domain.Installation{
		ProjectID:  "PRJ-001",
		Technician: "Vikram",
		Tasks:      []domain.InstallationTask{{Name: "Mount"}, {Name: "Wire"}},
	})
	require.NoError(t, err)
	require.Len(t, inst.Tasks, 2)

	inst, err = s.UpdateInstallation(ctx, inst.ID, func(i *domain.Installation) {
		i.Tasks[0].Completed = true
		i.Progress = 90
		i.Status = domain.InstallationStatusCompleted
	})
	require.NoError(t, err)
	assert.Equal(t, 50, inst.Progress)
	assert.Equal(t, domain.InstallationStatusInProgress, inst.Status)
}
