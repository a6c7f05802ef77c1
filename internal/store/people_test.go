package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployees(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	emp, err := s.CreateEmployee(ctx, domain.Employee{Name: "Kavita", Role: "Project Manager", Email: "kavita@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "EMP-1", emp.ID)
	assert.Equal(t, domain.EmployeeStatusActive, emp.Status)

	emp, err = s.ToggleEmployeeStatus(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeStatusInactive, emp.Status)

	emp, err = s.ToggleEmployeeStatus(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmployeeStatusActive, emp.Status)

	require.NoError(t, s.DeleteEmployee(ctx, emp.ID))
	assert.Empty(t, s.ListEmployees())

	_, err = s.ToggleEmployeeStatus(ctx, emp.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestComplianceRecords_StatusDerived(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	s, _ := newTestStore(t, store.WithClock(clock.Now))

	rec, err := s.CreateComplianceRecord(ctx, domain.ComplianceRecord{
		Title:             "ALMM listing",
		Category:          "Certification",
		CertificateNumber: "ALMM-2291",
		ExpiryDate:        "2024-07-01",
		Status:            domain.ComplianceStatusExpired,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplianceStatusValid, rec.Status)

	clock.Advance(24 * time.Hour)
	got, err := s.GetComplianceRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplianceStatusExpiringSoon, got.Status)
	require.Len(t, s.ExpiringComplianceRecords(), 1)

	clock.Advance(30 * 24 * time.Hour)
	assert.Equal(t, domain.ComplianceStatusExpired, s.ListComplianceRecords()[0].Status)
	snapshot, _ := s.State().ComplianceRecords.Get(rec.ID)
	assert.Equal(t, domain.ComplianceStatusExpired, snapshot.Status)

	renewed, err := s.UpdateComplianceRecord(ctx, rec.ID, func(c *domain.ComplianceRecord) { c.ExpiryDate = "2026-07-01" })
	require.NoError(t, err)
	assert.Equal(t, domain.ComplianceStatusValid, renewed.Status)
	assert.Empty(t, s.ExpiringComplianceRecords())
}

func TestCommunityPosts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	post, err := s.CreateCommunityPost(ctx, domain.CommunityPost{Author: "Rahul", Title: "Cleaning schedule for dusty sites", Likes: 40})
	require.NoError(t, err)
	assert.Equal(t, 0, post.Likes)

	post, err = s.UpdateCommunityPost(ctx, post.ID, func(p *domain.CommunityPost) { p.Likes++ })
	require.NoError(t, err)
	assert.Equal(t, 1, post.Likes)
	assert.Len(t, s.ListCommunityPosts(), 1)
}
