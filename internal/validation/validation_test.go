package validation_test

import (
	"errors"
	"testing"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Valid(t *testing.T) {
	lead := domain.Lead{Name: "Sharma Residence", Mobile: "+91 98765 43210", Location: "Pune", Capacity: "5 KW", AIScore: 80}
	assert.NoError(t, validation.Struct(lead))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	lead := domain.Lead{Mobile: "+91 98765 43210", Location: "Pune", Capacity: "5 KW", Email: "not-an-email", AIScore: 140}

	err := validation.Struct(lead)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	var ve *validation.Error
	require.True(t, errors.As(err, &ve))

	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "Must be a valid email address", fields["email"])
	assert.Equal(t, "Must be less than or equal to 100", fields["aiScore"])
	assert.Contains(t, err.Error(), "invalid input")
}

func TestStruct_Enumerations(t *testing.T) {
	tests := []struct {
		name  string
		value any
		field string
	}{
		{
			name:  "ticket priority",
			value: domain.ServiceTicket{Customer: "A", Issue: "B", Priority: "Urgent"},
			field: "priority",
		},
		{
			name:  "quality status",
			value: domain.QualityRecord{Status: "Maybe"},
			field: "status",
		},
		{
			name:  "report category",
			value: domain.Report{Category: "Weather"},
			field: "category",
		},
		{
			name:  "lead status with spaces",
			value: domain.Lead{Name: "A", Mobile: "1", Location: "L", Capacity: "C", Status: "Survey Pending"},
			field: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Struct(tt.value)
			var ve *validation.Error
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve.Fields, 1)
			assert.Equal(t, tt.field, ve.Fields[0].Field)
		})
	}

	ok := domain.Lead{Name: "A", Mobile: "1", Location: "L", Capacity: "C", Status: domain.LeadStatusSurveyScheduled}
	assert.NoError(t, validation.Struct(ok))
}

func TestStruct_PurchaseOrderQuantity(t *testing.T) {
	err := validation.Struct(domain.PurchaseOrder{ItemID: "INV-001", Supplier: "Waaree"})
	var ve *validation.Error
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "quantity", ve.Fields[0].Field)
	assert.Equal(t, "Must be greater than 0", ve.Fields[0].Message)
}
