package appointment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migrantcare/healthtrack/internal/platform/apperror"
)

func validCreate() *CreateRequest {
	return &CreateRequest{
		DoctorID:   "3f1c2a9e-8d6b-4c1f-9a2e-5b7d0c4e1f23",
		Date:       "2025-03-01",
		Time:       "10:00",
		Type:       "Vaccination",
		Hospital:   "General Hospital Ernakulam",
		Department: "Medicine",
		Contact:    "9876543210",
		Address:    "Kakkanad, Kochi",
		Priority:   "normal",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperror.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields
}

func TestCreateRequest_Valid(t *testing.T) {
	assert.NoError(t, validCreate().Validate())
}

func TestCreateRequest_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		clear func(r *CreateRequest)
		field string
	}{
		{"date", func(r *CreateRequest) { r.Date = "" }, "date"},
		{"time", func(r *CreateRequest) { r.Time = "" }, "time"},
		{"hospital", func(r *CreateRequest) { r.Hospital = "" }, "hospital"},
		{"department", func(r *CreateRequest) { r.Department = "  " }, "department"},
		{"contact", func(r *CreateRequest) { r.Contact = "" }, "contact"},
		{"address", func(r *CreateRequest) { r.Address = "" }, "address"},
		{"doctor", func(r *CreateRequest) { r.DoctorID = "" }, "doctorId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.clear(req)
			fields := fieldsOf(t, req.Validate())
			assert.Len(t, fields, 1)
			assert.Equal(t, tt.field+" is required", fields[tt.field])
		})
	}
}

func TestCreateRequest_ReportsAllFields(t *testing.T) {
	fields := fieldsOf(t, (&CreateRequest{}).Validate())
	for _, name := range []string{"doctorId", "date", "time", "hospital", "department", "contact", "address"} {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, fields, "priority")
	assert.NotContains(t, fields, "type")
}

func TestCreateRequest_Formats(t *testing.T) {
	req := validCreate()
	req.Date = "01/03/2025"
	req.Time = "10am"
	req.Priority = "asap"
	req.DoctorID = "doc-1"

	fields := fieldsOf(t, req.Validate())
	assert.Equal(t, "date must be a date in YYYY-MM-DD format", fields["date"])
	assert.Equal(t, "time must be a 24-hour time in HH:MM format", fields["time"])
	assert.Equal(t, "priority must be one of: normal, urgent, emergency", fields["priority"])
	assert.Equal(t, "doctorId must be a valid id", fields["doctorId"])
}

func TestCreateRequest_FreeFormType(t *testing.T) {
	req := validCreate()
	req.Type = "Dental Cleaning"
	assert.NoError(t, req.Validate())
	req.Type = ""
	assert.NoError(t, req.Validate())
}

func TestUpdateRequest_Empty(t *testing.T) {
	fields := fieldsOf(t, (&UpdateRequest{}).Validate())
	assert.Contains(t, fields, "body")
}

func TestUpdateRequest_Partial(t *testing.T) {
	hospital := "District Hospital"
	assert.NoError(t, (&UpdateRequest{Hospital: &hospital}).Validate())
}

func TestUpdateRequest_CannotBlankRequired(t *testing.T) {
	blank := ""
	bad := "tomorrow"
	fields := fieldsOf(t, (&UpdateRequest{Hospital: &blank, Date: &bad}).Validate())
	assert.Equal(t, "hospital cannot be empty", fields["hospital"])
	assert.Equal(t, "date must be a date in YYYY-MM-DD format", fields["date"])
}

func TestUpdateRequest_NotesMayBeCleared(t *testing.T) {
	blank := ""
	assert.NoError(t, (&UpdateRequest{Notes: &blank}).Validate())
}

func TestNormalizeTime(t *testing.T) {
	assert.Equal(t, "09:05", normalizeTime("9:05"))
	assert.Equal(t, "2025-03-01", normalizeDate("2025-03-01"))
}
