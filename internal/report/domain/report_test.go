package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/inspecta/internal/errors"
)

func TestCreateReportInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateReportInput
		wantErr bool
	}{
		{name: "Success_Valid", input: CreateReportInput{InspectionID: 1, Description: "x"}},
		{name: "Success_WithStatus", input: CreateReportInput{InspectionID: 1, Description: "x", Status: StatusDraft}},
		{name: "Error_MissingInspection", input: CreateReportInput{Description: "x"}, wantErr: true},
		{name: "Error_NegativeInspection", input: CreateReportInput{InspectionID: -1, Description: "x"}, wantErr: true},
		{name: "Error_BlankDescription", input: CreateReportInput{InspectionID: 1, Description: "  "}, wantErr: true},
		{name: "Error_UnknownStatus", input: CreateReportInput{InspectionID: 1, Description: "x", Status: "lost"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateReportInput_Validate(t *testing.T) {
	description := "y"
	blank := " "
	status := StatusSubmitted
	unknown := "lost"

	assert.NoError(t, (&UpdateReportInput{Description: &description}).Validate())
	assert.NoError(t, (&UpdateReportInput{Status: &status}).Validate())
	assert.Error(t, (&UpdateReportInput{}).Validate())
	assert.Error(t, (&UpdateReportInput{Description: &blank}).Validate())
	assert.Error(t, (&UpdateReportInput{Status: &unknown}).Validate())

	data, err := json.Marshal(UpdateReportInput{Status: &status})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"submitted"}`, string(data))
}

func TestReport_DecodesProvisionalEntity(t *testing.T) {
	var r Report
	err := json.Unmarshal([]byte(`{
		"id":"tmp-0190a1",
		"inspection_id":1,
		"description":"x",
		"created_at":"2026-03-01T10:00:00.123456789Z",
		"updated_at":"2026-03-01T10:00:00.123456789Z"
	}`), &r)
	require.NoError(t, err)
	assert.True(t, r.IsProvisional())
	assert.Equal(t, 2026, r.CreatedAt.Year())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "report?inspection_id=1", ListKey(1).String())
	assert.Equal(t, "inspection?id=1", InspectionPattern(1).String())
	assert.False(t, InspectionPattern(1).Matches(ListKey(1)))
}
