package mapping_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
	"github.com/bp848/mqdriven-sub001/internal/utils/mapping"
)

// Rows pass through schema normalization on every backend, so mapping is checked
// against normalized rows rather than the raw maps it produces.
func TestApplicationMapping_SurvivesNormalization(t *testing.T) {
	submitted := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("JST", 9*3600))
	approver := "00000000-0000-4000-8000-000000000102"
	app := domain.Application{
		ApplicationID:     "00000000-0000-4000-8000-0000000004aa",
		ApplicantID:       "00000000-0000-4000-8000-000000000101",
		ApplicationCodeID: "00000000-0000-4000-8000-000000000201",
		FormData:          map[string]any{"total_amount": 1200, "vendor": "JR"},
		Status:            domain.StatusPendingApproval,
		SubmittedAt:       &submitted,
		CurrentLevel:      1,
		ApproverID:        &approver,
		ApprovalRouteID:   "00000000-0000-4000-8000-000000000301",
		AccountingStatus:  domain.AccountingNone,
		Timestamps:        domain.Timestamps{CreatedAt: submitted, UpdatedAt: submitted},
	}

	def, _ := schema.Lookup(schema.Applications)
	row, err := def.Normalize(mapping.ToRowApplication(app))
	require.NoError(t, err)

	got := mapping.ToDomainApplication(row)
	assert.Equal(t, app.ApplicationID, got.ApplicationID)
	assert.Equal(t, domain.StatusPendingApproval, got.Status)
	require.NotNil(t, got.SubmittedAt)
	assert.True(t, submitted.Equal(*got.SubmittedAt))
	assert.Nil(t, got.ApprovedAt)
	assert.Nil(t, got.RejectionReason)
	assert.Equal(t, approver, *got.ApproverID)
	assert.Equal(t, float64(1200), got.FormData["total_amount"])
}

func TestToDomainApprovalRoute_KeepsStepOrder(t *testing.T) {
	route := mapping.ToDomainApprovalRoute(map[string]any{
		"id":    "r",
		"steps": []any{map[string]any{"approver_id": "a"}, map[string]any{}, map[string]any{"approver_id": "c"}},
	})
	require.Len(t, route.Steps, 3)
	assert.Equal(t, []string{"a", "c"}, route.ApproverIDs())
	approver, ok := route.ApproverAt(3)
	assert.True(t, ok)
	assert.Equal(t, "c", approver)
	assert.Error(t, route.Validate())
}
