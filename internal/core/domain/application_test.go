package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
)

func TestApprovalRoute_Validate(t *testing.T) {
	tests := []struct {
		name    string
		steps   []domain.ApprovalStep
		wantErr bool
	}{
		{name: "single step", steps: []domain.ApprovalStep{{ApproverID: "a"}}},
		{name: "two steps", steps: []domain.ApprovalStep{{ApproverID: "a"}, {ApproverID: "b"}}},
		{name: "no steps", wantErr: true},
		{name: "blank middle step", steps: []domain.ApprovalStep{{ApproverID: "a"}, {ApproverID: " "}, {ApproverID: "c"}}, wantErr: true},
		{name: "blank last step", steps: []domain.ApprovalStep{{ApproverID: "a"}, {}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ApprovalRoute{RouteID: "r", Steps: tt.steps}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApprovalRoute_ApproverAt(t *testing.T) {
	route := domain.ApprovalRoute{Steps: []domain.ApprovalStep{{ApproverID: "a"}, {ApproverID: "b"}}}

	got, ok := route.ApproverAt(2)
	assert.True(t, ok)
	assert.Equal(t, "b", got)

	_, ok = route.ApproverAt(3)
	assert.False(t, ok)
	_, ok = route.ApproverAt(0)
	assert.False(t, ok)
}
