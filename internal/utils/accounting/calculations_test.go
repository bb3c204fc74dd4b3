package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	"github.com/bp848/mqdriven-sub001/internal/utils/accounting"
)

func debit(code string, amount int64) domain.JournalLine {
	return domain.JournalLine{AccountCode: code, DebitAmount: decimal.NewFromInt(amount), CreditAmount: decimal.Zero}
}

func TestBalancingCredit_BalancesByConstruction(t *testing.T) {
	lines := []domain.JournalLine{debit("6100", 7000), debit("6200", 3000)}
	credit := accounting.BalancingCredit(lines, domain.AccountItem{Code: "2110", Name: "未払金"}, "経費")

	assert.True(t, decimal.NewFromInt(10000).Equal(credit.CreditAmount))
	assert.True(t, credit.DebitAmount.IsZero())
	assert.Equal(t, 2, credit.SortIndex)
	assert.NoError(t, accounting.ValidateBatchBalance(append(lines, credit)))
}

func TestValidateBatchBalance(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalLine
		wantErr error
	}{
		{
			name:    "single line",
			lines:   []domain.JournalLine{debit("6100", 1)},
			wantErr: accounting.ErrBatchMinLines,
		},
		{
			name: "unbalanced",
			lines: []domain.JournalLine{
				debit("6100", 100),
				{AccountCode: "2110", CreditAmount: decimal.NewFromInt(90)},
			},
			wantErr: accounting.ErrBatchUnbalanced,
		},
		{
			name: "line with both sides",
			lines: []domain.JournalLine{
				{AccountCode: "6100", DebitAmount: decimal.NewFromInt(5), CreditAmount: decimal.NewFromInt(5)},
				debit("6200", 1),
			},
			wantErr: accounting.ErrLineSides,
		},
		{
			name: "zero line",
			lines: []domain.JournalLine{
				{AccountCode: "6100"},
				debit("6200", 1),
			},
			wantErr: accounting.ErrLineSides,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, accounting.ValidateBatchBalance(tt.lines), tt.wantErr)
		})
	}
}
