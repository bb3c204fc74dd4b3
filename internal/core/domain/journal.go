package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal batch.
type JournalStatus string

const (
	JournalDraft  JournalStatus = "draft"
	JournalPosted JournalStatus = "posted"
)

// JournalBatch is one accounting event derived from exactly one approved application.
type JournalBatch struct {
	BatchID             string        `json:"batchID"`             // Primary Key (UUID)
	SourceApplicationID string        `json:"sourceApplicationID"` // Unique: one batch per application
	Status              JournalStatus `json:"status"`
	CreatedAt           time.Time     `json:"createdAt"`
	PostedAt            *time.Time    `json:"postedAt,omitempty"`
	Lines               []JournalLine `json:"lines,omitempty"` // Loaded separately
}

// JournalLine is a single debit or credit row within a batch.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	BatchID      string          `json:"batchID"`
	AccountCode  string          `json:"accountCode"`
	AccountName  string          `json:"accountName"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
	SortIndex    int             `json:"sortIndex"`
}

// IsDebit reports whether the line posts to the debit side.
func (l JournalLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Amount returns the positive side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// Totals returns the debit and credit sums across the batch's lines.
func (b JournalBatch) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range b.Lines {
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}
	return debits, credits
}
