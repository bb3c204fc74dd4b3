package dto

import (
	"time"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	AccountCode  string          `json:"accountCode"`
	AccountName  string          `json:"accountName"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
	SortIndex    int             `json:"sortIndex"`
}

// JournalBatchResponse defines the combined response for a batch and its lines.
type JournalBatchResponse struct {
	BatchID             string                `json:"batchID"`
	SourceApplicationID string                `json:"sourceApplicationID"`
	Status              domain.JournalStatus  `json:"status"`
	CreatedAt           time.Time             `json:"createdAt"`
	PostedAt            *time.Time            `json:"postedAt,omitempty"`
	TotalDebit          decimal.Decimal       `json:"totalDebit"`
	TotalCredit         decimal.Decimal       `json:"totalCredit"`
	Lines               []JournalLineResponse `json:"lines"`
}

// ToJournalBatchResponse converts a domain.JournalBatch to JournalBatchResponse DTO.
func ToJournalBatchResponse(b *domain.JournalBatch) JournalBatchResponse {
	debits, credits := b.Totals()
	lines := make([]JournalLineResponse, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = JournalLineResponse{
			LineID:       l.LineID,
			AccountCode:  l.AccountCode,
			AccountName:  l.AccountName,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
			SortIndex:    l.SortIndex,
		}
	}
	return JournalBatchResponse{
		BatchID:             b.BatchID,
		SourceApplicationID: b.SourceApplicationID,
		Status:              b.Status,
		CreatedAt:           b.CreatedAt,
		PostedAt:            b.PostedAt,
		TotalDebit:          debits,
		TotalCredit:         credits,
		Lines:               lines,
	}
}

// ApprovedApplicationResponse pairs an approved application with its journal batch, if any.
type ApprovedApplicationResponse struct {
	Application     ApplicationResponse     `json:"application"`
	ApplicationCode *domain.ApplicationCode `json:"applicationCode,omitempty"`
	JournalBatch    *JournalBatchResponse   `json:"journalBatch,omitempty"`
}

// ToApprovedApplicationResponses converts the accounting listing.
func ToApprovedApplicationResponses(items []domain.ApprovedApplication) []ApprovedApplicationResponse {
	out := make([]ApprovedApplicationResponse, len(items))
	for i := range items {
		item := &items[i]
		out[i] = ApprovedApplicationResponse{
			Application:     ToApplicationResponse(&item.Application),
			ApplicationCode: item.ApplicationCode,
		}
		if item.JournalBatch != nil {
			batch := ToJournalBatchResponse(item.JournalBatch)
			out[i].JournalBatch = &batch
		}
	}
	return out
}
