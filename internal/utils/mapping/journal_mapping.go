package mapping

import (
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
)

// ToRowJournalBatch converts a domain JournalBatch to a journal_batches row
func ToRowJournalBatch(d domain.JournalBatch) portsrepo.Row {
	return portsrepo.Row{
		"id":                    d.BatchID,
		"source_application_id": d.SourceApplicationID,
		"status":                string(d.Status),
		"created_at":            d.CreatedAt,
		"posted_at":             d.PostedAt,
	}
}

// ToDomainJournalBatch converts a journal_batches row to a domain JournalBatch (without lines)
func ToDomainJournalBatch(r portsrepo.Row) domain.JournalBatch {
	return domain.JournalBatch{
		BatchID:             str(r, "id"),
		SourceApplicationID: str(r, "source_application_id"),
		Status:              domain.JournalStatus(str(r, "status")),
		CreatedAt:           timestamp(r, "created_at"),
		PostedAt:            timePtr(r, "posted_at"),
	}
}

// ToRowJournalLine converts a domain JournalLine to a journal_lines row
func ToRowJournalLine(d domain.JournalLine) portsrepo.Row {
	return portsrepo.Row{
		"id":            d.LineID,
		"batch_id":      d.BatchID,
		"account_code":  d.AccountCode,
		"account_name":  d.AccountName,
		"debit_amount":  d.DebitAmount,
		"credit_amount": d.CreditAmount,
		"description":   d.Description,
		"sort_index":    d.SortIndex,
	}
}

// ToDomainJournalLine converts a journal_lines row to a domain JournalLine
func ToDomainJournalLine(r portsrepo.Row) domain.JournalLine {
	return domain.JournalLine{
		LineID:       str(r, "id"),
		BatchID:      str(r, "batch_id"),
		AccountCode:  str(r, "account_code"),
		AccountName:  str(r, "account_name"),
		DebitAmount:  dec(r, "debit_amount"),
		CreditAmount: dec(r, "credit_amount"),
		Description:  str(r, "description"),
		SortIndex:    integer(r, "sort_index"),
	}
}
