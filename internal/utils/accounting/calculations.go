package accounting

import (
	"errors"
	"fmt"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrBatchUnbalanced = errors.New("journal batch debits and credits do not balance")
	ErrBatchMinLines   = errors.New("journal batch must have at least two lines")
	ErrLineSides       = errors.New("journal line must have exactly one positive side")
)

// ValidateLine checks that exactly one of debit and credit is positive and the other zero.
func ValidateLine(line domain.JournalLine) error {
	debit, credit := line.DebitAmount, line.CreditAmount
	if debit.IsNegative() || credit.IsNegative() {
		return fmt.Errorf("%w: line %d has a negative amount", ErrLineSides, line.SortIndex)
	}
	if debit.IsPositive() == credit.IsPositive() {
		return fmt.Errorf("%w: line %d has debit %s and credit %s", ErrLineSides, line.SortIndex, debit, credit)
	}
	return nil
}

// ValidateBatchBalance checks every line and that debits equal credits across the batch.
func ValidateBatchBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return ErrBatchMinLines
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range lines {
		if err := ValidateLine(l); err != nil {
			return err
		}
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s", ErrBatchUnbalanced, debits, credits)
	}
	return nil
}

// BalancingCredit returns the credit line that offsets every debit in lines.
func BalancingCredit(lines []domain.JournalLine, account domain.AccountItem, description string) domain.JournalLine {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.DebitAmount)
	}
	return domain.JournalLine{
		AccountCode:  account.Code,
		AccountName:  account.Name,
		DebitAmount:  decimal.Zero,
		CreditAmount: total,
		Description:  description,
		SortIndex:    len(lines),
	}
}
