package store

import (
	"context"
	"fmt"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/backend"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
	"github.com/bp848/mqdriven-sub001/internal/utils/mapping"
)

type accountRepository struct {
	db    portsrepo.Backend
	codes *batch.Executor
}

func newAccountRepository(db portsrepo.Backend, exec *batch.Executor) portsrepo.AccountRepositoryFacade {
	// Account codes are natural keys, not UUIDs.
	return &accountRepository{db: db, codes: exec.WithValidator(nonEmpty)}
}

// Ensure accountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountItem, error) {
	rows, err := r.codes.FetchByIDs(ctx, schema.ChartOfAccounts, "code", codes)
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	accounts := make(map[string]domain.AccountItem, len(rows))
	for _, row := range rows {
		a := mapping.ToDomainAccountItem(row)
		accounts[a.Code] = a
	}
	return accounts, nil
}

func (r *accountRepository) EnsureAccount(ctx context.Context, item domain.AccountItem) (*domain.AccountItem, error) {
	existing, err := r.FindAccountsByCodes(ctx, []string{item.Code})
	if err != nil {
		return nil, err
	}
	if account, ok := existing[item.Code]; ok {
		return &account, nil
	}

	// Absent: insert, tolerating a concurrent creator.
	row, err := backend.EnsureInsert(ctx, r.db, schema.ChartOfAccounts, mapping.ToRowAccountItem(item), "code")
	if err != nil {
		return nil, mapWriteErr(err, "ensure account "+item.Code)
	}
	account := mapping.ToDomainAccountItem(row)
	return &account, nil
}
