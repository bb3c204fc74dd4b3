package mapping

import (
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
)

// ToRowAccountItem converts a domain AccountItem to a chart_of_accounts row
func ToRowAccountItem(d domain.AccountItem) portsrepo.Row {
	return portsrepo.Row{
		"code":     d.Code,
		"name":     d.Name,
		"category": string(d.Category),
	}
}

// ToDomainAccountItem converts a chart_of_accounts row to a domain AccountItem
func ToDomainAccountItem(r portsrepo.Row) domain.AccountItem {
	return domain.AccountItem{
		Code:     str(r, "code"),
		Name:     str(r, "name"),
		Category: domain.AccountCategory(str(r, "category")),
	}
}
