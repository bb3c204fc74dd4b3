package mapping

import (
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
)

// ToDomainUser converts a users row to a domain User
func ToDomainUser(r portsrepo.Row) domain.User {
	return domain.User{
		UserID: str(r, "id"),
		Name:   str(r, "name"),
		Email:  str(r, "email"),
	}
}
