package store

import (
	"context"
	"fmt"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
	"github.com/bp848/mqdriven-sub001/internal/utils/mapping"
)

// nonEmpty accepts any non-blank identifier. Used for natural keys such as codes.
func nonEmpty(id string) bool {
	return id != ""
}

type applicationCodeRepository struct {
	db    portsrepo.Backend
	exec  *batch.Executor
	codes *batch.Executor
}

func newApplicationCodeRepository(db portsrepo.Backend, exec *batch.Executor) portsrepo.ApplicationCodeRepositoryFacade {
	return &applicationCodeRepository{db: db, exec: exec, codes: exec.WithValidator(nonEmpty)}
}

var _ portsrepo.ApplicationCodeRepositoryFacade = (*applicationCodeRepository)(nil)

func (r *applicationCodeRepository) FindApplicationCodeByID(ctx context.Context, id string) (*domain.ApplicationCode, error) {
	if !batch.IsCanonicalUUID(id) {
		return nil, notFound("application code", id)
	}
	rows, err := r.db.Select(ctx, schema.ApplicationCodes, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("find application code %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, notFound("application code", id)
	}
	code := mapping.ToDomainApplicationCode(rows[0])
	return &code, nil
}

func (r *applicationCodeRepository) FindApplicationCodesByCode(ctx context.Context, codes []string) ([]domain.ApplicationCode, error) {
	rows, err := r.codes.FetchByIDs(ctx, schema.ApplicationCodes, "code", codes)
	if err != nil {
		return nil, fmt.Errorf("find application codes: %w", err)
	}
	out := make([]domain.ApplicationCode, len(rows))
	for i, row := range rows {
		out[i] = mapping.ToDomainApplicationCode(row)
	}
	return out, nil
}

func (r *applicationCodeRepository) FindApplicationCodesByIDs(ctx context.Context, ids []string) (map[string]domain.ApplicationCode, error) {
	rows, err := r.exec.FetchByIDs(ctx, schema.ApplicationCodes, "id", ids)
	if err != nil {
		return nil, fmt.Errorf("find application codes by id: %w", err)
	}
	out := make(map[string]domain.ApplicationCode, len(rows))
	for _, row := range rows {
		code := mapping.ToDomainApplicationCode(row)
		out[code.ID] = code
	}
	return out, nil
}

type approvalRouteRepository struct {
	db portsrepo.Backend
}

func newApprovalRouteRepository(db portsrepo.Backend) portsrepo.ApprovalRouteRepositoryFacade {
	return &approvalRouteRepository{db: db}
}

var _ portsrepo.ApprovalRouteRepositoryFacade = (*approvalRouteRepository)(nil)

func (r *approvalRouteRepository) FindRouteByID(ctx context.Context, routeID string) (*domain.ApprovalRoute, error) {
	if !batch.IsCanonicalUUID(routeID) {
		return nil, notFound("approval route", routeID)
	}
	rows, err := r.db.Select(ctx, schema.ApprovalRoutes, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq("id", routeID)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("find approval route %s: %w", routeID, err)
	}
	if len(rows) == 0 {
		return nil, notFound("approval route", routeID)
	}
	route := mapping.ToDomainApprovalRoute(rows[0])
	return &route, nil
}

type userRepository struct {
	exec *batch.Executor
}

func newUserRepository(exec *batch.Executor) portsrepo.UserRepositoryFacade {
	return &userRepository{exec: exec}
}

var _ portsrepo.UserRepositoryFacade = (*userRepository)(nil)

func (r *userRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	rows, err := r.exec.FetchByIDs(ctx, schema.Users, "id", userIDs)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users := make(map[string]domain.User, len(rows))
	for _, row := range rows {
		u := mapping.ToDomainUser(row)
		users[u.UserID] = u
	}
	return users, nil
}
