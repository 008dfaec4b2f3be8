package queries

import (
	"errors"

	"kargo/internal/pkg/guard"
)

var ErrListAvailableOrdersQueryIsNotConstructed = errors.New(
	"ListAvailableOrdersQuery must be created via NewListAvailableOrdersQuery constructor",
)

// ListAvailableOrdersQuery reads the unassigned pool couriers pick from.
type ListAvailableOrdersQuery struct {
	guard guard.ConstructorGuard
}

func NewListAvailableOrdersQuery() ListAvailableOrdersQuery {
	return ListAvailableOrdersQuery{guard: guard.NewConstructorGuard()}
}

func (q ListAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListAvailableOrdersQueryIsNotConstructed)
}
