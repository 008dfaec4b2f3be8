package queries

import (
	"errors"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order on behalf of a user, who must be one of its
// parties.
type GetOrderQuery struct {
	orderID kernel.UUID
	actorID kernel.UUID
	role    kernel.Role

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID, actorID kernel.UUID, role kernel.Role) (GetOrderQuery, error) {
	if err := errors.Join(orderID.Validate(), actorID.Validate(), role.Validate()); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{
		orderID: orderID,
		actorID: actorID,
		role:    role,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderQuery) ActorID() kernel.UUID { return q.actorID }
func (q GetOrderQuery) Role() kernel.Role    { return q.role }
