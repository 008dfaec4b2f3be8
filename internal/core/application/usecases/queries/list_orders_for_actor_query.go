package queries

import (
	"errors"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"
	"kargo/internal/pkg/guard"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

var ErrListOrdersForActorQueryIsNotConstructed = errors.New(
	"ListOrdersForActorQuery must be created via NewListOrdersForActorQuery constructor",
)

// ListOrdersForActorQuery reads the orders a user takes part in, newest first.
type ListOrdersForActorQuery struct {
	userID kernel.UUID
	role   kernel.Role
	limit  int
	offset int

	guard guard.ConstructorGuard
}

// NewListOrdersForActorQuery builds the query. A zero limit means
// DefaultPageSize.
func NewListOrdersForActorQuery(userID kernel.UUID, role kernel.Role, limit, offset int) (ListOrdersForActorQuery, error) {
	if err := userID.Validate(); err != nil {
		return ListOrdersForActorQuery{}, err
	}
	if err := role.Validate(); err != nil {
		return ListOrdersForActorQuery{}, err
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 1 || limit > MaxPageSize {
		return ListOrdersForActorQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageSize)
	}
	if offset < 0 {
		return ListOrdersForActorQuery{}, errs.NewValueIsInvalidError("offset")
	}

	return ListOrdersForActorQuery{
		userID: userID,
		role:   role,
		limit:  limit,
		offset: offset,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q ListOrdersForActorQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersForActorQueryIsNotConstructed)
}

func (q ListOrdersForActorQuery) UserID() kernel.UUID { return q.userID }
func (q ListOrdersForActorQuery) Role() kernel.Role   { return q.role }
func (q ListOrdersForActorQuery) Limit() int          { return q.limit }
func (q ListOrdersForActorQuery) Offset() int         { return q.offset }
