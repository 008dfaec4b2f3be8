package queries

import (
	"context"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"

	"gorm.io/gorm"
)

// actorColumns is the single place that decides which orders a role sees.
var actorColumns = map[kernel.Role]string{
	kernel.RoleCourier:  "courier_id",
	kernel.RoleBusiness: "business_id",
	kernel.RoleCustomer: "customer_id",
}

type ListOrdersForActorQueryHandler struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewListOrdersForActorQueryHandler(db *gorm.DB, timeout time.Duration) ListOrdersForActorQueryHandler {
	return ListOrdersForActorQueryHandler{db: db, timeout: timeout}
}

// OrderPage is one page of an actor's orders. Total counts every matching
// order, so callers can tell whether more pages follow.
type OrderPage struct {
	Orders []OrderView
	Total  int64
	Offset int
}

// NextOffset returns the offset of the following page, if there is one.
func (p OrderPage) NextOffset() (int, bool) {
	next := p.Offset + len(p.Orders)
	if len(p.Orders) == 0 || int64(next) >= p.Total {
		return 0, false
	}
	return next, true
}

func (h ListOrdersForActorQueryHandler) Handle(
	ctx context.Context,
	query ListOrdersForActorQuery,
) (OrderPage, error) {
	if err := query.Validate(); err != nil {
		return OrderPage{}, err
	}

	column, ok := actorColumns[query.Role()]
	if !ok {
		return OrderPage{}, errs.NewForbiddenError(query.Role(), "list orders")
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	filter := h.db.WithContext(ctx).Table(ordersTable).Where(column+" = ?", query.UserID().Bytes())

	var total int64
	if err := filter.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return OrderPage{}, errs.NewStoreUnavailableError("count orders", err)
	}

	var rows []orderRow
	err := filter.Session(&gorm.Session{}).
		Order("created_at DESC").Order("id ASC").
		Limit(query.Limit()).Offset(query.Offset()).
		Find(&rows).Error
	if err != nil {
		return OrderPage{}, errs.NewStoreUnavailableError("list orders", err)
	}

	orders, err := views(rows)
	if err != nil {
		return OrderPage{}, err
	}
	return OrderPage{Orders: orders, Total: total, Offset: query.Offset()}, nil
}
