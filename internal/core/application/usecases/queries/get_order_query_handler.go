package queries

import (
	"context"
	"errors"
	"time"

	"kargo/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGetOrderQueryHandler(db *gorm.DB, timeout time.Duration) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db, timeout: timeout}
}

// Handle returns NotFound for an unknown id and Forbidden when the actor is
// not a party of the order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var row orderRow
	err := h.db.WithContext(ctx).Table(ordersTable).
		Where("id = ?", query.OrderID().Bytes()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return OrderView{}, errs.NewStoreUnavailableError("get order", err)
	}

	v, err := row.view()
	if err != nil {
		return OrderView{}, err
	}
	if !v.IsParty(query.ActorID()) {
		return OrderView{}, errs.NewForbiddenError(query.Role(), "view order "+v.ID.String())
	}
	return v, nil
}
