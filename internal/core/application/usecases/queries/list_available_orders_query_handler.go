package queries

import (
	"context"
	"time"

	"kargo/internal/core/domain/model/order"
	"kargo/internal/pkg/errs"

	"gorm.io/gorm"
)

// ListAvailableOrdersQueryHandler returns pending orders without a courier,
// oldest first. With the approval gate on, unapproved orders stay hidden.
type ListAvailableOrdersQueryHandler struct {
	db              *gorm.DB
	timeout         time.Duration
	requireApproval bool
}

func NewListAvailableOrdersQueryHandler(
	db *gorm.DB,
	timeout time.Duration,
	requireApproval bool,
) ListAvailableOrdersQueryHandler {
	return ListAvailableOrdersQueryHandler{db: db, timeout: timeout, requireApproval: requireApproval}
}

func (h ListAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListAvailableOrdersQuery,
) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	tx := h.db.WithContext(ctx).Table(ordersTable).
		Where("status = ? AND courier_id IS NULL", order.Pending.String())
	if h.requireApproval {
		tx = tx.Where("approved_at IS NOT NULL")
	}

	var rows []orderRow
	if err := tx.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, errs.NewStoreUnavailableError("list available orders", err)
	}

	return views(rows)
}
