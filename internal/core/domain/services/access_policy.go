package services

import (
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"
)

// Action is an operation a user can request.
type Action string

const (
	ActionCreateOrder    Action = "create order"
	ActionListAvailable  Action = "list available orders"
	ActionListOwnOrders  Action = "list own orders"
	ActionViewOrder      Action = "view order"
	ActionClaimOrder     Action = "claim order"
	ActionAdvanceOrder   Action = "advance order"
	ActionApproveOrder   Action = "approve order"
	ActionRejectOrder    Action = "reject order"
	ActionReportLocation Action = "report location"
	ActionViewLocation   Action = "view courier location"
	ActionConnect        Action = "open live channel"
)

// AccessPolicy is the role -> permitted action table.
type AccessPolicy struct {
	permissions map[kernel.Role]map[Action]bool
}

func NewAccessPolicy() AccessPolicy {
	return AccessPolicy{permissions: map[kernel.Role]map[Action]bool{
		kernel.RoleCourier: {
			ActionListAvailable:  true,
			ActionListOwnOrders:  true,
			ActionViewOrder:      true,
			ActionClaimOrder:     true,
			ActionAdvanceOrder:   true,
			ActionReportLocation: true,
			ActionViewLocation:   true,
			ActionConnect:        true,
		},
		kernel.RoleBusiness: {
			ActionCreateOrder:   true,
			ActionListOwnOrders: true,
			ActionViewOrder:     true,
			ActionViewLocation:  true,
			ActionConnect:       true,
		},
		kernel.RoleCustomer: {
			ActionListOwnOrders: true,
			ActionViewOrder:     true,
			ActionApproveOrder:  true,
			ActionRejectOrder:   true,
			ActionViewLocation:  true,
			ActionConnect:       true,
		},
		kernel.RoleAdmin: {
			ActionViewLocation: true,
			ActionConnect:      true,
		},
	}}
}

func (p AccessPolicy) Allows(role kernel.Role, action Action) bool {
	return p.permissions[role][action]
}

// Authorize returns an *errs.ForbiddenError unless role may perform action.
func (p AccessPolicy) Authorize(role kernel.Role, action Action) error {
	if !p.Allows(role, action) {
		return errs.NewForbiddenError(role, string(action))
	}
	return nil
}
