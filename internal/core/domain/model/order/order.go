package order

import (
	"errors"
	"fmt"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned for an Order that bypassed NewOrder and RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder")

// Order is the aggregate root of the delivery lifecycle.
//
// Invariants:
//   - status only moves along the edges of the transition table
//   - courierID is set by Assign and never changes afterwards
//   - createdAt never changes; updatedAt moves on every status change
type Order struct {
	id         kernel.UUID
	businessID kernel.UUID
	customerID kernel.UUID
	courierID  *kernel.UUID

	pickup   Address
	delivery Address
	parcel   Parcel
	fee      Fee

	status      Status
	cancelledBy *kernel.Role

	createdAt   time.Time
	updatedAt   time.Time
	approvedAt  *time.Time
	assignedAt  *time.Time
	pickedUpAt  *time.Time
	inTransitAt *time.Time
	deliveredAt *time.Time
	cancelledAt *time.Time

	events        []StatusChanged
	isConstructed bool
}

// NewOrder creates a Pending order on behalf of a business and records the
// creation event.
func NewOrder(
	id, businessID, customerID kernel.UUID,
	pickup, delivery Address,
	parcel Parcel,
	fee Fee,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		setUUID(&o.id, id),
		setUUID(&o.businessID, businessID),
		setUUID(&o.customerID, customerID),
		o.setAddresses(pickup, delivery),
		o.setParcel(parcel),
		o.setFee(fee),
	); err != nil {
		return nil, err
	}

	now = now.UTC()
	o.createdAt = now
	o.updatedAt = now
	o.record(Unknown, Pending, businessID, kernel.RoleBusiness, now)

	return o, nil
}

// State is the persisted form of an order, used to rebuild the aggregate.
type State struct {
	ID          kernel.UUID
	BusinessID  kernel.UUID
	CustomerID  kernel.UUID
	CourierID   *kernel.UUID
	Pickup      Address
	Delivery    Address
	Parcel      Parcel
	Fee         Fee
	Status      Status
	CancelledBy *kernel.Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ApprovedAt  *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// RestoreOrder rebuilds an order from storage without recording events.
func RestoreOrder(s State) (*Order, error) {
	o := &Order{
		status:        s.Status,
		cancelledBy:   s.CancelledBy,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		approvedAt:    s.ApprovedAt,
		assignedAt:    s.AssignedAt,
		pickedUpAt:    s.PickedUpAt,
		inTransitAt:   s.InTransitAt,
		deliveredAt:   s.DeliveredAt,
		cancelledAt:   s.CancelledAt,
		isConstructed: true,
	}

	if err := errors.Join(
		setUUID(&o.id, s.ID),
		setUUID(&o.businessID, s.BusinessID),
		setUUID(&o.customerID, s.CustomerID),
		o.setAddresses(s.Pickup, s.Delivery),
		o.setParcel(s.Parcel),
		o.setFee(s.Fee),
		s.Status.Validate(),
		o.setCourier(s.CourierID),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID         { return o.id }
func (o *Order) BusinessID() kernel.UUID { return o.businessID }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }
func (o *Order) Pickup() Address         { return o.pickup }
func (o *Order) Delivery() Address       { return o.delivery }
func (o *Order) Parcel() Parcel          { return o.parcel }
func (o *Order) Fee() Fee                { return o.fee }
func (o *Order) Status() Status          { return o.status }
func (o *Order) CreatedAt() time.Time    { return o.createdAt }
func (o *Order) UpdatedAt() time.Time    { return o.updatedAt }
func (o *Order) ApprovedAt() *time.Time  { return o.approvedAt }
func (o *Order) AssignedAt() *time.Time  { return o.assignedAt }
func (o *Order) PickedUpAt() *time.Time  { return o.pickedUpAt }
func (o *Order) InTransitAt() *time.Time { return o.inTransitAt }
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }
func (o *Order) CancelledAt() *time.Time { return o.cancelledAt }
func (o *Order) CancelledBy() *kernel.Role {
	return o.cancelledBy
}

// Courier returns the bound courier, or nil while the order is unclaimed.
func (o *Order) Courier() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

// IsParty reports whether user is the business, customer or bound courier of the order.
func (o *Order) IsParty(user kernel.UUID) bool {
	if o.businessID.IsEqual(user) || o.customerID.IsEqual(user) {
		return true
	}
	return o.courierID != nil && o.courierID.IsEqual(user)
}

// Assign binds the order to a courier (pending -> assigned). When approval is
// required the customer must have approved the order first. An order another
// courier already holds fails with *errs.AlreadyAssignedError; a finished one
// with *errs.InvalidTransitionError.
//
// Assign only checks the in-memory state; concurrent claims are decided by the
// conditional write in the repository.
func (o *Order) Assign(courierID kernel.UUID, requireApproval bool, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.courierID != nil && !o.status.IsTerminal() {
		return errs.NewAlreadyAssignedError(o.id)
	}

	next, err := o.status.TransitionTo(Assigned)
	if err != nil {
		return err
	}
	if requireApproval && o.approvedAt == nil {
		return errs.NewInvalidTransitionErrorWithCause(o.status, Assigned, errors.New("awaiting customer approval"))
	}

	now = now.UTC()
	o.courierID = &courierID
	o.assignedAt = &now
	o.apply(next, courierID, kernel.RoleCourier, now)
	return nil
}

// Advance moves the order one step along the courier-driven part of the
// lifecycle. Only the bound courier may advance it.
func (o *Order) Advance(actor kernel.UUID, target Status, now time.Time) error {
	if o.courierID == nil || !o.courierID.IsEqual(actor) {
		return errs.NewForbiddenError(kernel.RoleCourier, fmt.Sprintf("advance order %s", o.id))
	}

	next, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}

	now = now.UTC()
	switch next {
	case PickedUp:
		o.pickedUpAt = &now
	case InTransit:
		o.inTransitAt = &now
	case Delivered:
		o.deliveredAt = &now
	default:
		return errs.NewInvalidTransitionError(o.status, target)
	}

	o.apply(next, actor, kernel.RoleCourier, now)
	return nil
}

// Approve records the customer's confirmation. The status does not change;
// approving twice is a no-op.
func (o *Order) Approve(customer kernel.UUID, now time.Time) error {
	if !o.customerID.IsEqual(customer) {
		return errs.NewForbiddenError(kernel.RoleCustomer, fmt.Sprintf("approve order %s", o.id))
	}
	if o.status != Pending {
		return errs.NewInvalidTransitionErrorWithCause(o.status, o.status, errors.New("only pending orders can be approved"))
	}
	if o.approvedAt != nil {
		return nil
	}

	now = now.UTC()
	o.approvedAt = &now
	o.updatedAt = now
	return nil
}

// Reject cancels a pending order on behalf of its customer.
func (o *Order) Reject(customer kernel.UUID, now time.Time) error {
	if !o.customerID.IsEqual(customer) {
		return errs.NewForbiddenError(kernel.RoleCustomer, fmt.Sprintf("reject order %s", o.id))
	}

	next, err := o.status.TransitionTo(Cancelled)
	if err != nil {
		return err
	}

	now = now.UTC()
	role := kernel.RoleCustomer
	o.cancelledAt = &now
	o.cancelledBy = &role
	o.apply(next, customer, role, now)
	return nil
}

// ResolvePickupPoint stores geocoded coordinates for the pickup address.
func (o *Order) ResolvePickupPoint(point kernel.Location) error {
	a, err := o.pickup.WithPoint(point)
	if err != nil {
		return err
	}
	o.pickup = a
	return nil
}

// ResolveDeliveryPoint stores geocoded coordinates for the delivery address.
func (o *Order) ResolveDeliveryPoint(point kernel.Location) error {
	a, err := o.delivery.WithPoint(point)
	if err != nil {
		return err
	}
	o.delivery = a
	return nil
}

// Events returns the status changes recorded since the order was loaded or created.
func (o *Order) Events() []StatusChanged {
	out := make([]StatusChanged, len(o.events))
	copy(out, o.events)
	return out
}

func (o *Order) ClearEvents() {
	o.events = nil
}

func (o *Order) apply(next Status, actor kernel.UUID, role kernel.Role, now time.Time) {
	prev := o.status
	o.status = next
	o.updatedAt = now
	o.record(prev, next, actor, role, now)
}

func (o *Order) record(from, to Status, actor kernel.UUID, role kernel.Role, now time.Time) {
	o.events = append(o.events, StatusChanged{
		ID:         kernel.NewUUID(),
		OrderID:    o.id,
		BusinessID: o.businessID,
		CustomerID: o.customerID,
		CourierID:  o.Courier(),
		From:       from,
		To:         to,
		ActorID:    actor,
		ActorRole:  role,
		OccurredAt: now,
	})
}

func setUUID(dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*dst = id
	return nil
}

func (o *Order) setAddresses(pickup, delivery Address) error {
	if err := errors.Join(pickup.Validate(), delivery.Validate()); err != nil {
		return err
	}
	o.pickup = pickup
	o.delivery = delivery
	return nil
}

func (o *Order) setParcel(p Parcel) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.parcel = p
	return nil
}

func (o *Order) setFee(f Fee) error {
	if err := f.Validate(); err != nil {
		return err
	}
	o.fee = f
	return nil
}

func (o *Order) setCourier(courierID *kernel.UUID) error {
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return err
		}
	}
	has := courierID != nil
	if has != o.status.HasCourier() {
		return errs.NewValueIsInvalidErrorWithCause("courier",
			fmt.Errorf("status %s is inconsistent with courier assigned = %t", o.status, has))
	}
	o.courierID = courierID
	return nil
}
