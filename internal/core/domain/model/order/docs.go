// Package order holds the Order aggregate and its lifecycle state machine.
//
// An order is created by a business in Pending, claimed by exactly one courier
// (Assigned), then advanced by that courier through PickedUp and InTransit to
// Delivered. The order's customer may approve it or reject it (Cancelled) while
// it is still Pending. Status never moves backwards and the bound courier never
// changes once set.
//
//	Pending ──claim──> Assigned ──> PickedUp ──> InTransit ──> Delivered
//	   │
//	   └──reject──> Cancelled
//
// Every accepted status change is recorded on the aggregate as a StatusChanged
// event; the persistence layer stores the events as status history and the unit
// of work publishes them once the transaction commits.
package order
