// Package commands contains the operations that change order and location state.
// Every handler validates its command, opens a unit of work, applies the domain
// change, writes it through a repository and commits.
package commands

import (
	"context"

	"kargo/internal/core/ports"
)

// Unit of work views handed to command handlers. Each handler asks only for
// the repositories it writes to.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	LocationRepoFactory interface {
		LocationRepository() ports.LocationRepository
	}

	// OrderUoW is used by commands that only touch orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW spans orders and courier locations.
	UoW interface {
		TxManager
		OrderRepoFactory
		LocationRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
