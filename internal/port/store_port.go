package port

import "context"

type Repositories struct {
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
}

// Store hands out repositories bound either to the pool or to one transaction.
type Store interface {
	Repositories() Repositories
	// InTx commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(r Repositories) error) error
}
