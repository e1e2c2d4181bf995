package repository

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/agromarket/internal/port"
)

type store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) port.Store {
	return &store{pool: pool}
}

func (s *store) Repositories() port.Repositories {
	return repositoriesFor(s.pool)
}

func (s *store) InTx(ctx context.Context, fn func(r port.Repositories) error) error {
	_, err := withTx(ctx, s.pool, func(tx DBTX) (struct{}, error) {
		return struct{}{}, fn(repositoriesFor(tx))
	})
	return err
}

func repositoriesFor(db DBTX) port.Repositories {
	return port.Repositories{
		Products: NewProduct(db),
		Carts:    NewCart(db),
		Orders:   NewOrder(db),
	}
}
