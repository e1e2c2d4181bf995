package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/rs/zerolog"
	"iter"
)

// ProductQuery holds the raw public listing parameters.
// An empty SellerID lists every seller's products.
type ProductQuery struct {
	SellerID string
	Category string
	Keyword  string
	SortBy   string
}

type Catalog struct {
	market domain.Marketplace
	store  port.Store
	logger zerolog.Logger
}

func NewCatalog(market domain.Marketplace, store port.Store, logger zerolog.Logger) *Catalog {
	return &Catalog{
		market: market,
		store:  store,
		logger: logger.With().Str("component", "catalog").Str("marketplace", string(market.ID)).Logger(),
	}
}

func (s *Catalog) CreateProduct(ctx context.Context, seller domain.Caller, in domain.ProductInput) (domain.Product, error) {
	if err := requireSeller(s.market, seller); err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		ID:          uuid.New(),
		Marketplace: s.market.ID,
		SellerID:    seller.ID,
		Active:      true,
	}
	if err := in.Apply(s.market, &p); err != nil {
		return domain.Product{}, err
	}

	created, err := s.store.Repositories().Products.InsertProduct(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("Products.InsertProduct: %w", err)
	}

	s.logger.Info().Str("product_id", created.ID.String()).Str("seller_id", seller.ID).Msg("product created")

	return created, nil
}

// UpdateProduct overwrites every mutable field. Orders keep the prices they were placed with.
func (s *Catalog) UpdateProduct(ctx context.Context, seller domain.Caller, productID uuid.UUID, in domain.ProductInput) (domain.Product, error) {
	var updated domain.Product

	err := s.store.InTx(ctx, func(r port.Repositories) error {
		p, err := r.Products.GetProduct(ctx, s.market.ID, productID)
		if err != nil {
			return fmt.Errorf("Products.GetProduct: %w", err)
		}

		if p.SellerID != seller.ID {
			return fmt.Errorf("%w: product %s belongs to another seller", domain.ErrForbidden, productID)
		}

		if err := in.Apply(s.market, &p); err != nil {
			return err
		}

		updated, err = r.Products.UpdateProduct(ctx, p)
		if err != nil {
			return fmt.Errorf("Products.UpdateProduct: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return updated, nil
}

// Deactivate hides the product from listings and carts; calling it twice is a no-op.
func (s *Catalog) Deactivate(ctx context.Context, seller domain.Caller, productID uuid.UUID) error {
	return s.store.InTx(ctx, func(r port.Repositories) error {
		p, err := r.Products.GetProduct(ctx, s.market.ID, productID)
		if err != nil {
			return fmt.Errorf("Products.GetProduct: %w", err)
		}

		if err := requireOwnerOrAdmin(seller, p); err != nil {
			return err
		}

		if !p.Active {
			return nil
		}

		if err := r.Products.SetActive(ctx, s.market.ID, productID, false); err != nil {
			return fmt.Errorf("Products.SetActive: %w", err)
		}

		return nil
	})
}

// DeleteProduct removes a product for good, which is only allowed while no order references it.
func (s *Catalog) DeleteProduct(ctx context.Context, seller domain.Caller, productID uuid.UUID) error {
	return s.store.InTx(ctx, func(r port.Repositories) error {
		p, err := r.Products.GetProduct(ctx, s.market.ID, productID)
		if err != nil {
			return fmt.Errorf("Products.GetProduct: %w", err)
		}

		if err := requireOwnerOrAdmin(seller, p); err != nil {
			return err
		}

		ordered, err := r.Products.IsOrdered(ctx, s.market.ID, productID)
		if err != nil {
			return fmt.Errorf("Products.IsOrdered: %w", err)
		}

		if ordered {
			return fmt.Errorf("%w: product %s has been ordered, deactivate it instead", domain.ErrValidation, productID)
		}

		if err := r.Products.DeleteProduct(ctx, s.market.ID, productID); err != nil {
			return fmt.Errorf("Products.DeleteProduct: %w", err)
		}

		return nil
	})
}

func (s *Catalog) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (domain.Product, error) {
	if qty < 1 {
		return domain.Product{}, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}

	p, err := s.store.Repositories().Products.DecrementStock(ctx, s.market.ID, productID, qty)
	if err != nil {
		return domain.Product{}, fmt.Errorf("Products.DecrementStock: %w", err)
	}

	return p, nil
}

// GetProduct returns an active product; inactive ones are reported as missing.
func (s *Catalog) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	p, err := s.store.Repositories().Products.GetProduct(ctx, s.market.ID, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("Products.GetProduct: %w", err)
	}

	if !p.Active {
		return domain.Product{}, fmt.Errorf("product %s is inactive: %w", productID, domain.ErrNotFound)
	}

	return p, nil
}

func (s *Catalog) ListActive(ctx context.Context, q ProductQuery, page domain.PageRequest) (domain.Page[domain.Product], error) {
	filter, err := s.activeFilter(q)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}

	result, err := s.store.Repositories().Products.SearchProducts(ctx, filter, page)
	if err != nil {
		return result, fmt.Errorf("Products.SearchProducts: %w", err)
	}

	return result, nil
}

// AllActive walks every matching product page by page. Each page is an independent query,
// so the sequence can be abandoned or restarted at any point.
func (s *Catalog) AllActive(ctx context.Context, q ProductQuery, pageSize int) iter.Seq2[domain.Product, error] {
	return func(yield func(domain.Product, error) bool) {
		for number := 0; ; number++ {
			page, err := s.ListActive(ctx, q, domain.PageRequest{Number: number, Size: pageSize})
			if err != nil {
				yield(domain.Product{}, err)
				return
			}

			for _, p := range page.Content {
				if !yield(p, nil) {
					return
				}
			}

			if number+1 >= page.TotalPages {
				return
			}
		}
	}
}

// ListMine lists the caller's own products, inactive ones included.
func (s *Catalog) ListMine(ctx context.Context, seller domain.Caller, page domain.PageRequest) (domain.Page[domain.Product], error) {
	if err := requireSeller(s.market, seller); err != nil {
		return domain.Page[domain.Product]{}, err
	}

	filter := domain.ProductFilter{
		Marketplace: s.market.ID,
		SellerID:    seller.ID,
		SortBy:      domain.ProductSortCreatedAt,
	}

	result, err := s.store.Repositories().Products.SearchProducts(ctx, filter, page)
	if err != nil {
		return result, fmt.Errorf("Products.SearchProducts: %w", err)
	}

	return result, nil
}

func (s *Catalog) activeFilter(q ProductQuery) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Marketplace: s.market.ID,
		SellerID:    q.SellerID,
		Keyword:     q.Keyword,
		ActiveOnly:  true,
	}

	if q.Category != "" {
		category, err := s.market.ParseCategory(q.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = category
	}

	sortBy, err := domain.ToProductSort(q.SortBy)
	if err != nil {
		return filter, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	filter.SortBy = sortBy

	if err := filter.Validate(); err != nil {
		return filter, errors.Join(domain.ErrValidation, err)
	}

	return filter, nil
}
