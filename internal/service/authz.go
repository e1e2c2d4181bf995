package service

import (
	"fmt"
	"github.com/nikolayk812/agromarket/internal/domain"
)

func requireSeller(m domain.Marketplace, c domain.Caller) error {
	if !m.IsSeller(c) {
		return fmt.Errorf("%w: %s role required in the %s marketplace", domain.ErrForbidden, m.SellerRole, m.ID)
	}
	return nil
}

func requireBuyer(m domain.Marketplace, c domain.Caller) error {
	if !m.IsBuyer(c) {
		return fmt.Errorf("%w: %s role required in the %s marketplace", domain.ErrForbidden, m.BuyerRole, m.ID)
	}
	return nil
}

func requireOwnerOrAdmin(c domain.Caller, p domain.Product) error {
	if c.IsAdmin() || (c.ID != "" && c.ID == p.SellerID) {
		return nil
	}
	return fmt.Errorf("%w: product %s belongs to another seller", domain.ErrForbidden, p.ID)
}
