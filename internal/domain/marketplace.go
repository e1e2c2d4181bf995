package domain

import (
	"golang.org/x/text/currency"
	"slices"
	"strings"
)

type MarketplaceID string

const (
	MarketplaceFertilizer MarketplaceID = "fertilizer"
	MarketplaceProduce    MarketplaceID = "produce"
)

type Category string

// Marketplace parameterizes the catalog, cart, checkout and lifecycle components.
// Fertilizer and Produce are two instances of the same engine and never share rows.
type Marketplace struct {
	ID         MarketplaceID
	SellerRole Role
	BuyerRole  Role
	Categories []Category
	Currency   currency.Unit
}

var Fertilizer = Marketplace{
	ID:         MarketplaceFertilizer,
	SellerRole: RoleProvider,
	BuyerRole:  RoleFarmer,
	Categories: []Category{"NITROGEN", "PHOSPHORUS", "POTASSIUM", "MICRONUTRIENTS", "ORGANIC", "COMPOUND"},
	Currency:   currency.INR,
}

var Produce = Marketplace{
	ID:         MarketplaceProduce,
	SellerRole: RoleFarmer,
	BuyerRole:  RoleConsumer,
	Categories: []Category{"VEGETABLE", "FRUIT", "GRAIN", "DAIRY", "HERB", "OTHER"},
	Currency:   currency.INR,
}

func (m Marketplace) WithCurrency(cur currency.Unit) Marketplace {
	m.Currency = cur
	return m
}

func (m Marketplace) ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(m.Categories, c) {
		return "", validationError("category %q is not offered in the %s marketplace", s, m.ID)
	}
	return c, nil
}

func (m Marketplace) IsSeller(c Caller) bool {
	return c.HasRole(m.SellerRole)
}

func (m Marketplace) IsBuyer(c Caller) bool {
	return c.HasRole(m.BuyerRole)
}

// ActorFor resolves which side of the order the caller acts on, most privileged first.
// The boolean is false when the caller has no relation to the order at all.
func (m Marketplace) ActorFor(c Caller, o Order) (Actor, bool) {
	switch {
	case c.HasRole(RoleAdmin):
		return ActorAdmin, true
	case m.IsSeller(c) && slices.Contains(o.SellerIDs, c.ID):
		return ActorSeller, true
	case c.ID != "" && c.ID == o.BuyerID:
		return ActorBuyer, true
	}
	return "", false
}
