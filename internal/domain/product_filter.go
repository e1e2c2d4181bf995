package domain

import (
	"errors"
	"strings"
)

type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortPrice     ProductSort = "price"
	ProductSortStock     ProductSort = "stock"
	ProductSortCreatedAt ProductSort = "createdAt"
)

var validProductSorts = map[ProductSort]struct{}{
	ProductSortName:      {},
	ProductSortPrice:     {},
	ProductSortStock:     {},
	ProductSortCreatedAt: {},
}

func ToProductSort(s string) (ProductSort, error) {
	if s == "" {
		return ProductSortName, nil
	}

	sort := ProductSort(s)
	if _, ok := validProductSorts[sort]; ok {
		return sort, nil
	}

	return "", errors.New("invalid sort key")
}

// ProductFilter selects catalog rows; ActiveOnly is forced for public listings.
type ProductFilter struct {
	Marketplace MarketplaceID
	SellerID    string
	Category    Category
	Keyword     string
	ActiveOnly  bool
	SortBy      ProductSort
}

func (f ProductFilter) Validate() error {
	if f.Marketplace == "" {
		return errors.New("marketplace is empty")
	}

	if f.SortBy != "" {
		if _, err := ToProductSort(string(f.SortBy)); err != nil {
			return err
		}
	}

	if len(strings.TrimSpace(f.Keyword)) > 100 {
		return errors.New("keyword is too long")
	}

	return nil
}
