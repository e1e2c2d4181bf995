package httpx

import (
	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/agromarket/internal/service"
	"net/http"
)

func (h *MarketplaceHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	h.listActive(w, r, "")
}

// listSellerProducts is the public storefront of one seller.
func (h *MarketplaceHandler) listSellerProducts(w http.ResponseWriter, r *http.Request) {
	h.listActive(w, r, chi.URLParam(r, "sellerId"))
}

func (h *MarketplaceHandler) listActive(w http.ResponseWriter, r *http.Request, sellerID string) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	result, err := h.catalog.ListActive(r.Context(), service.ProductQuery{
		SellerID: sellerID,
		Category: q.Get("category"),
		Keyword:  q.Get("keyword"),
		SortBy:   q.Get("sortBy"),
	}, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(result, toProductResponse))
}

func (h *MarketplaceHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *MarketplaceHandler) listMyProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.catalog.ListMine(r.Context(), caller(r), page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(result, toProductResponse))
}

func (h *MarketplaceHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := bindAndValidate(w, r, h.validate, &req); err != nil {
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), caller(r), req.toInput(h.market))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *MarketplaceHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req productRequest
	if err := bindAndValidate(w, r, h.validate, &req); err != nil {
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), caller(r), id, req.toInput(h.market))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *MarketplaceHandler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.catalog.Deactivate(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketplaceHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
