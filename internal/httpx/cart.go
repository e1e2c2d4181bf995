package httpx

import (
	"github.com/google/uuid"
	"net/http"
	"strconv"
)

func (h *MarketplaceHandler) viewCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.View(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := toCartResponse(h.market, cart)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *MarketplaceHandler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := bindAndValidate(w, r, h.validate, &req); err != nil {
		return
	}

	item, err := h.cart.AddItem(r.Context(), caller(r), uuid.MustParse(req.ProductID), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartItemResponse(item))
}

func (h *MarketplaceHandler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		writeError(w, r, validationErr("quantity is not a number"))
		return
	}

	item, err := h.cart.SetQuantity(r.Context(), caller(r), id, qty)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCartItemResponse(item))
}

func (h *MarketplaceHandler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.cart.RemoveItem(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketplaceHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), caller(r)); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
