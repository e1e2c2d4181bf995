package httpx

import (
	"github.com/nikolayk812/agromarket/internal/domain"
	"net/http"
	"strings"
)

const idempotencyHeader = "Idempotency-Key"

func (h *MarketplaceHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := bindAndValidate(w, r, h.validate, &req); err != nil {
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if len(key) > 128 {
		writeError(w, r, validationErr(idempotencyHeader+" is too long"))
		return
	}

	order, err := h.checkout.Checkout(r.Context(), caller(r), req.toDeliveryInfo(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *MarketplaceHandler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.lifecycle.GetForBuyer(r.Context(), caller(r), page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(result, toOrderResponse))
}

func (h *MarketplaceHandler) getMyOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.lifecycle.GetOrder(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *MarketplaceHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.lifecycle.Cancel(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *MarketplaceHandler) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var statuses []domain.OrderStatus
	for _, raw := range r.URL.Query()["status"] {
		status, err := domain.ToOrderStatus(strings.ToUpper(raw))
		if err != nil {
			writeError(w, r, validationErr("unknown status "+raw))
			return
		}
		statuses = append(statuses, status)
	}

	result, err := h.lifecycle.GetForSeller(r.Context(), caller(r), page, statuses...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(result, toOrderResponse))
}

func (h *MarketplaceHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := bindAndValidate(w, r, h.validate, &req); err != nil {
		return
	}

	order, err := h.lifecycle.UpdateStatus(r.Context(), caller(r), id, strings.ToUpper(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}
