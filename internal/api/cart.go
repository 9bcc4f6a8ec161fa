package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/floramart/internal/domain/cart"
)

type cartItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type cartResponse struct {
	Items         []cartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    decimal.Decimal    `json:"total_price"`
}

func toCartResponse(c *cart.Cart, totals cart.Totals) cartResponse {
	items := make([]cartItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = cartItemResponse{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return cartResponse{
		Items:         items,
		TotalQuantity: totals.Quantity,
		TotalPrice:    totals.Price,
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	c, totals, err := h.carts.Get(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", toCartResponse(c, totals))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessionFrom(r.Context())
	c, totals, err := h.carts.AddItem(r.Context(), sess.UserID, req.VariantID, req.Quantity)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "item added", toCartResponse(c, totals))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessionFrom(r.Context())
	c, totals, err := h.carts.UpdateItem(r.Context(), sess.UserID, chi.URLParam(r, "variantID"), req.Quantity)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "item updated", toCartResponse(c, totals))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	c, totals, err := h.carts.RemoveItem(r.Context(), sess.UserID, chi.URLParam(r, "variantID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "item removed", toCartResponse(c, totals))
}
