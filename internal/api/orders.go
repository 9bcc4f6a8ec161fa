package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/floramart/internal/domain/order"
	"github.com/xenking/floramart/internal/domain/user"
)

type checkoutRequest struct {
	PaymentMethod string          `json:"payment_method"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	AddressID     string          `json:"address_id"`
	VoucherCode   string          `json:"voucher_code"`
	Note          string          `json:"note"`
	Customization struct {
		GiftMessage           string     `json:"gift_message"`
		Anonymous             bool       `json:"anonymous"`
		DeliveryTimeRequested *time.Time `json:"delivery_time_requested"`
	} `json:"customization"`
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	Description string `json:"description"`
}

type orderItemResponse struct {
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type orderResponse struct {
	ID            string               `json:"id"`
	Number        string               `json:"number"`
	UserID        string               `json:"user_id"`
	Items         []orderItemResponse  `json:"items"`
	TotalQuantity int                  `json:"total_quantity"`
	TotalPrice    decimal.Decimal      `json:"total_price"`
	Discount      decimal.Decimal      `json:"discount"`
	VoucherCode   string               `json:"voucher_code,omitempty"`
	Payment       order.Payment        `json:"payment"`
	Shipment      order.Shipment       `json:"shipment"`
	Status        string               `json:"status"`
	Note          string               `json:"note,omitempty"`
	Address       user.Address         `json:"address"`
	Customization order.Customization  `json:"customization"`
	History       []order.StatusChange `json:"history"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{VariantID: item.VariantID, Quantity: item.Quantity, Price: item.Price}
	}
	return orderResponse{
		ID:            o.ID,
		Number:        o.Number,
		UserID:        o.UserID,
		Items:         items,
		TotalQuantity: o.TotalQuantity,
		TotalPrice:    o.TotalPrice,
		Discount:      o.Discount,
		VoucherCode:   o.VoucherCode,
		Payment:       o.Payment,
		Shipment:      o.Shipment,
		Status:        string(o.Status),
		Note:          o.Note,
		Address:       o.Address,
		Customization: o.Customization,
		History:       o.History,
		CreatedAt:     o.CreatedAt,
	}
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Checkout(r.Context(), sessionFrom(r.Context()), order.CheckoutRequest{
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		ShippingCost:  req.ShippingCost,
		AddressID:     req.AddressID,
		VoucherCode:   req.VoucherCode,
		Note:          req.Note,
		Customization: order.Customization{
			GiftMessage:           req.Customization.GiftMessage,
			Anonymous:             req.Customization.Anonymous,
			DeliveryTimeRequested: req.Customization.DeliveryTimeRequested,
		},
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "order placed", toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", toOrderResponse(o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), sessionFrom(r.Context()),
		chi.URLParam(r, "id"), order.Status(req.Status), req.Description)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "order status updated", toOrderResponse(o))
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	respondSuccess(w, http.StatusOK, "", out)
}
