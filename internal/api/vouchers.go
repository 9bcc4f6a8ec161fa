package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/floramart/internal/domain/voucher"
)

type voucherPayload struct {
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	Value         decimal.Decimal `json:"value"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxUses       int             `json:"max_uses"`
	StartsAt      time.Time       `json:"starts_at"`
	EndsAt        time.Time       `json:"ends_at"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
}

type voucherResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	Value         decimal.Decimal `json:"value"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxUses       int             `json:"max_uses"`
	Uses          int             `json:"uses"`
	StartsAt      time.Time       `json:"starts_at"`
	EndsAt        time.Time       `json:"ends_at"`
	Status        string          `json:"status"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type validateVoucherRequest struct {
	Code       string          `json:"code"`
	OrderValue decimal.Decimal `json:"order_value"`
}

func toVoucherResponse(v *voucher.Voucher) voucherResponse {
	return voucherResponse{
		ID:            v.ID,
		Code:          v.Code,
		DiscountType:  string(v.DiscountType),
		Value:         v.Value,
		MinOrderValue: v.MinOrderValue,
		MaxUses:       v.MaxUses,
		Uses:          v.Uses,
		StartsAt:      v.StartsAt,
		EndsAt:        v.EndsAt,
		Status:        string(v.Status),
		Description:   v.Description,
		CreatedAt:     v.CreatedAt,
	}
}

func (p voucherPayload) toVoucher() voucher.Voucher {
	status := voucher.Status(p.Status)
	if p.Status == "" {
		status = voucher.StatusActive
	}
	return voucher.Voucher{
		Code:          voucher.NormalizeCode(p.Code),
		DiscountType:  voucher.DiscountType(p.DiscountType),
		Value:         p.Value,
		MinOrderValue: p.MinOrderValue,
		MaxUses:       p.MaxUses,
		StartsAt:      p.StartsAt,
		EndsAt:        p.EndsAt,
		Status:        status,
		Description:   p.Description,
	}
}

// validateVoucher lets the storefront check a code against an order value
// without consuming a use.
func (h *Handler) validateVoucher(w http.ResponseWriter, r *http.Request) {
	var req validateVoucherRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.validator.Validate(r.Context(), req.Code, req.OrderValue)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "voucher is applicable", map[string]any{
		"voucher":  toVoucherResponse(v),
		"discount": voucher.Discount(v, req.OrderValue),
	})
}

func (h *Handler) listVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.vouchers.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]voucherResponse, len(vouchers))
	for i := range vouchers {
		out[i] = toVoucherResponse(&vouchers[i])
	}
	respondSuccess(w, http.StatusOK, "", out)
}

func (h *Handler) getVoucher(w http.ResponseWriter, r *http.Request) {
	v, err := h.vouchers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", toVoucherResponse(v))
}

func (h *Handler) createVoucher(w http.ResponseWriter, r *http.Request) {
	var req voucherPayload
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	v := req.toVoucher()
	v.ID = uuid.New().String()
	v.CreatedAt = time.Now()
	if err := v.ValidateNew(v.CreatedAt); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.vouchers.Create(r.Context(), &v); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "voucher created", toVoucherResponse(&v))
}

func (h *Handler) updateVoucher(w http.ResponseWriter, r *http.Request) {
	var req voucherPayload
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	v := req.toVoucher()
	v.ID = chi.URLParam(r, "id")
	if err := v.ValidateUpdate(); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.vouchers.Update(r.Context(), &v); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "voucher updated", toVoucherResponse(&v))
}

func (h *Handler) deleteVoucher(w http.ResponseWriter, r *http.Request) {
	if err := h.vouchers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "voucher deleted", nil)
}
