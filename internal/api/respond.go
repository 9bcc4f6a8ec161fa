package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/floramart/internal/domain/auth"
	"github.com/xenking/floramart/internal/domain/cart"
	"github.com/xenking/floramart/internal/domain/catalog"
	"github.com/xenking/floramart/internal/domain/order"
	"github.com/xenking/floramart/internal/domain/user"
	"github.com/xenking/floramart/internal/domain/voucher"
)

// envelope is the uniform response body. Status is "success" for 2xx,
// "failed" for 4xx, and "error" for 5xx.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, code int, message string, data any) {
	respond(w, code, envelope{Status: "success", Message: message, Data: data})
}

func respondFailed(w http.ResponseWriter, code int, message string) {
	respond(w, code, envelope{Status: "failed", Message: message})
}

// respondDomainError maps a domain error to the envelope. Unknown errors are
// logged and reported as a generic 500; their detail never reaches clients.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		belowMin *voucher.BelowMinimumError
		badMove  *order.InvalidTransitionError
		badInput *order.ValidationError
	)

	switch {
	case errors.Is(err, order.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		respondFailed(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, order.ErrForbidden):
		respondFailed(w, http.StatusForbidden, err.Error())

	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, voucher.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrAddressNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrVariantNotFound),
		errors.Is(err, catalog.ErrShopNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		respondFailed(w, http.StatusNotFound, err.Error())

	case errors.Is(err, voucher.ErrDisabled),
		errors.Is(err, voucher.ErrExpired),
		errors.Is(err, voucher.ErrNotYetActive),
		errors.Is(err, voucher.ErrUsageExceeded),
		errors.Is(err, voucher.ErrCodeTaken),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.As(err, &belowMin),
		errors.As(err, &badMove),
		errors.As(err, &badInput):
		respondFailed(w, http.StatusBadRequest, err.Error())

	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		respond(w, http.StatusInternalServerError, envelope{
			Status:  "error",
			Message: "internal server error",
		})
	}
}

// decodeJSON parses the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}
