package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenking/floramart/internal/domain/user"
)

type addressPayload struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	Ward        string `json:"ward"`
	Province    string `json:"province"`
	AddressType string `json:"address_type"`
	IsDefault   bool   `json:"is_default"`
}

func (p addressPayload) toAddress(id, userID string) user.Address {
	addressType := p.AddressType
	if addressType == "" {
		addressType = "home"
	}
	return user.Address{
		ID:          id,
		UserID:      userID,
		FullName:    p.FullName,
		Phone:       p.Phone,
		Street:      p.Street,
		Ward:        p.Ward,
		Province:    p.Province,
		AddressType: addressType,
		IsDefault:   p.IsDefault,
	}
}

func (p addressPayload) validate() string {
	switch {
	case p.FullName == "":
		return "full name is required"
	case p.Phone == "":
		return "phone is required"
	case p.Street == "":
		return "street is required"
	}
	return ""
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	addresses, err := h.addresses.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", addresses)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	var req addressPayload
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondFailed(w, http.StatusBadRequest, msg)
		return
	}

	sess := sessionFrom(r.Context())
	a := req.toAddress(uuid.New().String(), sess.UserID)
	if err := h.addresses.Create(r.Context(), &a); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "address created", a)
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressPayload
	if err := decodeJSON(r, &req); err != nil {
		respondFailed(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondFailed(w, http.StatusBadRequest, msg)
		return
	}

	sess := sessionFrom(r.Context())
	a := req.toAddress(chi.URLParam(r, "id"), sess.UserID)
	if err := h.addresses.Update(r.Context(), &a); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "address updated", a)
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := h.addresses.Delete(r.Context(), sess.UserID, chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "address deleted", nil)
}
