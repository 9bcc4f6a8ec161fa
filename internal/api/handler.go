// Package api exposes the REST surface: chi routes, request decoding, the
// response envelope, and the domain-error mapping.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/xenking/floramart/internal/domain/auth"
	"github.com/xenking/floramart/internal/domain/cart"
	"github.com/xenking/floramart/internal/domain/catalog"
	"github.com/xenking/floramart/internal/domain/order"
	"github.com/xenking/floramart/internal/domain/revenue"
	"github.com/xenking/floramart/internal/domain/user"
	"github.com/xenking/floramart/internal/domain/voucher"
)

// Handler bundles the domain services behind the HTTP routes.
type Handler struct {
	tokens    *auth.TokenManager
	auth      *auth.Service
	catalog   catalog.Repository
	carts     *cart.Service
	orders    *order.Service
	vouchers  voucher.Repository
	validator *voucher.Validator
	addresses user.AddressRepository
	revenue   *revenue.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	tokens *auth.TokenManager,
	authSvc *auth.Service,
	cat catalog.Repository,
	carts *cart.Service,
	orders *order.Service,
	vouchers voucher.Repository,
	validator *voucher.Validator,
	addresses user.AddressRepository,
	rev *revenue.Service,
) *Handler {
	return &Handler{
		tokens:    tokens,
		auth:      authSvc,
		catalog:   cat,
		carts:     carts,
		orders:    orders,
		vouchers:  vouchers,
		validator: validator,
		addresses: addresses,
		revenue:   rev,
	}
}

// Routes builds the /api router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authenticate)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh-token", h.refreshToken)
		r.Post("/logout", h.logout)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.getCart)
		r.Post("/items", h.addCartItem)
		r.Put("/items/{variantID}", h.updateCartItem)
		r.Delete("/items/{variantID}", h.removeCartItem)
	})

	r.Route("/vouchers", func(r chi.Router) {
		r.Get("/", h.listVouchers)
		r.Get("/{id}", h.getVoucher)
		r.With(requireAuth).Post("/validate", h.validateVoucher)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(user.RoleAdmin))
			r.Post("/", h.createVoucher)
			r.Put("/{id}", h.updateVoucher)
			r.Delete("/{id}", h.deleteVoucher)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.checkout)
		r.Get("/{id}", h.getOrder)
		r.Patch("/{id}", h.updateOrderStatus)
		r.Get("/user/{userID}", h.listUserOrders)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.listAddresses)
		r.Post("/", h.createAddress)
		r.Put("/{id}", h.updateAddress)
		r.Delete("/{id}", h.deleteAddress)
	})

	r.Route("/revenue", func(r chi.Router) {
		r.Use(requireRole(user.RoleAdmin, user.RoleShopOwner))
		r.Get("/", h.revenueReport(revenue.Daily, false))
		r.Get("/daily", h.revenueReport(revenue.Daily, false))
		r.Get("/monthly", h.revenueReport(revenue.Monthly, false))
		r.Get("/by-shop", h.revenueReport(revenue.Daily, true))
	})

	return r
}
