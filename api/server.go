// Package api serves the ordering backend over HTTP+JSON.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pizza-palace/services"
)

type Server struct {
	catalog  *services.Catalog
	carts    *services.CartService
	checkout *services.Checkout
	ledger   *services.Ledger
	auth     *services.Auth
	log      *zap.Logger
}

func NewServer(catalog *services.Catalog, carts *services.CartService, checkout *services.Checkout,
	ledger *services.Ledger, auth *services.Auth, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		ledger:   ledger,
		auth:     auth,
		log:      log,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Get("/menu", s.handleListMenu)
		r.Get("/menu/popular", s.handlePopularMenu)
		r.Get("/menu/categories", s.handleMenuCategories)
		r.Get("/menu/{id}", s.handleGetMenuItem)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)

			r.Get("/cart", s.handleGetCart)
			r.Delete("/cart", s.handleClearCart)
			r.Post("/cart/items", s.handleAddCartItem)
			r.Patch("/cart/items/{lineID}", s.handleSetQuantity)
			r.Delete("/cart/items/{lineID}", s.handleRemoveCartLine)

			r.Post("/checkout", s.handleCheckout)
			r.Get("/orders", s.handleMyOrders)
			r.Get("/orders/{id}", s.handleGetOrder)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/menu", s.handleCreateMenuItem)
				r.Patch("/menu/{id}", s.handleUpdateMenuItem)
				r.Delete("/menu/{id}", s.handleDeleteMenuItem)
				r.Get("/orders", s.handleAdminOrders)
				r.Patch("/orders/{id}/status", s.handleUpdateOrderStatus)
				r.Get("/stats", s.handleStats)
			})
		})
	})
	return r
}
