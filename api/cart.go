package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pizza-palace/models"
)

type addCartItemRequest struct {
	MenuItemID string      `json:"menu_item_id"`
	Size       models.Size `json:"size"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) writeCart(w http.ResponseWriter, status int, c *models.Cart) {
	writeJSON(w, status, newCartView(c, s.carts.Summary(c)))
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.Get(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCart(w, http.StatusOK, cart)
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cart, err := s.carts.AddItem(r.Context(), userFrom(r.Context()).ID, req.MenuItemID, req.Size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCart(w, http.StatusOK, cart)
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cart, err := s.carts.SetQuantity(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "lineID"), req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCart(w, http.StatusOK, cart)
}

func (s *Server) handleRemoveCartLine(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.RemoveLine(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "lineID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCart(w, http.StatusOK, cart)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := s.carts.Clear(r.Context(), user.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCart(w, http.StatusOK, models.NewCart(user.ID))
}
