package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pizza-palace/models"
	"pizza-palace/services"
)

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var in services.CheckoutInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := userFrom(r.Context())
	order, err := s.checkout.Submit(r.Context(), *user, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.requestLog(r).Info("order_created",
		zap.Int64("order_id", order.ID),
		zap.String("user_id", user.ID),
		zap.String("total", services.FormatMoney(order.Total)),
	)
	writeJSON(w, http.StatusCreated, newOrderView(order))
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.ledger.OrdersForUser(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderViews(orders))
}

// handleGetOrder shows an order to its owner or to an admin; anyone else gets 404.
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user := userFrom(r.Context())
	if order.UserID != user.ID && !user.IsAdmin() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(order))
}

// handleAdminOrders lists orders newest first. ?status= filters by stage; ?limit= keeps
// only the newest n.
func (s *Server) handleAdminOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := -1
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad limit: " + raw})
			return
		}
		limit = n
	}
	status := models.OrderStatus(q.Get("status"))
	if status == "all" {
		status = ""
	}
	if status != "" && !services.ValidStatus(status) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown status: " + string(status)})
		return
	}

	var (
		orders []models.Order
		err    error
	)
	if status == "" && limit >= 0 {
		orders, err = s.ledger.Recent(r.Context(), limit)
	} else {
		orders, err = s.ledger.List(r.Context(), status)
		if limit >= 0 && len(orders) > limit {
			orders = orders[:limit]
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderViews(orders))
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := s.ledger.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(order))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsView(stats))
}
