package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pizza-palace/models"
	"pizza-palace/services"
)

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.ListFilter{Query: q.Get("q")}
	if c := q.Get("category"); c != "" && c != "all" {
		f.Category = models.Category(c)
		if !f.Category.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category: " + c})
			return
		}
	}
	if p := strings.ToLower(q.Get("popular")); p == "1" || p == "true" {
		f.PopularOnly = true
	}
	items, err := s.catalog.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleMenuCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Categories)
}

func (s *Server) handlePopularMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.Popular(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item models.MenuItem
	if err := decodeJSON(r, &item); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.catalog.Add(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var patch models.MenuItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.catalog.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
