package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	domainItem "github.com/trade-hub/trade-hub/internal/domain/item"
	domainUser "github.com/trade-hub/trade-hub/internal/domain/user"
)

type itemCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	PriceCents  int64  `json:"price_cents"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	var req itemCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	it, err := s.itemSvc.Create(r.Context(), auth.UserID, req.Title, req.Description, req.Category, req.PriceCents)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	filter := domainItem.Filter{
		Available: r.URL.Query().Get("available") == "true",
	}
	if v := r.URL.Query().Get("owner_id"); v != "" {
		owner, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid owner_id")
			return
		}
		filter.OwnerID = &owner
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}
	items, err := s.itemSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "itemId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid itemId")
		return
	}
	it, err := s.itemSvc.Get(r.Context(), id)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "itemId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid itemId")
		return
	}
	if err := s.itemSvc.Remove(r.Context(), id, auth.UserID, auth.Role == domainUser.RoleAdmin); err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}
