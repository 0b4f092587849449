package httpapi

import (
	"net/http"

	"github.com/trade-hub/trade-hub/internal/domain/audit"
)

func (s *Server) queryAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 500)
	filter := audit.Filter{}
	if v := r.URL.Query().Get("entity_type"); v != "" {
		et := audit.EntityType(v)
		filter.EntityType = &et
	}
	if v := r.URL.Query().Get("entity_id"); v != "" {
		filter.EntityID = &v
	}
	if v := r.URL.Query().Get("action"); v != "" {
		a := audit.Action(v)
		filter.Action = &a
	}
	if v := r.URL.Query().Get("actor"); v != "" {
		filter.Actor = &v
	}
	entries, err := s.auditSvc.Query(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (s *Server) getAudit(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "auditId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid auditId")
		return
	}
	entry, err := s.auditSvc.Get(r.Context(), id)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "audit entry not found")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}
