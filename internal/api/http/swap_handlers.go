package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appSwap "github.com/trade-hub/trade-hub/internal/application/swap"
	domainSwap "github.com/trade-hub/trade-hub/internal/domain/swap"
)

type swapRequestRequest struct {
	RequestedItemID string `json:"requested_item_id"`
	OfferedItemID   string `json:"offered_item_id"`
}

type swapRespondRequest struct {
	Action        string  `json:"action"`
	CounterItemID *string `json:"counter_item_id,omitempty"`
}

type swapDeliveryRequest struct {
	Method string `json:"method"`
}

type swapConfirmRequest struct {
	Role string `json:"role"`
}

func (s *Server) requestSwap(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	var req swapRequestRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	requestedItem, err := uuid.Parse(req.RequestedItemID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requested_item_id")
		return
	}
	offeredItem, err := uuid.Parse(req.OfferedItemID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid offered_item_id")
		return
	}
	sw, err := s.swapSvc.Request(r.Context(), auth.UserID, requestedItem, offeredItem)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusCreated, sw)
}

func (s *Server) listSwaps(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 100, 200)
	swaps, err := s.swapSvc.ListByParty(r.Context(), auth.UserID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"swaps": swaps})
}

func (s *Server) getSwap(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "swapId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid swapId")
		return
	}
	sw, err := s.swapSvc.Get(r.Context(), auth.UserID, id)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, sw)
}

func (s *Server) respondSwap(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "swapId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid swapId")
		return
	}
	var req swapRespondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	var counterItemID *uuid.UUID
	if req.CounterItemID != nil {
		cid, err := uuid.Parse(*req.CounterItemID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid counter_item_id")
			return
		}
		counterItemID = &cid
	}
	sw, err := s.swapSvc.Respond(r.Context(), auth.UserID, id, appSwap.Action(req.Action), counterItemID)
	if err != nil {
		respondTradeError(w, err, sw)
		return
	}
	respondJSON(w, http.StatusOK, sw)
}

func (s *Server) respondSwapCounter(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "swapId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid swapId")
		return
	}
	var req swapRespondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	sw, err := s.swapSvc.RespondToCounter(r.Context(), auth.UserID, id, appSwap.Action(req.Action))
	if err != nil {
		respondTradeError(w, err, sw)
		return
	}
	respondJSON(w, http.StatusOK, sw)
}

func (s *Server) selectSwapDelivery(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "swapId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid swapId")
		return
	}
	var req swapDeliveryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	sw, err := s.swapSvc.SelectDelivery(r.Context(), auth.UserID, id, domainSwap.Method(req.Method))
	if err != nil {
		respondTradeError(w, err, sw)
		return
	}
	respondJSON(w, http.StatusOK, sw)
}

func (s *Server) confirmSwapCompletion(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "swapId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid swapId")
		return
	}
	var req swapConfirmRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	sw, err := s.swapSvc.ConfirmCompletion(r.Context(), auth.UserID, id, domainSwap.Role(req.Role))
	if err != nil {
		respondTradeError(w, err, sw)
		return
	}
	respondJSON(w, http.StatusOK, sw)
}
