package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appPurchase "github.com/trade-hub/trade-hub/internal/application/purchase"
)

type purchaseRequestRequest struct {
	ItemID string `json:"item_id"`
}

type purchaseRespondRequest struct {
	Action            string `json:"action"`
	CounterPriceCents *int64 `json:"counter_price_cents,omitempty"`
}

type purchaseCompleteRequest struct {
	PaymentReference string `json:"payment_reference"`
}

func (s *Server) requestPurchase(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	var req purchaseRequestRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid item_id")
		return
	}
	p, err := s.purchaseSvc.Request(r.Context(), auth.UserID, itemID)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 100, 200)
	purchases, err := s.purchaseSvc.ListByParty(r.Context(), auth.UserID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"purchases": purchases})
}

func (s *Server) getPurchase(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "purchaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid purchaseId")
		return
	}
	p, err := s.purchaseSvc.Get(r.Context(), auth.UserID, id)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) respondPurchase(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "purchaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid purchaseId")
		return
	}
	var req purchaseRespondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	p, err := s.purchaseSvc.Respond(r.Context(), auth.UserID, id, appPurchase.Action(req.Action), req.CounterPriceCents)
	if err != nil {
		respondTradeError(w, err, p)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) respondPurchaseCounter(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "purchaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid purchaseId")
		return
	}
	var req purchaseRespondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	p, err := s.purchaseSvc.RespondToCounter(r.Context(), auth.UserID, id, appPurchase.Action(req.Action))
	if err != nil {
		respondTradeError(w, err, p)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) completePurchase(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "purchaseId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid purchaseId")
		return
	}
	var req purchaseCompleteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	p, err := s.purchaseSvc.Complete(r.Context(), auth.UserID, id, req.PaymentReference)
	if err != nil {
		respondTradeError(w, err, p)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
