package httpapi

import (
	"net/http"

	appUser "github.com/trade-hub/trade-hub/internal/application/user"
	domainUser "github.com/trade-hub/trade-hub/internal/domain/user"
)

type userUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// publicUser hides the balance of another member's account; only the fields
// a counterparty needs to judge a trade.
type publicUser struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	SoldCount int64  `json:"soldCount"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	filter := domainUser.Filter{}
	if v := r.URL.Query().Get("role"); v != "" {
		role := domainUser.Role(v)
		filter.Role = &role
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domainUser.Status(v)
		filter.Status = &status
	}
	users, err := s.userSvc.ListUsers(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	u, err := s.userSvc.GetUser(r.Context(), id)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	if auth.Role != domainUser.RoleAdmin && auth.UserID != u.UserID {
		respondJSON(w, http.StatusOK, publicUser{
			UserID:    u.UserID.String(),
			Username:  u.Username,
			SoldCount: u.SoldCount,
		})
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	var req userUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	input := appUser.UpdateInput{Username: req.Username}
	if req.Role != nil {
		role := domainUser.Role(*req.Role)
		input.Role = &role
	}
	if req.Status != nil {
		status := domainUser.Status(*req.Status)
		input.Status = &status
	}
	u, err := s.userSvc.UpdateUser(r.Context(), id, input)
	if err != nil {
		respondTradeError(w, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
