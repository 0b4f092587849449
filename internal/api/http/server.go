package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appAudit "github.com/trade-hub/trade-hub/internal/application/audit"
	appAuth "github.com/trade-hub/trade-hub/internal/application/auth"
	appItem "github.com/trade-hub/trade-hub/internal/application/item"
	appNotification "github.com/trade-hub/trade-hub/internal/application/notification"
	appPurchase "github.com/trade-hub/trade-hub/internal/application/purchase"
	appSwap "github.com/trade-hub/trade-hub/internal/application/swap"
	appUser "github.com/trade-hub/trade-hub/internal/application/user"
	"github.com/trade-hub/trade-hub/internal/domain/trade"
	domainUser "github.com/trade-hub/trade-hub/internal/domain/user"
	"github.com/trade-hub/trade-hub/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	itemSvc             *appItem.Service
	swapSvc             *appSwap.Service
	purchaseSvc         *appPurchase.Service
	notificationSvc     *appNotification.Service
	auditSvc            *appAudit.Service
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	sseHub              *sse.Hub
	sessionCookieName   string
	sessionCookieSecure bool
}

func NewServer(
	itemSvc *appItem.Service,
	swapSvc *appSwap.Service,
	purchaseSvc *appPurchase.Service,
	notificationSvc *appNotification.Service,
	auditSvc *appAudit.Service,
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	sseHub *sse.Hub,
	sessionCookieName string,
	sessionCookieSecure bool,
) *Server {
	return &Server{
		itemSvc:             itemSvc,
		swapSvc:             swapSvc,
		purchaseSvc:         purchaseSvc,
		notificationSvc:     notificationSvc,
		auditSvc:            auditSvc,
		authSvc:             authSvc,
		userSvc:             userSvc,
		sseHub:              sseHub,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/items", func(r chi.Router) {
				r.Post("/", s.createItem)
				r.Get("/", s.listItems)
				r.Get("/{itemId}", s.getItem)
				r.Delete("/{itemId}", s.removeItem)
			})

			r.Route("/swaps", func(r chi.Router) {
				r.Post("/", s.requestSwap)
				r.Get("/", s.listSwaps)
				r.Get("/{swapId}", s.getSwap)
				r.Post("/{swapId}/respond", s.respondSwap)
				r.Post("/{swapId}/respond-counter", s.respondSwapCounter)
				r.Post("/{swapId}/delivery", s.selectSwapDelivery)
				r.Post("/{swapId}/confirm", s.confirmSwapCompletion)
			})

			r.Route("/purchases", func(r chi.Router) {
				r.Post("/", s.requestPurchase)
				r.Get("/", s.listPurchases)
				r.Get("/{purchaseId}", s.getPurchase)
				r.Post("/{purchaseId}/respond", s.respondPurchase)
				r.Post("/{purchaseId}/respond-counter", s.respondPurchaseCounter)
				r.Post("/{purchaseId}/complete", s.completePurchase)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.listNotifications)
				r.Get("/unread-count", s.countUnreadNotifications)
				r.Post("/{notificationId}/read", s.markNotificationRead)
				r.Get("/sse", s.sseEndpoint)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/", s.listUsers)
				r.Get("/{userId}", s.getUser)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Patch("/{userId}", s.updateUser)
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/audit", s.queryAudit)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/audit/{auditId}", s.getAudit)
			})
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondTradeError maps the error taxonomy onto HTTP statuses. On a state
// or concurrency conflict, current carries the instance as it is now, so the
// caller can re-render without a second fetch.
func respondTradeError(w http.ResponseWriter, err error, current interface{}) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	switch {
	case errors.Is(err, trade.ErrInvalidOperand):
		status, code = http.StatusBadRequest, "INVALID_OPERAND"
	case errors.Is(err, trade.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, trade.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, trade.ErrInvalidState):
		status, code = http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, trade.ErrConflict), errors.Is(err, trade.ErrStale):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, trade.ErrDependencyFailure):
		status, code = http.StatusBadGateway, "DEPENDENCY_FAILURE"
	}
	body := map[string]interface{}{
		"error":   code,
		"message": err.Error(),
	}
	if current != nil && status == http.StatusConflict {
		body["current"] = current
	}
	respondJSON(w, status, body)
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
