package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trade-hub/trade-hub/internal/domain/audit"
)

// Service records negotiation transitions. Logging is best-effort: an audit
// write failure must not fail the transition it describes.
type Service struct {
	auditRepo audit.Repository
	logger    zerolog.Logger
}

// NewService creates an audit service.
func NewService(auditRepo audit.Repository, logger zerolog.Logger) *Service {
	return &Service{
		auditRepo: auditRepo,
		logger:    logger.With().Str("service", "audit").Logger(),
	}
}

// Log appends an entry.
func (s *Service) Log(ctx context.Context, e *audit.Entry) {
	e.AuditID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	if err := s.auditRepo.Create(ctx, e); err != nil {
		s.logger.Warn().Err(err).
			Str("entity_type", string(e.EntityType)).
			Str("entity_id", e.EntityID).
			Str("action", string(e.Action)).
			Msg("failed to write audit entry")
	}
}

// Get retrieves an entry by id.
func (s *Service) Get(ctx context.Context, auditID uuid.UUID) (*audit.Entry, error) {
	return s.auditRepo.GetByID(ctx, auditID)
}

// Query returns entries matching the filter.
func (s *Service) Query(ctx context.Context, filter audit.Filter, limit, offset int) ([]*audit.Entry, error) {
	return s.auditRepo.List(ctx, filter, limit, offset)
}
