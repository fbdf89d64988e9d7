package services

import (
	"context"
	"time"

	"github.com/clinic-records/apiserver/types"
	"github.com/rs/zerolog"
)

// AuditRepository defines persistence operations for the audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry types.AuditLogEntry) error
	List(ctx context.Context, offset, limit int) ([]types.AuditLogEntry, int, error)
	ListByUser(ctx context.Context, userID, offset, limit int) ([]types.AuditLogEntry, int, error)
}

const defaultAppendTimeout = 3 * time.Second

// AuditService records and reads audit entries.
type AuditService struct {
	repo    AuditRepository
	logger  zerolog.Logger
	timeout time.Duration
}

func NewAuditService(repo AuditRepository, logger zerolog.Logger) *AuditService {
	return &AuditService{
		repo:    repo,
		logger:  logger.With().Str("component", "audit").Logger(),
		timeout: defaultAppendTimeout,
	}
}

// WithAppendTimeout bounds how long Record waits on the store.
func (s *AuditService) WithAppendTimeout(timeout time.Duration) *AuditService {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// Record appends an audit entry for actorID. It is best effort: an unknown
// actor or a failed write is logged and otherwise ignored.
func (s *AuditService) Record(ctx context.Context, actorID int, action, resource string, resourceID *int) {
	evt := s.logger.With().
		Str("action", action).
		Str("resource", resource).
		Logger()

	if actorID < 1 {
		evt.Warn().Msg("unable to record audit entry: acting user unknown")
		return
	}

	// The entry outlives a client that disconnects after the mutation,
	// but never holds the response longer than the append timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	err := s.repo.Append(ctx, types.AuditLogEntry{
		UserID:     actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
	})
	if err != nil {
		evt.Error().Err(err).Int("user_id", actorID).Msg("failed to record audit entry")
	}
}

func (s *AuditService) List(ctx context.Context, offset, limit int) ([]types.AuditLogEntry, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *AuditService) ListByUser(ctx context.Context, userID, offset, limit int) ([]types.AuditLogEntry, int, error) {
	return s.repo.ListByUser(ctx, userID, offset, limit)
}
