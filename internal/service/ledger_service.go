package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
)

// LedgerService appends immutable transition entries when a pod's status
// or sub-status changes.
type LedgerService struct {
	ledger repository.LedgerRepository
	logger *zap.Logger
}

// NewLedgerService constructs the service.
func NewLedgerService(ledger repository.LedgerRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{ledger: ledger, logger: logger}
}

// RecordTransition writes one entry per track whose value differs between
// before and after. A before with no values means the pod was just created:
// the initial assignment is implicit in the pod's live fields and gets no
// entry. Write failures are logged and swallowed; the ledger is an audit
// side-channel and must never fail the parent mutation.
func (s *LedgerService) RecordTransition(ctx context.Context, podID string, actorID *string, before, after domain.TransitionState) {
	if before.Status == nil && before.SubStatus == nil {
		return
	}

	if before.Status != nil && after.Status != nil && *before.Status != *after.Status {
		entry := &domain.PodLedgerEntry{
			PodID:          podID,
			NewStatus:      after.Status,
			PreviousStatus: before.Status,
			ActorID:        actorID,
		}
		s.append(ctx, entry)
	}

	if before.SubStatus != nil && after.SubStatus != nil && *before.SubStatus != *after.SubStatus {
		entry := &domain.PodLedgerEntry{
			PodID:             podID,
			NewSubStatus:      after.SubStatus,
			PreviousSubStatus: before.SubStatus,
			ActorID:           actorID,
		}
		s.append(ctx, entry)
	}
}

func (s *LedgerService) append(ctx context.Context, entry *domain.PodLedgerEntry) {
	if err := s.ledger.Append(ctx, entry); err != nil {
		s.logger.Warn("ledger append failed",
			zap.String("pod_id", entry.PodID),
			zap.String("track", string(entry.Track())),
			zap.Error(err))
	}
}
