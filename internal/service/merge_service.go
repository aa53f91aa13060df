package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/events"
	"github.com/spec-kit/pod-tracker/internal/repository"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// MergeService collapses duplicate identities into a surviving registered
// profile, repointing every foreign reference.
type MergeService struct {
	identities    repository.IdentityRepository
	pods          repository.PodRepository
	issues        repository.IssueRepository
	notifications repository.NotificationRepository
	ledger        repository.LedgerRepository
	audits        repository.MergeAuditRepository
	tx            repository.TxManager
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// MergeDependencies bundles the coordinator's collaborators.
type MergeDependencies struct {
	IdentityRepo     repository.IdentityRepository
	PodRepo          repository.PodRepository
	IssueRepo        repository.IssueRepository
	NotificationRepo repository.NotificationRepository
	LedgerRepo       repository.LedgerRepository
	AuditRepo        repository.MergeAuditRepository
	Tx               repository.TxManager
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewMergeService constructs the service.
func NewMergeService(deps MergeDependencies) *MergeService {
	return &MergeService{
		identities:    deps.IdentityRepo,
		pods:          deps.PodRepo,
		issues:        deps.IssueRepo,
		notifications: deps.NotificationRepo,
		ledger:        deps.LedgerRepo,
		audits:        deps.AuditRepo,
		tx:            deps.Tx,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// Merge absorbs every non-survivor identity in the set into the survivor.
// Preconditions are validated before any write. Each non-survivor is
// processed in its own transaction, so the result may report partial
// success: merged ids and failed ids side by side.
func (s *MergeService) Merge(ctx context.Context, actorID *string, identityIDs []string, survivorID string) (*domain.MergeResult, error) {
	if len(identityIDs) < 2 {
		return nil, apperrors.NewValidationError("at least two identities required", nil)
	}
	survivorInSet := false
	for _, id := range identityIDs {
		if id == survivorID {
			survivorInSet = true
			break
		}
	}
	if !survivorInSet {
		return nil, apperrors.NewValidationError("survivor must be part of the merge set", map[string]any{"survivor_id": survivorID})
	}

	loaded, err := s.identities.GetByIDs(ctx, identityIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID := make(map[string]*domain.Identity, len(loaded))
	for i := range loaded {
		byID[loaded[i].ID] = &loaded[i]
	}
	for _, id := range identityIDs {
		if _, ok := byID[id]; !ok {
			return nil, apperrors.NewNotFound("identity", map[string]any{"identity_id": id})
		}
	}

	survivor := byID[survivorID]
	if !survivor.Registered() {
		return nil, apperrors.NewValidationError("survivor must be a registered identity", map[string]any{"survivor_id": survivorID})
	}
	if survivor.Tombstoned() {
		return nil, apperrors.NewValidationError("survivor has already been merged", map[string]any{"survivor_id": survivorID})
	}

	result := &domain.MergeResult{SurvivorID: survivorID}
	for _, id := range identityIDs {
		if id == survivorID {
			continue
		}
		merged := byID[id]
		if merged.Tombstoned() {
			result.Failed = append(result.Failed, domain.MergeFailure{IdentityID: id, Reason: "already merged"})
			continue
		}
		if err := s.absorb(ctx, actorID, merged, survivor); err != nil {
			s.logger.Error("identity merge failed",
				zap.String("merged_id", id),
				zap.String("survivor_id", survivorID),
				zap.Error(err))
			result.Failed = append(result.Failed, domain.MergeFailure{IdentityID: id, Reason: err.Error()})
			continue
		}
		result.MergedIDs = append(result.MergedIDs, id)
	}

	if len(result.MergedIDs) > 0 && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventIdentityMerged,
			ActorID:   actorID,
			Timestamp: time.Now(),
			Payload: events.IdentityMergedPayload{
				SurvivorID: survivorID,
				MergedIDs:  result.MergedIDs,
			},
		})
	}
	return result, nil
}

// absorb runs the full repoint for one non-survivor inside a single
// transaction: tombstone, assignee repoints (exact then case-insensitive),
// foreign-key repoints, audit row.
func (s *MergeService) absorb(ctx context.Context, actorID *string, merged, survivor *domain.Identity) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.identities.SetMergedInto(ctx, merged.ID, survivor.ID); err != nil {
			return err
		}

		identifiers := merged.KeySet().Values()
		exact, err := s.pods.RepointAssignee(ctx, identifiers, survivor.Name)
		if err != nil {
			return err
		}
		folded, err := s.pods.RepointAssigneeFold(ctx, identifiers, survivor.Name)
		if err != nil {
			return err
		}

		if err := s.pods.RepointCreator(ctx, merged.ID, survivor.ID); err != nil {
			return err
		}
		if err := s.issues.RepointCreator(ctx, merged.ID, survivor.ID); err != nil {
			return err
		}
		if err := s.notifications.RepointActor(ctx, merged.ID, survivor.ID); err != nil {
			return err
		}
		if err := s.notifications.RepointRecipient(ctx, merged.ID, survivor.ID); err != nil {
			return err
		}
		if err := s.ledger.RepointActor(ctx, merged.ID, survivor.ID); err != nil {
			return err
		}

		return s.audits.Create(ctx, &domain.IdentityMergeAudit{
			MergedID:      merged.ID,
			SurvivorID:    survivor.ID,
			MergedBy:      actorID,
			PodsRepointed: int(exact + folded),
		})
	})
	if err != nil {
		return apperrors.NewTransactionFailed("merge repoint failed", err)
	}
	return nil
}
