package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/events"
	"github.com/spec-kit/pod-tracker/internal/repository"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// PodService coordinates pod mutations: the primary update plus the
// lifecycle side-effects (ledger, SLA recompute, notifications).
type PodService struct {
	pods       repository.PodRepository
	issues     repository.IssueRepository
	ledger     *LedgerService
	notifier   *NotifierService
	identities *IdentityService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PodDependencies bundles collaborators for pod service.
type PodDependencies struct {
	PodRepo    repository.PodRepository
	IssueRepo  repository.IssueRepository
	Ledger     *LedgerService
	Notifier   *NotifierService
	Identities *IdentityService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewPodService constructs the service.
func NewPodService(deps PodDependencies) *PodService {
	return &PodService{
		pods:       deps.PodRepo,
		issues:     deps.IssueRepo,
		ledger:     deps.Ledger,
		notifier:   deps.Notifier,
		identities: deps.Identities,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// PodCreateInput describes pod creation payload.
type PodCreateInput struct {
	PodCode          string
	Status           *domain.PodStatus
	SubStatus        *domain.PodSubStatus
	Category         domain.PodCategory
	WorkableDate     *time.Time
	SlaDeadline      *time.Time
	AssignedIdentity string
	Milestones       map[string]domain.Milestone
}

// PodPatch describes a partial update; nil fields are left untouched.
// Milestone entries are merged into the existing map by key.
type PodPatch struct {
	Status           *domain.PodStatus
	SubStatus        *domain.PodSubStatus
	Category         *domain.PodCategory
	WorkableDate     *time.Time
	SlaDeadline      *time.Time
	AssignedIdentity *string
	Milestones       map[string]domain.Milestone
}

// CreatePod creates a pod. No ledger entry is written for the initial
// status assignment; the live fields encode it and the timeline
// reconstructor synthesizes the first interval from the creation time.
func (s *PodService) CreatePod(ctx context.Context, actorID *string, input PodCreateInput) (*domain.Pod, error) {
	code := strings.TrimSpace(input.PodCode)
	if code == "" {
		code = generatePodCode()
	}

	pod := &domain.Pod{
		PodCode:          code,
		Status:           domain.PodStatusInitial,
		SubStatus:        domain.SubStatusNotStarted,
		Category:         input.Category,
		WorkableDate:     input.WorkableDate,
		SlaDeadline:      input.SlaDeadline,
		AssignedIdentity: strings.TrimSpace(input.AssignedIdentity),
		CreatedByID:      actorID,
		Milestones:       input.Milestones,
	}
	if input.Status != nil {
		pod.Status = *input.Status
	}
	if input.SubStatus != nil {
		pod.SubStatus = *input.SubStatus
	}
	if pod.Milestones == nil {
		pod.Milestones = map[string]domain.Milestone{}
	}

	pod.SlaDeadline = ComputeDeadline(pod.Category, pod.WorkableDate, pod.SlaDeadline)

	if pod.AssignedIdentity != "" {
		if _, err := s.identities.EnsureAssignee(ctx, pod.AssignedIdentity); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	if err := s.pods.Create(ctx, pod); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventPodCreated,
		PodID:   pod.ID,
		ActorID: actorID,
		Payload: events.PodCreatedPayload{PodCode: pod.PodCode, Category: pod.Category},
	})
	return pod, nil
}

// UpdatePod applies a patch and runs the lifecycle side-effects: ledger
// entries for status/sub-status diffs, conditional SLA recompute, and the
// change notifier. Only the primary update can fail the call; ledger and
// notification writes are best-effort.
func (s *PodService) UpdatePod(ctx context.Context, actorID *string, podID string, patch PodPatch) (*domain.Pod, error) {
	before, err := s.getPod(ctx, podID)
	if err != nil {
		return nil, err
	}
	if before.Deleted {
		return nil, apperrors.NewConflict("pod is deleted", map[string]any{"pod_id": podID})
	}

	after := clonePod(before)
	if patch.Status != nil {
		after.Status = *patch.Status
	}
	if patch.SubStatus != nil {
		after.SubStatus = *patch.SubStatus
	}
	if patch.Category != nil {
		after.Category = *patch.Category
	}
	if patch.WorkableDate != nil {
		after.WorkableDate = patch.WorkableDate
	}
	if patch.SlaDeadline != nil {
		after.SlaDeadline = patch.SlaDeadline
	}
	if patch.AssignedIdentity != nil {
		after.AssignedIdentity = strings.TrimSpace(*patch.AssignedIdentity)
	}
	for key, milestone := range patch.Milestones {
		after.Milestones[key] = milestone
	}

	// recompute only when the mutation carries both inputs; a milestone-only
	// update must not clobber a manually overridden deadline
	if patch.Category != nil && patch.WorkableDate != nil {
		after.SlaDeadline = ComputeDeadline(after.Category, after.WorkableDate, after.SlaDeadline)
	}

	if after.AssignedIdentity != "" && after.AssignedIdentity != before.AssignedIdentity {
		if _, err := s.identities.EnsureAssignee(ctx, after.AssignedIdentity); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	if err := s.pods.Update(ctx, after); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.ledger.RecordTransition(ctx, after.ID, actorID, domain.StateOf(before), domain.StateOf(after))
	s.notifier.Dispatch(ctx, before, after, actorID)

	if before.Status != after.Status || before.SubStatus != after.SubStatus {
		s.publish(ctx, events.Event{
			Type:    events.EventPodStatusChanged,
			PodID:   after.ID,
			ActorID: actorID,
			Payload: events.PodStatusChangedPayload{
				OldStatus:    before.Status,
				NewStatus:    after.Status,
				OldSubStatus: before.SubStatus,
				NewSubStatus: after.SubStatus,
			},
		})
	}
	if before.AssignedIdentity != after.AssignedIdentity && after.AssignedIdentity != "" {
		s.publish(ctx, events.Event{
			Type:    events.EventPodAssigned,
			PodID:   after.ID,
			ActorID: actorID,
			Payload: events.PodAssignedPayload{AssignedIdentity: after.AssignedIdentity},
		})
	}
	return after, nil
}

// GetPod fetches one pod.
func (s *PodService) GetPod(ctx context.Context, podID string) (*domain.Pod, error) {
	return s.getPod(ctx, podID)
}

// ListPods returns pods matching the filter.
func (s *PodService) ListPods(ctx context.Context, filter repository.PodFilter) ([]domain.Pod, error) {
	pods, err := s.pods.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return pods, nil
}

// ArchivePod moves a completed pod to the archived partition.
func (s *PodService) ArchivePod(ctx context.Context, actorID *string, podID string) (*domain.Pod, error) {
	pod, err := s.getPod(ctx, podID)
	if err != nil {
		return nil, err
	}
	if pod.Deleted {
		return nil, apperrors.NewConflict("pod is deleted", map[string]any{"pod_id": podID})
	}
	if pod.Status != domain.PodStatusComplete {
		return nil, apperrors.NewConflict("only completed pods can be archived", map[string]any{"status": pod.Status})
	}
	if pod.Archived {
		return pod, nil
	}
	pod.Archived = true
	if err := s.pods.Update(ctx, pod); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{Type: events.EventPodArchived, PodID: pod.ID, ActorID: actorID})
	return pod, nil
}

// RestorePod moves an archived pod back to the active partition.
func (s *PodService) RestorePod(ctx context.Context, actorID *string, podID string) (*domain.Pod, error) {
	pod, err := s.getPod(ctx, podID)
	if err != nil {
		return nil, err
	}
	if pod.Deleted {
		return nil, apperrors.NewConflict("pod is deleted", map[string]any{"pod_id": podID})
	}
	if !pod.Archived {
		return pod, nil
	}
	pod.Archived = false
	if err := s.pods.Update(ctx, pod); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{Type: events.EventPodRestored, PodID: pod.ID, ActorID: actorID})
	return pod, nil
}

// SoftDeletePod flags a pod deleted. Terminal: no further writes are legal.
func (s *PodService) SoftDeletePod(ctx context.Context, podID string) error {
	pod, err := s.getPod(ctx, podID)
	if err != nil {
		return err
	}
	if pod.Deleted {
		return nil
	}
	pod.Deleted = true
	if err := s.pods.Update(ctx, pod); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// AddIssue attaches an issue to a pod.
func (s *PodService) AddIssue(ctx context.Context, actorID *string, podID, title string) (*domain.Issue, error) {
	pod, err := s.getPod(ctx, podID)
	if err != nil {
		return nil, err
	}
	if pod.Deleted {
		return nil, apperrors.NewConflict("pod is deleted", map[string]any{"pod_id": podID})
	}
	issue := &domain.Issue{
		PodID:     pod.ID,
		Title:     strings.TrimSpace(title),
		Status:    domain.IssueStatusOpen,
		CreatorID: actorID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	return issue, nil
}

// ListIssues returns a pod's issues.
func (s *PodService) ListIssues(ctx context.Context, podID string) ([]domain.Issue, error) {
	if _, err := s.getPod(ctx, podID); err != nil {
		return nil, err
	}
	issues, err := s.issues.ListByPod(ctx, podID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

func (s *PodService) getPod(ctx context.Context, podID string) (*domain.Pod, error) {
	pod, err := s.pods.GetByID(ctx, podID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("pod", map[string]any{"pod_id": podID})
		}
		return nil, apperrors.MapError(err)
	}
	return pod, nil
}

func (s *PodService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func clonePod(pod *domain.Pod) *domain.Pod {
	clone := *pod
	clone.Milestones = make(map[string]domain.Milestone, len(pod.Milestones))
	for key, milestone := range pod.Milestones {
		clone.Milestones[key] = milestone
	}
	return &clone
}

func generatePodCode() string {
	return "POD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
