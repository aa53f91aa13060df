package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
)

// milestoneRule broadcasts a changed milestone date to priority-role
// identities. Dates are compared by calendar day, not exact timestamp, so
// timezone-only drift does not re-notify.
type milestoneRule struct {
	key   string
	label string
}

var milestoneRules = []milestoneRule{
	{key: domain.MilestoneTicketSubmitted, label: "ticket submission date"},
	{key: domain.MilestoneCompletion, label: "completion date"},
}

// NotifierService diffs a pod's before/after images against a fixed rule
// table and fans notifications out to the resolved recipients.
type NotifierService struct {
	notifications repository.NotificationRepository
	identities    *IdentityService
	feed          UnreadInvalidator
	logger        *zap.Logger
}

// NewNotifierService constructs the service. The invalidator may be nil
// when no unread-count cache is in play.
func NewNotifierService(notifications repository.NotificationRepository, identities *IdentityService, feed UnreadInvalidator, logger *zap.Logger) *NotifierService {
	return &NotifierService{notifications: notifications, identities: identities, feed: feed, logger: logger}
}

// Dispatch evaluates every rule once against the mutation and creates
// notification records. A rule fires at most once per mutation and only
// for fields that actually changed. Creation failures are logged and
// swallowed; notifications are best-effort and never fail the parent
// mutation. Returns the notifications that were created.
func (s *NotifierService) Dispatch(ctx context.Context, before, after *domain.Pod, actorID *string) []domain.Notification {
	var created []domain.Notification

	if n := s.applyAssignmentRule(ctx, before, after, actorID); n != nil {
		created = append(created, *n)
	}
	created = append(created, s.applyMilestoneRules(ctx, before, after, actorID)...)

	return created
}

// applyAssignmentRule notifies the new assignee when assignment changed and
// the value resolves to a known identity. The assignee is notified even
// when they are the actor.
func (s *NotifierService) applyAssignmentRule(ctx context.Context, before, after *domain.Pod, actorID *string) *domain.Notification {
	if before.AssignedIdentity == after.AssignedIdentity || after.AssignedIdentity == "" {
		return nil
	}
	assignee, err := s.identities.Resolve(ctx, after.AssignedIdentity)
	if err != nil {
		s.logger.Warn("assignment rule: identity lookup failed",
			zap.String("pod_id", after.ID),
			zap.Error(err))
		return nil
	}
	if assignee == nil {
		return nil
	}

	notification := &domain.Notification{
		RecipientID: assignee.ID,
		Message:     fmt.Sprintf("POD %s has been assigned to you", after.PodCode),
		PodID:       &after.ID,
		ActorID:     actorID,
	}
	if !s.create(ctx, notification) {
		return nil
	}
	return notification
}

func (s *NotifierService) applyMilestoneRules(ctx context.Context, before, after *domain.Pod, actorID *string) []domain.Notification {
	var created []domain.Notification
	var recipients []domain.Identity
	recipientsLoaded := false

	for _, rule := range milestoneRules {
		oldDate := before.MilestoneDate(rule.key)
		newDate := after.MilestoneDate(rule.key)
		if sameCalendarDate(oldDate, newDate) {
			continue
		}

		if !recipientsLoaded {
			var err error
			recipients, err = s.identities.ListByRole(ctx, domain.RolePriority)
			if err != nil {
				s.logger.Warn("milestone rule: recipient lookup failed", zap.Error(err))
				return created
			}
			recipientsLoaded = true
		}

		message := milestoneMessage(after.PodCode, rule.label, newDate)
		for i := range recipients {
			recipient := &recipients[i]
			// role broadcasts skip the actor's own change
			if actorID != nil && recipient.ID == *actorID {
				continue
			}
			notification := &domain.Notification{
				RecipientID: recipient.ID,
				Message:     message,
				PodID:       &after.ID,
				ActorID:     actorID,
			}
			if s.create(ctx, notification) {
				created = append(created, *notification)
			}
		}
	}
	return created
}

func (s *NotifierService) create(ctx context.Context, notification *domain.Notification) bool {
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("notification write failed",
			zap.String("recipient_id", notification.RecipientID),
			zap.Error(err))
		return false
	}
	if s.feed != nil {
		s.feed.Invalidate(ctx, notification.RecipientID)
	}
	return true
}

func milestoneMessage(podCode, label string, date *time.Time) string {
	if date == nil {
		return fmt.Sprintf("POD %s %s was cleared", podCode, label)
	}
	return fmt.Sprintf("POD %s %s set to %s", podCode, label, date.Format("2006-01-02"))
}

// sameCalendarDate compares two optional timestamps by calendar day.
func sameCalendarDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
