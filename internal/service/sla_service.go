package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/events"
	"github.com/spec-kit/pod-tracker/internal/repository"
)

// categorySlaDays maps pod categories to their business-day SLA budget.
// Categories outside the table get no automatic computation.
var categorySlaDays = map[domain.PodCategory]int{
	domain.CategoryA: 22,
	domain.CategoryB: 10,
	domain.CategoryC: 15,
}

// ComputeDeadline derives the SLA deadline from a category and workable
// date. Unknown categories and absent workable dates pass the current
// deadline through unchanged, so a manual override survives.
func ComputeDeadline(category domain.PodCategory, workableDate, current *time.Time) *time.Time {
	days, ok := categorySlaDays[category]
	if !ok || workableDate == nil {
		return current
	}
	deadline := domain.AddBusinessDays(*workableDate, days)
	return &deadline
}

// SlaService runs the deadline reminder sweep.
type SlaService struct {
	pods          repository.PodRepository
	notifications repository.NotificationRepository
	identities    *IdentityService
	feed          UnreadInvalidator
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	windowDays    int
}

// SlaDependencies bundles the sweep's collaborators.
type SlaDependencies struct {
	PodRepo          repository.PodRepository
	NotificationRepo repository.NotificationRepository
	Identities       *IdentityService
	Feed             UnreadInvalidator
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	WindowDays       int
}

// NewSlaService constructs the service.
func NewSlaService(deps SlaDependencies) *SlaService {
	windowDays := deps.WindowDays
	if windowDays <= 0 {
		windowDays = 3
	}
	return &SlaService{
		pods:          deps.PodRepo,
		notifications: deps.NotificationRepo,
		identities:    deps.Identities,
		feed:          deps.Feed,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		windowDays:    windowDays,
	}
}

// RunReminderSweep notifies assignees of pods due within the configured
// business-day window, plus each admin with a per-pod summary. The sweep
// reads first and fans out second; it never holds the pod set in a
// transaction. Running it twice in one day produces duplicate reminders,
// which is tolerated.
func (s *SlaService) RunReminderSweep(ctx context.Context, now time.Time) error {
	horizon := domain.AddBusinessDays(now, s.windowDays)
	pods, err := s.pods.ListDueWithin(ctx, horizon)
	if err != nil {
		return err
	}

	admins, err := s.identities.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		s.logger.Warn("sla sweep: admin lookup failed", zap.Error(err))
		admins = nil
	}

	reminded := 0
	for i := range pods {
		pod := &pods[i]
		if pod.SlaDeadline == nil {
			continue
		}
		daysLeft := domain.BusinessDayDiff(now, *pod.SlaDeadline)
		if daysLeft > s.windowDays {
			continue
		}
		s.remind(ctx, pod, daysLeft, admins)
		reminded++
	}

	s.logger.Info("sla reminder sweep complete",
		zap.Int("candidates", len(pods)),
		zap.Int("reminded", reminded))
	return nil
}

func (s *SlaService) remind(ctx context.Context, pod *domain.Pod, daysLeft int, admins []domain.Identity) {
	message := reminderMessage(pod, daysLeft)

	if assignee, err := s.identities.Resolve(ctx, pod.AssignedIdentity); err == nil && assignee != nil {
		s.createReminder(ctx, assignee.ID, pod.ID, message)
	}
	for i := range admins {
		s.createReminder(ctx, admins[i].ID, pod.ID, message)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSlaReminder,
			PodID:     pod.ID,
			Timestamp: time.Now(),
			Payload: events.SlaReminderPayload{
				PodCode:      pod.PodCode,
				Deadline:     *pod.SlaDeadline,
				BusinessDays: daysLeft,
			},
		})
	}
}

func (s *SlaService) createReminder(ctx context.Context, recipientID, podID, message string) {
	notification := &domain.Notification{
		RecipientID: recipientID,
		Message:     message,
		PodID:       &podID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("sla sweep: notification write failed",
			zap.String("recipient_id", recipientID),
			zap.String("pod_id", podID),
			zap.Error(err))
		return
	}
	if s.feed != nil {
		s.feed.Invalidate(ctx, recipientID)
	}
}

func reminderMessage(pod *domain.Pod, daysLeft int) string {
	switch {
	case daysLeft < 0:
		return fmt.Sprintf("POD %s is past its SLA deadline (%s)", pod.PodCode, pod.SlaDeadline.Format("2006-01-02"))
	case daysLeft == 0:
		return fmt.Sprintf("POD %s SLA deadline is today (%s)", pod.PodCode, pod.SlaDeadline.Format("2006-01-02"))
	default:
		return fmt.Sprintf("POD %s SLA deadline %s is due in %d business days", pod.PodCode, pod.SlaDeadline.Format("2006-01-02"), daysLeft)
	}
}
