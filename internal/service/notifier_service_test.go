package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

func newNotifier(identityRepo *fakeIdentityRepo) (*NotifierService, *fakeNotificationRepo) {
	notificationRepo := &fakeNotificationRepo{}
	svc := NewNotifierService(notificationRepo, NewIdentityService(identityRepo), nil, zap.NewNop())
	return svc, notificationRepo
}

func TestDispatchNoChanges(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	identityRepo.add(domain.Identity{Name: "Jane Smith", Role: domain.RolePriority})
	svc, notificationRepo := newNotifier(identityRepo)

	pod := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA", AssignedIdentity: "Jane Smith"}

	created := svc.Dispatch(context.Background(), pod, pod, nil)

	assert.Empty(t, created)
	assert.Empty(t, notificationRepo.created)
}

func TestDispatchAssignmentChange(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	jane := identityRepo.add(domain.Identity{Name: "Jane Smith", Role: domain.RoleMember})
	svc, notificationRepo := newNotifier(identityRepo)

	before := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA"}
	after := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA", AssignedIdentity: "Jane Smith"}

	created := svc.Dispatch(context.Background(), before, after, nil)

	require.Len(t, created, 1)
	assert.Equal(t, jane.ID, created[0].RecipientID)
	assert.Contains(t, created[0].Message, "assigned to you")
	require.Len(t, notificationRepo.created, 1)
}

func TestDispatchAssignmentNotifiesActorAssignee(t *testing.T) {
	// self-assignment still notifies: the assignment rule has no actor
	// exclusion
	identityRepo := &fakeIdentityRepo{}
	jane := identityRepo.add(domain.Identity{Name: "Jane Smith", Role: domain.RoleMember})
	svc, _ := newNotifier(identityRepo)

	before := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA"}
	after := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA", AssignedIdentity: "Jane Smith"}

	created := svc.Dispatch(context.Background(), before, after, &jane.ID)

	require.Len(t, created, 1)
	assert.Equal(t, jane.ID, created[0].RecipientID)
}

func TestDispatchAssignmentUnknownIdentity(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	svc, notificationRepo := newNotifier(identityRepo)

	before := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA"}
	after := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA", AssignedIdentity: "Nobody Known"}

	created := svc.Dispatch(context.Background(), before, after, nil)

	assert.Empty(t, created)
	assert.Empty(t, notificationRepo.created)
}

func TestDispatchMilestoneBroadcastExcludesActor(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	actor := identityRepo.add(domain.Identity{Name: "Priority One", Role: domain.RolePriority})
	other := identityRepo.add(domain.Identity{Name: "Priority Two", Role: domain.RolePriority})
	identityRepo.add(domain.Identity{Name: "Plain Member", Role: domain.RoleMember})
	svc, _ := newNotifier(identityRepo)

	completion := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	before := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA"}
	after := &domain.Pod{
		ID:      "pod-1",
		PodCode: "POD-AAA",
		Milestones: map[string]domain.Milestone{
			domain.MilestoneCompletion: {Date: &completion},
		},
	}

	created := svc.Dispatch(context.Background(), before, after, &actor.ID)

	require.Len(t, created, 1)
	assert.Equal(t, other.ID, created[0].RecipientID)
	assert.Contains(t, created[0].Message, "completion date")
	assert.Contains(t, created[0].Message, "2024-03-20")
}

func TestDispatchMilestoneCalendarDateComparison(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	identityRepo.add(domain.Identity{Name: "Priority One", Role: domain.RolePriority})
	svc, notificationRepo := newNotifier(identityRepo)

	morning := time.Date(2024, time.March, 20, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.March, 20, 22, 30, 0, 0, time.UTC)
	before := &domain.Pod{
		ID:      "pod-1",
		PodCode: "POD-AAA",
		Milestones: map[string]domain.Milestone{
			domain.MilestoneTicketSubmitted: {Date: &morning},
		},
	}
	after := &domain.Pod{
		ID:      "pod-1",
		PodCode: "POD-AAA",
		Milestones: map[string]domain.Milestone{
			domain.MilestoneTicketSubmitted: {Date: &evening},
		},
	}

	created := svc.Dispatch(context.Background(), before, after, nil)

	assert.Empty(t, created)
	assert.Empty(t, notificationRepo.created)
}

func TestDispatchMilestoneCleared(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	priority := identityRepo.add(domain.Identity{Name: "Priority One", Role: domain.RolePriority})
	svc, _ := newNotifier(identityRepo)

	submitted := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	before := &domain.Pod{
		ID:      "pod-1",
		PodCode: "POD-AAA",
		Milestones: map[string]domain.Milestone{
			domain.MilestoneTicketSubmitted: {Date: &submitted},
		},
	}
	after := &domain.Pod{
		ID:      "pod-1",
		PodCode: "POD-AAA",
		Milestones: map[string]domain.Milestone{
			domain.MilestoneTicketSubmitted: {Date: &submitted, NotApplicable: true},
		},
	}

	created := svc.Dispatch(context.Background(), before, after, nil)

	require.Len(t, created, 1)
	assert.Equal(t, priority.ID, created[0].RecipientID)
	assert.Contains(t, created[0].Message, "cleared")
}

func TestDispatchInvalidatesUnreadCache(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	jane := identityRepo.add(domain.Identity{Name: "Jane Smith", Role: domain.RoleMember})
	invalidator := &fakeInvalidator{}
	svc := NewNotifierService(&fakeNotificationRepo{}, NewIdentityService(identityRepo), invalidator, zap.NewNop())

	before := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA"}
	after := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA", AssignedIdentity: "Jane Smith"}

	created := svc.Dispatch(context.Background(), before, after, nil)

	require.Len(t, created, 1)
	require.Len(t, invalidator.recipients, 1)
	assert.Equal(t, jane.ID, invalidator.recipients[0])
}

func TestDispatchSkipsInvalidationOnWriteFailure(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	identityRepo.add(domain.Identity{Name: "Jane Smith", Role: domain.RoleMember})
	invalidator := &fakeInvalidator{}
	notificationRepo := &fakeNotificationRepo{createErr: context.DeadlineExceeded}
	svc := NewNotifierService(notificationRepo, NewIdentityService(identityRepo), invalidator, zap.NewNop())

	before := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA"}
	after := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA", AssignedIdentity: "Jane Smith"}

	svc.Dispatch(context.Background(), before, after, nil)

	assert.Empty(t, invalidator.recipients)
}

func TestDispatchSwallowsWriteFailures(t *testing.T) {
	identityRepo := &fakeIdentityRepo{}
	identityRepo.add(domain.Identity{Name: "Jane Smith", Role: domain.RoleMember})
	notificationRepo := &fakeNotificationRepo{createErr: context.DeadlineExceeded}
	svc := NewNotifierService(notificationRepo, NewIdentityService(identityRepo), nil, zap.NewNop())

	before := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA"}
	after := &domain.Pod{ID: "pod-1", PodCode: "POD-AAA", AssignedIdentity: "Jane Smith"}

	created := svc.Dispatch(context.Background(), before, after, nil)

	assert.Empty(t, created)
}
