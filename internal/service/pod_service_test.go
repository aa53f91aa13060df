package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

type podFixture struct {
	svc          *PodService
	podRepo      *fakePodRepo
	ledgerRepo   *fakeLedgerRepo
	identityRepo *fakeIdentityRepo
}

func newPodFixture() *podFixture {
	podRepo := &fakePodRepo{}
	ledgerRepo := &fakeLedgerRepo{}
	identityRepo := &fakeIdentityRepo{}
	identities := NewIdentityService(identityRepo)
	logger := zap.NewNop()
	svc := NewPodService(PodDependencies{
		PodRepo:    podRepo,
		IssueRepo:  &fakeIssueRepo{},
		Ledger:     NewLedgerService(ledgerRepo, logger),
		Notifier:   NewNotifierService(&fakeNotificationRepo{}, identities, nil, logger),
		Identities: identities,
		Logger:     logger,
	})
	return &podFixture{svc: svc, podRepo: podRepo, ledgerRepo: ledgerRepo, identityRepo: identityRepo}
}

func TestCreatePodDefaults(t *testing.T) {
	f := newPodFixture()

	pod, err := f.svc.CreatePod(context.Background(), nil, PodCreateInput{
		Category:     domain.CategoryB,
		WorkableDate: datePtr(2024, time.March, 4),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PodStatusInitial, pod.Status)
	assert.Equal(t, domain.SubStatusNotStarted, pod.SubStatus)
	assert.NotEmpty(t, pod.PodCode)
	require.NotNil(t, pod.SlaDeadline)
	assert.Equal(t, *datePtr(2024, time.March, 18), *pod.SlaDeadline)

	// no ledger entry for the initial assignment
	assert.Empty(t, f.ledgerRepo.entries)
}

func TestCreatePodImportsUnknownAssignee(t *testing.T) {
	f := newPodFixture()

	_, err := f.svc.CreatePod(context.Background(), nil, PodCreateInput{
		Category:         domain.CategoryA,
		AssignedIdentity: "New Engineer",
	})
	require.NoError(t, err)

	matches, err := f.identityRepo.FindByNameOrEmail(context.Background(), []string{"New Engineer"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, domain.RoleMember, matches[0].Role)
	assert.False(t, matches[0].Registered())
}

func TestUpdatePodRecomputesDeadlineOnlyWithBothInputs(t *testing.T) {
	f := newPodFixture()
	manual := datePtr(2024, time.June, 1)
	f.podRepo.pods = []domain.Pod{{
		ID:          "pod-1",
		PodCode:     "POD-AAA",
		Status:      domain.PodStatusEngineering,
		SubStatus:   domain.SubStatusDesignInProgress,
		Category:    domain.CategoryA,
		SlaDeadline: manual,
		Milestones:  map[string]domain.Milestone{},
	}}

	// category alone must not clobber the manual deadline
	category := domain.CategoryB
	pod, err := f.svc.UpdatePod(context.Background(), nil, "pod-1", PodPatch{Category: &category})
	require.NoError(t, err)
	require.NotNil(t, pod.SlaDeadline)
	assert.Equal(t, *manual, *pod.SlaDeadline)

	// category plus workable date recomputes
	workable := datePtr(2024, time.March, 4)
	pod, err = f.svc.UpdatePod(context.Background(), nil, "pod-1", PodPatch{
		Category:     &category,
		WorkableDate: workable,
	})
	require.NoError(t, err)
	require.NotNil(t, pod.SlaDeadline)
	assert.Equal(t, *datePtr(2024, time.March, 18), *pod.SlaDeadline)
}

func TestUpdatePodRecordsTransitions(t *testing.T) {
	f := newPodFixture()
	f.podRepo.pods = []domain.Pod{{
		ID:         "pod-1",
		PodCode:    "POD-AAA",
		Status:     domain.PodStatusInitial,
		SubStatus:  domain.SubStatusNotStarted,
		Milestones: map[string]domain.Milestone{},
	}}

	status := domain.PodStatusEngineering
	subStatus := domain.SubStatusKickoffScheduled
	_, err := f.svc.UpdatePod(context.Background(), nil, "pod-1", PodPatch{
		Status:    &status,
		SubStatus: &subStatus,
	})
	require.NoError(t, err)

	require.Len(t, f.ledgerRepo.entries, 2)
	assert.Equal(t, domain.TrackStatus, f.ledgerRepo.entries[0].Track())
	assert.Equal(t, domain.TrackSubStatus, f.ledgerRepo.entries[1].Track())
}

func TestUpdatePodRejectsDeleted(t *testing.T) {
	f := newPodFixture()
	f.podRepo.pods = []domain.Pod{{
		ID:         "pod-1",
		Deleted:    true,
		Milestones: map[string]domain.Milestone{},
	}}

	status := domain.PodStatusEngineering
	_, err := f.svc.UpdatePod(context.Background(), nil, "pod-1", PodPatch{Status: &status})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestArchivePodRequiresComplete(t *testing.T) {
	f := newPodFixture()
	f.podRepo.pods = []domain.Pod{
		{ID: "pod-active", Status: domain.PodStatusEngineering, Milestones: map[string]domain.Milestone{}},
		{ID: "pod-done", Status: domain.PodStatusComplete, Milestones: map[string]domain.Milestone{}},
	}

	_, err := f.svc.ArchivePod(context.Background(), nil, "pod-active")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	pod, err := f.svc.ArchivePod(context.Background(), nil, "pod-done")
	require.NoError(t, err)
	assert.True(t, pod.Archived)
}

func TestUpdatePodUnknown(t *testing.T) {
	f := newPodFixture()

	_, err := f.svc.UpdatePod(context.Background(), nil, "missing", PodPatch{})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
