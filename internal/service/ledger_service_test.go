package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

func TestRecordTransitionSkipsCreation(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{}
	svc := NewLedgerService(ledgerRepo, zap.NewNop())

	after := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusInitial),
		SubStatus: subStatusPtr(domain.SubStatusNotStarted),
	}
	svc.RecordTransition(context.Background(), "pod-1", nil, domain.TransitionState{}, after)

	assert.Empty(t, ledgerRepo.entries)
}

func TestRecordTransitionUnchanged(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{}
	svc := NewLedgerService(ledgerRepo, zap.NewNop())

	state := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusEngineering),
		SubStatus: subStatusPtr(domain.SubStatusDesignInProgress),
	}
	svc.RecordTransition(context.Background(), "pod-1", nil, state, state)

	assert.Empty(t, ledgerRepo.entries)
}

func TestRecordTransitionStatusOnly(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{}
	svc := NewLedgerService(ledgerRepo, zap.NewNop())
	actor := "actor-1"

	before := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusInitial),
		SubStatus: subStatusPtr(domain.SubStatusNotStarted),
	}
	after := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusEngineering),
		SubStatus: subStatusPtr(domain.SubStatusNotStarted),
	}
	svc.RecordTransition(context.Background(), "pod-1", &actor, before, after)

	require.Len(t, ledgerRepo.entries, 1)
	entry := ledgerRepo.entries[0]
	assert.Equal(t, domain.TrackStatus, entry.Track())
	require.NotNil(t, entry.NewStatus)
	assert.Equal(t, domain.PodStatusEngineering, *entry.NewStatus)
	require.NotNil(t, entry.PreviousStatus)
	assert.Equal(t, domain.PodStatusInitial, *entry.PreviousStatus)
	assert.Nil(t, entry.NewSubStatus)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, actor, *entry.ActorID)
}

func TestRecordTransitionBothTracks(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{}
	svc := NewLedgerService(ledgerRepo, zap.NewNop())

	before := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusInitial),
		SubStatus: subStatusPtr(domain.SubStatusNotStarted),
	}
	after := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusEngineering),
		SubStatus: subStatusPtr(domain.SubStatusKickoffScheduled),
	}
	svc.RecordTransition(context.Background(), "pod-1", nil, before, after)

	require.Len(t, ledgerRepo.entries, 2)
	assert.Equal(t, domain.TrackStatus, ledgerRepo.entries[0].Track())
	assert.Equal(t, domain.TrackSubStatus, ledgerRepo.entries[1].Track())
}

func TestRecordTransitionSwallowsAppendFailure(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{appendErr: context.DeadlineExceeded}
	svc := NewLedgerService(ledgerRepo, zap.NewNop())

	before := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusInitial),
		SubStatus: subStatusPtr(domain.SubStatusNotStarted),
	}
	after := domain.TransitionState{
		Status:    statusPtr(domain.PodStatusEngineering),
		SubStatus: subStatusPtr(domain.SubStatusNotStarted),
	}

	// must not panic or surface the error
	svc.RecordTransition(context.Background(), "pod-1", nil, before, after)
	assert.Empty(t, ledgerRepo.entries)
}
