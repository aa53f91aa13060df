package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pod-tracker/internal/domain"
)

func statusPtr(s domain.PodStatus) *domain.PodStatus          { return &s }
func subStatusPtr(s domain.PodSubStatus) *domain.PodSubStatus { return &s }

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0m"},
		{"negative", -time.Hour, "0m"},
		{"seconds only", 45 * time.Second, "45s"},
		{"truncates sub-second", 59*time.Second + 900*time.Millisecond, "59s"},
		{"minutes", 12 * time.Minute, "12m"},
		{"hours and minutes", 90 * time.Minute, "1h 30m"},
		{"whole hours omit minutes", 3 * time.Hour, "3h"},
		{"days and hours", 25 * time.Hour, "1d 1h"},
		{"all units", 24*time.Hour + time.Hour + time.Minute, "1d 1h 1m"},
		{"truncates seconds above a minute", 2*time.Minute + 59*time.Second, "2m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestBuildTimelineNoEntries(t *testing.T) {
	createdAt := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	asOf := createdAt.Add(48 * time.Hour)
	pod := &domain.Pod{
		ID:        "pod-1",
		Status:    domain.PodStatusInitial,
		SubStatus: domain.SubStatusNotStarted,
		CreatedAt: createdAt,
	}

	timeline := BuildTimeline(pod, nil, asOf)

	require.Len(t, timeline.StatusTrack, 1)
	interval := timeline.StatusTrack[0]
	assert.Equal(t, string(domain.PodStatusInitial), interval.Value)
	assert.Equal(t, createdAt, interval.Start)
	assert.Equal(t, asOf, interval.End)
	assert.True(t, interval.Open)
	assert.Equal(t, "2d", interval.Duration)
	assert.Equal(t, domain.IntervalSynthesized, interval.Origin)

	require.Len(t, timeline.SubStatusTrack, 1)
	assert.Equal(t, string(domain.SubStatusNotStarted), timeline.SubStatusTrack[0].Value)
}

func TestBuildTimelineSynthesizesFirstInterval(t *testing.T) {
	createdAt := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	changedAt := createdAt.Add(3 * time.Hour)
	asOf := createdAt.Add(5 * time.Hour)
	actor := "actor-1"

	pod := &domain.Pod{ID: "pod-1", Status: domain.PodStatusEngineering, CreatedAt: createdAt}
	entries := []domain.PodLedgerEntry{{
		PodID:          "pod-1",
		NewStatus:      statusPtr(domain.PodStatusEngineering),
		PreviousStatus: statusPtr(domain.PodStatusInitial),
		ActorID:        &actor,
		CreatedAt:      changedAt,
	}}

	timeline := BuildTimeline(pod, entries, asOf)

	require.Len(t, timeline.StatusTrack, 2)

	first := timeline.StatusTrack[0]
	assert.Equal(t, string(domain.PodStatusInitial), first.Value)
	assert.Equal(t, createdAt, first.Start)
	assert.Equal(t, changedAt, first.End)
	assert.False(t, first.Open)
	assert.Equal(t, "3h", first.Duration)
	assert.Equal(t, domain.IntervalSynthesized, first.Origin)
	assert.Nil(t, first.ActorID)

	second := timeline.StatusTrack[1]
	assert.Equal(t, string(domain.PodStatusEngineering), second.Value)
	assert.Equal(t, changedAt, second.Start)
	assert.Equal(t, asOf, second.End)
	assert.True(t, second.Open)
	assert.Equal(t, string(domain.PodStatusInitial), second.PreviousValue)
	assert.Equal(t, domain.IntervalFromLedger, second.Origin)
	require.NotNil(t, second.ActorID)
	assert.Equal(t, actor, *second.ActorID)
}

func TestBuildTimelineContiguousIntervals(t *testing.T) {
	createdAt := time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)
	asOf := createdAt.Add(72 * time.Hour)
	pod := &domain.Pod{ID: "pod-1", Status: domain.PodStatusComplete, CreatedAt: createdAt}

	entries := []domain.PodLedgerEntry{
		{
			PodID:          "pod-1",
			NewStatus:      statusPtr(domain.PodStatusEngineering),
			PreviousStatus: statusPtr(domain.PodStatusInitial),
			CreatedAt:      createdAt.Add(2 * time.Hour),
		},
		{
			PodID:          "pod-1",
			NewStatus:      statusPtr(domain.PodStatusOnHold),
			PreviousStatus: statusPtr(domain.PodStatusEngineering),
			CreatedAt:      createdAt.Add(26 * time.Hour),
		},
		{
			PodID:          "pod-1",
			NewStatus:      statusPtr(domain.PodStatusComplete),
			PreviousStatus: statusPtr(domain.PodStatusOnHold),
			CreatedAt:      createdAt.Add(50 * time.Hour),
		},
	}

	timeline := BuildTimeline(pod, entries, asOf)
	track := timeline.StatusTrack
	require.Len(t, track, 4)

	for i := 1; i < len(track); i++ {
		assert.Equal(t, track[i-1].End, track[i].Start, "interval %d not contiguous", i)
		assert.Equal(t, track[i-1].Value, track[i].PreviousValue, "interval %d previous value", i)
	}
	for i := 0; i < len(track)-1; i++ {
		assert.False(t, track[i].Open, "interval %d should be closed", i)
	}
	last := track[len(track)-1]
	assert.True(t, last.Open)
	assert.Equal(t, asOf, last.End)
	assert.Equal(t, "22h", last.Duration)
}

func TestBuildTimelineTracksAreIndependent(t *testing.T) {
	createdAt := time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)
	asOf := createdAt.Add(10 * time.Hour)
	pod := &domain.Pod{
		ID:        "pod-1",
		Status:    domain.PodStatusInitial,
		SubStatus: domain.SubStatusDesignInProgress,
		CreatedAt: createdAt,
	}

	entries := []domain.PodLedgerEntry{{
		PodID:             "pod-1",
		NewSubStatus:      subStatusPtr(domain.SubStatusDesignInProgress),
		PreviousSubStatus: subStatusPtr(domain.SubStatusNotStarted),
		CreatedAt:         createdAt.Add(time.Hour),
	}}

	timeline := BuildTimeline(pod, entries, asOf)

	require.Len(t, timeline.StatusTrack, 1)
	assert.True(t, timeline.StatusTrack[0].Open)

	require.Len(t, timeline.SubStatusTrack, 2)
	assert.Equal(t, string(domain.SubStatusNotStarted), timeline.SubStatusTrack[0].Value)
	assert.Equal(t, string(domain.SubStatusDesignInProgress), timeline.SubStatusTrack[1].Value)
}
