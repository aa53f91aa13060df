package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// TimelineService reconstructs pod timelines from the ledger.
type TimelineService struct {
	pods   repository.PodRepository
	ledger repository.LedgerRepository
}

// NewTimelineService constructs the service.
func NewTimelineService(pods repository.PodRepository, ledger repository.LedgerRepository) *TimelineService {
	return &TimelineService{pods: pods, ledger: ledger}
}

// BuildForPod loads a pod's ledger and reconstructs both tracks as of now.
func (s *TimelineService) BuildForPod(ctx context.Context, podID string, asOf time.Time) (*domain.Timeline, error) {
	pod, err := s.pods.GetByID(ctx, podID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("pod", map[string]any{"pod_id": podID})
		}
		return nil, apperrors.MapError(err)
	}
	entries, err := s.ledger.ListByPod(ctx, podID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	timeline := BuildTimeline(pod, entries, asOf)
	return &timeline, nil
}

// ListLedger returns the raw ledger entries for a pod, oldest first.
func (s *TimelineService) ListLedger(ctx context.Context, podID string) ([]domain.PodLedgerEntry, error) {
	if _, err := s.pods.GetByID(ctx, podID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("pod", map[string]any{"pod_id": podID})
		}
		return nil, apperrors.MapError(err)
	}
	entries, err := s.ledger.ListByPod(ctx, podID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// BuildTimeline reconstructs both tracks from an ascending ledger slice.
// The ledger never records a pod's initial value, so the first interval of
// each track is synthesized: anchored at the pod's creation time with the
// value in effect before the first entry (the entry's previous field), or
// the pod's live value when the track has no entries at all.
func BuildTimeline(pod *domain.Pod, entries []domain.PodLedgerEntry, asOf time.Time) domain.Timeline {
	return domain.Timeline{
		StatusTrack:    buildTrack(domain.TrackStatus, pod.CreatedAt, string(pod.Status), statusChanges(entries), asOf),
		SubStatusTrack: buildTrack(domain.TrackSubStatus, pod.CreatedAt, string(pod.SubStatus), subStatusChanges(entries), asOf),
	}
}

type trackChange struct {
	value    string
	previous string
	actorID  *string
	at       time.Time
}

func statusChanges(entries []domain.PodLedgerEntry) []trackChange {
	var changes []trackChange
	for i := range entries {
		entry := &entries[i]
		if entry.NewStatus == nil {
			continue
		}
		change := trackChange{value: string(*entry.NewStatus), actorID: entry.ActorID, at: entry.CreatedAt}
		if entry.PreviousStatus != nil {
			change.previous = string(*entry.PreviousStatus)
		}
		changes = append(changes, change)
	}
	return changes
}

func subStatusChanges(entries []domain.PodLedgerEntry) []trackChange {
	var changes []trackChange
	for i := range entries {
		entry := &entries[i]
		if entry.NewSubStatus == nil {
			continue
		}
		change := trackChange{value: string(*entry.NewSubStatus), actorID: entry.ActorID, at: entry.CreatedAt}
		if entry.PreviousSubStatus != nil {
			change.previous = string(*entry.PreviousSubStatus)
		}
		changes = append(changes, change)
	}
	return changes
}

func buildTrack(track domain.LedgerTrack, createdAt time.Time, liveValue string, changes []trackChange, asOf time.Time) []domain.Interval {
	if len(changes) == 0 {
		return []domain.Interval{{
			Track:    track,
			Value:    liveValue,
			Start:    createdAt,
			End:      asOf,
			Open:     true,
			Duration: FormatDuration(asOf.Sub(createdAt)),
			Origin:   domain.IntervalSynthesized,
		}}
	}

	intervals := []domain.Interval{{
		Track:  track,
		Value:  changes[0].previous,
		Start:  createdAt,
		Origin: domain.IntervalSynthesized,
	}}

	for _, change := range changes {
		current := &intervals[len(intervals)-1]
		current.End = change.at
		current.Duration = FormatDuration(change.at.Sub(current.Start))

		intervals = append(intervals, domain.Interval{
			Track:         track,
			Value:         change.value,
			Start:         change.at,
			PreviousValue: current.Value,
			ActorID:       change.actorID,
			Origin:        domain.IntervalFromLedger,
		})
	}

	last := &intervals[len(intervals)-1]
	last.End = asOf
	last.Open = true
	last.Duration = FormatDuration(asOf.Sub(last.Start))
	return intervals
}

// FormatDuration renders an elapsed span as days/hours/minutes, omitting
// zero-valued units, falling back to seconds under one minute and to "0m"
// for a zero span. Values are truncated, not rounded.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	totalMinutes := int(d.Minutes())
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes / 60) % 24
	minutes := totalMinutes % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}
