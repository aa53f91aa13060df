package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
)

type fakeIdentityRepo struct {
	identities []*domain.Identity
	createErr  error
}

func (f *fakeIdentityRepo) add(identity domain.Identity) *domain.Identity {
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	stored := identity
	f.identities = append(f.identities, &stored)
	return &stored
}

func (f *fakeIdentityRepo) Create(_ context.Context, identity *domain.Identity) error {
	if f.createErr != nil {
		return f.createErr
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	identity.CreatedAt = time.Now()
	f.identities = append(f.identities, identity)
	return nil
}

func (f *fakeIdentityRepo) Update(_ context.Context, identity *domain.Identity) error {
	for i, stored := range f.identities {
		if stored.ID == identity.ID {
			f.identities[i] = identity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeIdentityRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	for _, stored := range f.identities {
		if stored.ID == id {
			return stored, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeIdentityRepo) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	for _, stored := range f.identities {
		if stored.Email != nil && strings.EqualFold(*stored.Email, email) {
			return stored, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeIdentityRepo) GetByIDs(_ context.Context, ids []string) ([]domain.Identity, error) {
	var out []domain.Identity
	for _, id := range ids {
		for _, stored := range f.identities {
			if stored.ID == id {
				out = append(out, *stored)
			}
		}
	}
	return out, nil
}

func (f *fakeIdentityRepo) FindByNameOrEmail(_ context.Context, values []string) ([]domain.Identity, error) {
	var out []domain.Identity
	for _, stored := range f.identities {
		if stored.MergedInto != nil {
			continue
		}
		for _, value := range values {
			if stored.Name == value || (stored.Email != nil && *stored.Email == value) {
				out = append(out, *stored)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeIdentityRepo) List(_ context.Context, filter repository.IdentityFilter) ([]domain.Identity, error) {
	var out []domain.Identity
	for _, stored := range f.identities {
		if !filter.IncludeMerged && stored.MergedInto != nil {
			continue
		}
		out = append(out, *stored)
	}
	return out, nil
}

func (f *fakeIdentityRepo) ListByRole(_ context.Context, role domain.IdentityRole) ([]domain.Identity, error) {
	var out []domain.Identity
	for _, stored := range f.identities {
		if stored.MergedInto == nil && stored.Role == role {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (f *fakeIdentityRepo) SetMergedInto(_ context.Context, id, survivorID string) error {
	for _, stored := range f.identities {
		if stored.ID == id && stored.MergedInto == nil {
			stored.MergedInto = &survivorID
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakePodRepo struct {
	pods               []domain.Pod
	due                []domain.Pod
	repointExact       int64
	repointFold        int64
	assigneeCalls      [][]string
	creatorRepoints    int
	repointCreatorErr  error
	repointAssigneeErr error
}

func (f *fakePodRepo) Create(_ context.Context, pod *domain.Pod) error {
	if pod.ID == "" {
		pod.ID = uuid.NewString()
	}
	f.pods = append(f.pods, *pod)
	return nil
}

func (f *fakePodRepo) Update(_ context.Context, pod *domain.Pod) error {
	for i := range f.pods {
		if f.pods[i].ID == pod.ID {
			f.pods[i] = *pod
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakePodRepo) GetByID(_ context.Context, id string) (*domain.Pod, error) {
	for i := range f.pods {
		if f.pods[i].ID == id {
			pod := f.pods[i]
			return &pod, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePodRepo) GetByCode(_ context.Context, code string) (*domain.Pod, error) {
	for i := range f.pods {
		if f.pods[i].PodCode == code {
			pod := f.pods[i]
			return &pod, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePodRepo) ListWithFilter(_ context.Context, _ repository.PodFilter) ([]domain.Pod, error) {
	return f.pods, nil
}

func (f *fakePodRepo) ListDueWithin(_ context.Context, _ time.Time) ([]domain.Pod, error) {
	return f.due, nil
}

func (f *fakePodRepo) RepointAssignee(_ context.Context, identifiers []string, _ string) (int64, error) {
	if f.repointAssigneeErr != nil {
		return 0, f.repointAssigneeErr
	}
	f.assigneeCalls = append(f.assigneeCalls, identifiers)
	return f.repointExact, nil
}

func (f *fakePodRepo) RepointAssigneeFold(_ context.Context, _ []string, _ string) (int64, error) {
	return f.repointFold, nil
}

func (f *fakePodRepo) RepointCreator(_ context.Context, _, _ string) error {
	if f.repointCreatorErr != nil {
		return f.repointCreatorErr
	}
	f.creatorRepoints++
	return nil
}

type fakeLedgerRepo struct {
	entries   []domain.PodLedgerEntry
	appendErr error
}

func (f *fakeLedgerRepo) Append(_ context.Context, entry *domain.PodLedgerEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLedgerRepo) ListByPod(_ context.Context, podID string) ([]domain.PodLedgerEntry, error) {
	var out []domain.PodLedgerEntry
	for _, entry := range f.entries {
		if entry.PodID == podID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) RepointActor(_ context.Context, _, _ string) error {
	return nil
}

type fakeNotificationRepo struct {
	created   []domain.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now()
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.created {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	for i := range f.created {
		if f.created[i].ID == id && f.created[i].RecipientID == recipientID {
			f.created[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	var count int64
	for _, n := range f.created {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) RepointActor(_ context.Context, _, _ string) error {
	return nil
}

func (f *fakeNotificationRepo) RepointRecipient(_ context.Context, _, _ string) error {
	return nil
}

type fakeIssueRepo struct {
	issues []domain.Issue
}

func (f *fakeIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	f.issues = append(f.issues, *issue)
	return nil
}

func (f *fakeIssueRepo) ListByPod(_ context.Context, podID string) ([]domain.Issue, error) {
	var out []domain.Issue
	for _, issue := range f.issues {
		if issue.PodID == podID {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (f *fakeIssueRepo) RepointCreator(_ context.Context, _, _ string) error {
	return nil
}

type fakeAuditRepo struct {
	audits []domain.IdentityMergeAudit
}

func (f *fakeAuditRepo) Create(_ context.Context, audit *domain.IdentityMergeAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	f.audits = append(f.audits, *audit)
	return nil
}

func (f *fakeAuditRepo) ListBySurvivor(_ context.Context, survivorID string) ([]domain.IdentityMergeAudit, error) {
	var out []domain.IdentityMergeAudit
	for _, audit := range f.audits {
		if audit.SurvivorID == survivorID {
			out = append(out, audit)
		}
	}
	return out, nil
}

// fakeInvalidator records which recipients had their unread cache dropped.
type fakeInvalidator struct {
	recipients []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, recipientID string) {
	f.recipients = append(f.recipients, recipientID)
}

// fakeTxManager runs the closure directly; the fakes have no transaction
// scope to bind.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
