package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pod-tracker/internal/api/dto"
	"github.com/spec-kit/pod-tracker/internal/auth"
	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
	"github.com/spec-kit/pod-tracker/internal/service"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// PodsHandler manages pod endpoints.
type PodsHandler struct {
	pods     *service.PodService
	timeline *service.TimelineService
}

// NewPodsHandler constructs handler.
func NewPodsHandler(podService *service.PodService, timelineService *service.TimelineService) *PodsHandler {
	return &PodsHandler{pods: podService, timeline: timelineService}
}

// CreatePod POST /pods.
func (h *PodsHandler) CreatePod(c *fiber.Ctx) error {
	actorID := actorFromContext(c)
	var req dto.CreatePodRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.PodCreateInput{
		PodCode:          req.PodCode,
		Status:           req.Status,
		SubStatus:        req.SubStatus,
		Category:         req.Category,
		WorkableDate:     req.WorkableDate,
		SlaDeadline:      req.SlaDeadline,
		AssignedIdentity: req.AssignedIdentity,
		Milestones:       milestonesFromInput(req.Milestones),
	}
	pod, err := h.pods.CreatePod(c.Context(), actorID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": podResponse(pod)})
}

// ListPods GET /pods.
func (h *PodsHandler) ListPods(c *fiber.Ctx) error {
	filter := parsePodQuery(c)
	pods, err := h.pods.ListPods(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PodResponse, 0, len(pods))
	for i := range pods {
		items = append(items, podResponse(&pods[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetPod GET /pods/:id.
func (h *PodsHandler) GetPod(c *fiber.Ctx) error {
	pod, err := h.pods.GetPod(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": podResponse(pod)})
}

// UpdatePod PATCH /pods/:id.
func (h *PodsHandler) UpdatePod(c *fiber.Ctx) error {
	actorID := actorFromContext(c)
	var req dto.UpdatePodRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	patch := service.PodPatch{
		Status:           req.Status,
		SubStatus:        req.SubStatus,
		Category:         req.Category,
		WorkableDate:     req.WorkableDate,
		SlaDeadline:      req.SlaDeadline,
		AssignedIdentity: req.AssignedIdentity,
		Milestones:       milestonesFromInput(req.Milestones),
	}
	pod, err := h.pods.UpdatePod(c.Context(), actorID, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": podResponse(pod)})
}

// ArchivePod POST /pods/:id/archive.
func (h *PodsHandler) ArchivePod(c *fiber.Ctx) error {
	actorID := actorFromContext(c)
	pod, err := h.pods.ArchivePod(c.Context(), actorID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": podResponse(pod)})
}

// RestorePod POST /pods/:id/restore.
func (h *PodsHandler) RestorePod(c *fiber.Ctx) error {
	actorID := actorFromContext(c)
	pod, err := h.pods.RestorePod(c.Context(), actorID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": podResponse(pod)})
}

// DeletePod DELETE /pods/:id.
func (h *PodsHandler) DeletePod(c *fiber.Ctx) error {
	if err := h.pods.SoftDeletePod(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetTimeline GET /pods/:id/timeline.
func (h *PodsHandler) GetTimeline(c *fiber.Ctx) error {
	asOf := time.Now().UTC()
	if parsed := parseTime(c.Query("as_of")); parsed != nil {
		asOf = *parsed
	}
	timeline, err := h.timeline.BuildForPod(c.Context(), c.Params("id"), asOf)
	if err != nil {
		return err
	}
	resp := dto.TimelineResponse{
		StatusTrack:    intervalResponses(timeline.StatusTrack),
		SubStatusTrack: intervalResponses(timeline.SubStatusTrack),
	}
	switch strings.ToUpper(c.Query("track")) {
	case string(domain.TrackStatus):
		resp.SubStatusTrack = nil
	case string(domain.TrackSubStatus):
		resp.StatusTrack = nil
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetLedger GET /pods/:id/ledger.
func (h *PodsHandler) GetLedger(c *fiber.Ctx) error {
	entries, err := h.timeline.ListLedger(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, ledgerEntryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddIssue POST /pods/:id/issues.
func (h *PodsHandler) AddIssue(c *fiber.Ctx) error {
	actorID := actorFromContext(c)
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	issue, err := h.pods.AddIssue(c.Context(), actorID, c.Params("id"), req.Title)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

// ListIssues GET /pods/:id/issues.
func (h *PodsHandler) ListIssues(c *fiber.Ctx) error {
	issues, err := h.pods.ListIssues(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func actorFromContext(c *fiber.Ctx) *string {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Identity == nil {
		return nil
	}
	id := principal.Identity.ID
	return &id
}

func parsePodQuery(c *fiber.Ctx) repository.PodFilter {
	filter := repository.PodFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.PodStatus(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.PodCategory(strings.TrimSpace(part)))
		}
	}
	if assignee := c.Query("assignee"); assignee != "" {
		filter.AssignedIdentity = &assignee
	}
	if archivedStr := c.Query("archived"); archivedStr != "" {
		archived := archivedStr == "true"
		filter.Archived = &archived
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func milestonesFromInput(input map[string]dto.MilestoneInput) map[string]domain.Milestone {
	if input == nil {
		return nil
	}
	milestones := make(map[string]domain.Milestone, len(input))
	for key, m := range input {
		milestones[key] = domain.Milestone{Date: m.Date, NotApplicable: m.NotApplicable}
	}
	return milestones
}

func podResponse(pod *domain.Pod) dto.PodResponse {
	milestones := make(map[string]dto.MilestoneInput, len(pod.Milestones))
	for key, m := range pod.Milestones {
		milestones[key] = dto.MilestoneInput{Date: m.Date, NotApplicable: m.NotApplicable}
	}
	return dto.PodResponse{
		ID:               pod.ID,
		PodCode:          pod.PodCode,
		Status:           pod.Status,
		SubStatus:        pod.SubStatus,
		Category:         pod.Category,
		WorkableDate:     pod.WorkableDate,
		SlaDeadline:      pod.SlaDeadline,
		AssignedIdentity: pod.AssignedIdentity,
		CreatedByID:      pod.CreatedByID,
		Milestones:       milestones,
		Archived:         pod.Archived,
		CreatedAt:        pod.CreatedAt,
		UpdatedAt:        pod.UpdatedAt,
	}
}

func intervalResponses(intervals []domain.Interval) []dto.IntervalResponse {
	resp := make([]dto.IntervalResponse, 0, len(intervals))
	for _, interval := range intervals {
		resp = append(resp, dto.IntervalResponse{
			Track:         interval.Track,
			Value:         interval.Value,
			Start:         interval.Start,
			End:           interval.End,
			Open:          interval.Open,
			Duration:      interval.Duration,
			PreviousValue: interval.PreviousValue,
			ActorID:       interval.ActorID,
			Origin:        interval.Origin,
		})
	}
	return resp
}

func ledgerEntryResponse(entry *domain.PodLedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:                entry.ID,
		Track:             entry.Track(),
		NewStatus:         entry.NewStatus,
		NewSubStatus:      entry.NewSubStatus,
		PreviousStatus:    entry.PreviousStatus,
		PreviousSubStatus: entry.PreviousSubStatus,
		ActorID:           entry.ActorID,
		CreatedAt:         entry.CreatedAt,
	}
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:        issue.ID,
		PodID:     issue.PodID,
		Title:     issue.Title,
		Status:    issue.Status,
		CreatorID: issue.CreatorID,
		CreatedAt: issue.CreatedAt,
	}
}
