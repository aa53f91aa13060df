package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pod-tracker/internal/api/dto"
	"github.com/spec-kit/pod-tracker/internal/domain"
	"github.com/spec-kit/pod-tracker/internal/repository"
	"github.com/spec-kit/pod-tracker/internal/service"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// IdentitiesHandler manages identity directory and merge endpoints.
type IdentitiesHandler struct {
	identities *service.IdentityService
	merges     *service.MergeService
}

// NewIdentitiesHandler constructs handler.
func NewIdentitiesHandler(identityService *service.IdentityService, mergeService *service.MergeService) *IdentitiesHandler {
	return &IdentitiesHandler{identities: identityService, merges: mergeService}
}

// List GET /identities.
func (h *IdentitiesHandler) List(c *fiber.Ctx) error {
	filter := repository.IdentityFilter{
		IncludeMerged:  c.Query("include_merged") == "true",
		RegisteredOnly: c.Query("registered") == "true",
	}
	if roleStr := strings.TrimSpace(c.Query("role")); roleStr != "" {
		role := domain.IdentityRole(strings.ToUpper(roleStr))
		filter.Role = &role
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	identities, err := h.identities.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.IdentityResponse, 0, len(identities))
	for i := range identities {
		items = append(items, identityResponse(&identities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /identities/:id.
func (h *IdentitiesHandler) Get(c *fiber.Ctx) error {
	identity, err := h.identities.ResolveID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": identityResponse(identity)})
}

// Merge POST /identities/merge. Admin only; the role gate lives in routing.
func (h *IdentitiesHandler) Merge(c *fiber.Ctx) error {
	actorID := actorFromContext(c)
	var req dto.MergeIdentitiesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.merges.Merge(c.Context(), actorID, req.IdentityIDs, req.SurvivorID)
	if err != nil {
		return err
	}
	resp := dto.MergeResultResponse{
		SurvivorID: result.SurvivorID,
		MergedIDs:  result.MergedIDs,
	}
	for _, failure := range result.Failed {
		resp.Failed = append(resp.Failed, dto.MergeFailureResponse{
			IdentityID: failure.IdentityID,
			Reason:     failure.Reason,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}
