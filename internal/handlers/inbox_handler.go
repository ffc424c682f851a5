package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/yuzuru-dev/fedilike/backend/internal/activitypub"
	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
	"github.com/yuzuru-dev/fedilike/backend/internal/services"
	"github.com/yuzuru-dev/fedilike/backend/pkg/logger"
)

const maxActivitySize = 1 << 20 // 1 MiB

// InboxHandler receives federated activities. Only Like-class activities are
// processed here; everything else is archived and acknowledged.
type InboxHandler struct {
	likeService *services.LikeService
	archive     repositories.ActivityArchive
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(likeService *services.LikeService, archive repositories.ActivityArchive) *InboxHandler {
	return &InboxHandler{likeService: likeService, archive: archive}
}

// RegisterInboxRoutes registers the shared and per-actor inbox endpoints
func (h *InboxHandler) RegisterInboxRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) {
	e.POST("/inbox", h.ReceiveActivity, m...)
	e.POST("/users/:username/inbox", h.ReceiveActivity, m...)
}

// RegisterArchiveRoutes registers the audit-log read endpoint
func (h *InboxHandler) RegisterArchiveRoutes(g *echo.Group) {
	g.GET("/admin/inbound_activities", h.GetRecentActivities)
}

// ReceiveActivity handles one inbound activity document. A federation
// receiver answers 202 for every accepted document, including those that end
// up having no visible effect; only structural failures surface as errors.
func (h *InboxHandler) ReceiveActivity(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxActivitySize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read request body")
	}

	activity, err := activitypub.Parse(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Malformed activity document")
	}

	ctx := c.Request().Context()

	// Best effort audit trail; the pipeline result does not depend on it.
	if err := h.archive.ArchiveActivity(ctx, activity.ID, activity.Type, activity.Actor, body); err != nil {
		logger.Warn("activity archive failed", zap.String("activity_id", activity.ID), zap.Error(err))
	}

	switch activity.Type {
	case "Like", "EmojiReact":
		if err := h.likeService.ProcessLike(ctx, activity); err != nil {
			logger.Error("like processing failed", zap.String("activity_id", activity.ID), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process activity")
		}
	default:
		// Other activity types belong to collaborators outside this service.
	}

	return c.NoContent(http.StatusAccepted)
}

// GetRecentActivities retrieves the most recently archived inbound documents
func (h *InboxHandler) GetRecentActivities(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	activities, err := h.archive.GetRecent(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"activities": activities})
}
