package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
	"github.com/yuzuru-dev/fedilike/backend/internal/services"
)

// ReactionHandler exposes read endpoints over the reaction aggregations
type ReactionHandler struct {
	grouped    *services.GroupedReactionService
	favourites repositories.FavouriteRepository
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(grouped *services.GroupedReactionService, favourites repositories.FavouriteRepository) *ReactionHandler {
	return &ReactionHandler{grouped: grouped, favourites: favourites}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.GET("/statuses/:status_id/emoji_reactions", h.GetEmojiReactions)
	g.GET("/statuses/:status_id/favourites/count", h.GetFavouritesCount)
}

// GetEmojiReactions retrieves the grouped emoji reactions for a status
func (h *ReactionHandler) GetEmojiReactions(c echo.Context) error {
	statusID, err := strconv.ParseUint(c.Param("status_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status ID")
	}

	groups, err := h.grouped.Get(c.Request().Context(), uint(statusID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"status_id": c.Param("status_id"), "emoji_reactions": groups})
}

// GetFavouritesCount retrieves the number of favourites on a status
func (h *ReactionHandler) GetFavouritesCount(c echo.Context) error {
	statusID, err := strconv.ParseUint(c.Param("status_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status ID")
	}

	count, err := h.favourites.CountByStatus(uint(statusID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"status_id": c.Param("status_id"), "favourites_count": count})
}
