package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ripplr-app/backend/internal/models"
	"github.com/ripplr-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// FollowHandler handles follow/unfollow HTTP requests. The two array writes
// of a follow are independent updates with no transaction; $addToSet/$pull
// keep a replayed half idempotent but a crash between them leaves an
// asymmetric edge.
type FollowHandler struct {
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	logger                 *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository, logger *zap.Logger) *FollowHandler {
	return &FollowHandler{
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		logger:                 logger,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.PUT("/users/:id/follow", h.FollowUser)
	g.PUT("/users/:id/unfollow", h.UnfollowUser)
}

// FollowUser adds the acting user to the target's follower set and the
// target to the acting user's following set, then fans out a follow
// notification to the target.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID == currentID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	ctx := c.Request().Context()
	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if target.HasFollower(currentID) {
		return echo.NewHTTPError(http.StatusConflict, "You already follow this user")
	}

	if err := h.userRepository.AddFollower(ctx, targetID, currentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.AddFollowing(ctx, currentID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.fanOutFollow(c, currentID, targetID)

	return c.JSON(http.StatusOK, echo.Map{"message": "User followed"})
}

// UnfollowUser removes the follow edge. No notification is emitted.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID == currentID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot unfollow yourself")
	}

	ctx := c.Request().Context()
	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !target.HasFollower(currentID) {
		return echo.NewHTTPError(http.StatusConflict, "You don't follow this user")
	}

	if err := h.userRepository.RemoveFollower(ctx, targetID, currentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.RemoveFollowing(ctx, currentID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User unfollowed"})
}

// fanOutFollow creates a follow notification for the target. A failed
// fan-out does not fail the request.
func (h *FollowHandler) fanOutFollow(c echo.Context, sender, recipient primitive.ObjectID) {
	notif := &models.Notification{
		Recipient: recipient,
		Sender:    sender,
		Type:      models.NotificationTypeFollow,
	}
	if err := h.notificationRepository.CreateNotification(c.Request().Context(), notif); err != nil {
		h.logger.Warn("follow notification fan-out failed",
			zap.String("sender", sender.Hex()),
			zap.String("recipient", recipient.Hex()),
			zap.Error(err))
	}
}
