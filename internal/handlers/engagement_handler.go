package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ripplr-app/backend/internal/models"
	"github.com/ripplr-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EngagementHandler handles likes, comments and replies on posts, including
// their notification fan-out. Fan-out is suppressed when the actor is the
// content owner.
type EngagementHandler struct {
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	logger                 *zap.Logger
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository, logger *zap.Logger) *EngagementHandler {
	return &EngagementHandler{
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		logger:                 logger,
	}
}

// RegisterEngagementRoutes registers like, comment and reply routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.POST("/posts/:id/comment", h.CommentOnPost)
	g.POST("/posts/:id/comment/:commentId/reply", h.ReplyToComment)
}

// ToggleLike adds the actor to the post's like set if absent, removes them
// if present. Adding fans out a like notification to the owner; removal
// emits nothing.
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.LikedBy(currentID) {
		if err := h.postRepository.RemoveLike(ctx, postID, currentID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.postRepository.AddLike(ctx, postID, currentID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if post.UserID != currentID {
			h.fanOut(c, &models.Notification{
				Recipient: post.UserID,
				Sender:    currentID,
				Type:      models.NotificationTypeLike,
				Post:      &post.ID,
			})
		}
	}

	updated, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// CommentOnPost appends a comment to the end of the post's comment sequence
// and fans out a comment notification carrying a text excerpt to the owner
func (h *EngagementHandler) CommentOnPost(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user, err := h.userRepository.GetUserByID(ctx, currentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	comment := models.NewComment(user.ID, user.Username, req.Text)
	if err := h.postRepository.AddComment(ctx, postID, &comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != currentID {
		h.fanOut(c, &models.Notification{
			Recipient:   post.UserID,
			Sender:      currentID,
			Type:        models.NotificationTypeComment,
			Post:        &post.ID,
			CommentText: excerpt(req.Text, 50),
		})
	}

	updated, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// ReplyToComment appends a reply to the matched comment's reply sequence and
// fans out a comment-kind notification to the comment's author
func (h *EngagementHandler) ReplyToComment(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	user, err := h.userRepository.GetUserByID(ctx, currentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	reply := models.NewReply(user.ID, user.Username, req.Text)
	if err := h.postRepository.AddReply(ctx, postID, commentID, &reply); err != nil {
		if err == repositories.ErrCommentNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if comment.UserID != currentID {
		h.fanOut(c, &models.Notification{
			Recipient:   comment.UserID,
			Sender:      currentID,
			Type:        models.NotificationTypeComment,
			Post:        &post.ID,
			CommentText: "Replied: " + excerpt(req.Text, 30) + "...",
		})
	}

	updated, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// fanOut creates a notification record. A failed fan-out does not fail the
// request.
func (h *EngagementHandler) fanOut(c echo.Context, notif *models.Notification) {
	if err := h.notificationRepository.CreateNotification(c.Request().Context(), notif); err != nil {
		h.logger.Warn("notification fan-out failed",
			zap.String("type", notif.Type),
			zap.String("recipient", notif.Recipient.Hex()),
			zap.Error(err))
	}
}
