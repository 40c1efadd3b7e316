package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ripplr-app/backend/internal/models"
	"github.com/ripplr-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, postRepo repositories.PostRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		postRepository:         postRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read", h.MarkAllAsRead)
}

// PostSummary is the shallow post join attached to a notification
type PostSummary struct {
	ID      primitive.ObjectID `json:"id"`
	Content string             `json:"content"`
	Image   string             `json:"image,omitempty"`
}

// NotificationView is a notification enriched with sender and post joins.
// Both references are weak: a deleted sender or post simply leaves the join
// empty.
type NotificationView struct {
	ID          primitive.ObjectID  `json:"id"`
	Type        string              `json:"type"`
	Sender      *models.UserCompact `json:"sender,omitempty"`
	Post        *PostSummary        `json:"post,omitempty"`
	CommentText string              `json:"commentText,omitempty"`
	Read        bool                `json:"read"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) []NotificationView {
	ctx := c.Request().Context()
	views := make([]NotificationView, len(notifications))
	userCache := make(map[primitive.ObjectID]*models.UserCompact)
	postCache := make(map[primitive.ObjectID]*PostSummary)

	for i, n := range notifications {
		views[i] = NotificationView{
			ID:          n.ID,
			Type:        n.Type,
			CommentText: n.CommentText,
			Read:        n.Read,
			CreatedAt:   n.CreatedAt,
		}

		sender, ok := userCache[n.Sender]
		if !ok {
			if user, err := h.userRepository.GetUserByID(ctx, n.Sender); err == nil {
				compact := user.ToCompact()
				sender = &compact
			}
			userCache[n.Sender] = sender
		}
		views[i].Sender = sender

		if n.Post != nil {
			summary, ok := postCache[*n.Post]
			if !ok {
				if post, err := h.postRepository.GetPostByID(ctx, *n.Post); err == nil {
					summary = &PostSummary{ID: post.ID, Content: post.Content, Image: post.Image}
				}
				postCache[*n.Post] = summary
			}
			views[i].Post = summary
		}
	}
	return views
}

// GetNotifications returns the recipient's notifications newest-first, each
// with sender and post joins where resolvable
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifications, err := h.notificationRepository.GetByRecipient(c.Request().Context(), currentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, h.enrichNotifications(c, notifications))
}

// GetUnreadCount returns the unread notification count for polling badges
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), currentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAllAsRead flips every unread notification for the recipient to read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications marked as read"})
}
