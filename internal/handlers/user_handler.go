package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ripplr-app/backend/internal/models"
	"github.com/ripplr-app/backend/internal/repositories"
	"github.com/ripplr-app/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles profile-related HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	fileStore      storage.FileStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, fileStore storage.FileStore) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		fileStore:      fileStore,
	}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/friends", h.GetFriends)
	g.PUT("/users/:id/profile", h.UpdateProfile)
	g.PUT("/users/:id/profile-pic", h.UpdateProfilePic)
}

// GetUser retrieves a user's public profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile fields. Empty
// fields keep their stored value.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if targetID != currentID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own profile")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Check the new username is not taken by someone else
	if req.Username != "" && req.Username != user.Username {
		existing, err := h.userRepository.GetUserByUsername(ctx, req.Username)
		if err == nil && existing.ID != currentID {
			return echo.NewHTTPError(http.StatusConflict, "Username already taken")
		}
		user.Username = req.Username
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfilePic updates the authenticated user's avatar from either a
// multipart attachment or a direct image URI
func (h *UserHandler) UpdateProfilePic(c echo.Context) error {
	currentID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateProfilePicRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	image, err := resolveImage(c, h.fileStore, req.Image)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store uploaded file")
	}
	if image == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user.ProfilePic = image
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Profile picture updated", "profilePic": user.ProfilePic})
}

// SearchUsers finds users by a case-insensitive username substring
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusOK, []models.UserCompact{})
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, users)
}

// GetFriends returns a user's follower and following lists joined to their
// compact profiles
func (h *UserHandler) GetFriends(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followers, err := h.userRepository.GetCompactByIDs(ctx, user.Followers)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	following, err := h.userRepository.GetCompactByIDs(ctx, user.Following)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"followers": followers, "following": following})
}
