package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account stored in MongoDB
type User struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username   string               `json:"username" bson:"username"`
	Email      string               `json:"email" bson:"email"`
	Password   string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Name       string               `json:"name,omitempty" bson:"name,omitempty"`
	Bio        string               `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfilePic string               `json:"profilePic,omitempty" bson:"profile_pic,omitempty"`
	Followers  []primitive.ObjectID `json:"followers" bson:"followers"`
	Following  []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the shallow-join projection used when embedding a user
// reference in another payload (search results, friends lists, notifications)
type UserCompact struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	Username   string             `json:"username" bson:"username"`
	Name       string             `json:"name,omitempty" bson:"name,omitempty"`
	ProfilePic string             `json:"profilePic,omitempty" bson:"profile_pic,omitempty"`
}

// ToCompact projects a full user down to its display fields
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		ProfilePic: u.ProfilePic,
	}
}

// HasFollower reports whether id is in the user's follower set
func (u *User) HasFollower(id primitive.ObjectID) bool {
	for _, f := range u.Followers {
		if f == id {
			return true
		}
	}
	return false
}

// IsFollowing reports whether id is in the user's following set
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// SignupRequest defines the request body for account creation
type SignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for authentication
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UpdateProfileRequest defines the request body for profile edits.
// Empty fields keep the stored value.
type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty" form:"name" validate:"omitempty,max=50"`
	Username string `json:"username,omitempty" form:"username" validate:"omitempty,min=3,max=30"`
	Bio      string `json:"bio,omitempty" form:"bio" validate:"omitempty,max=160"`
}

// UpdateProfilePicRequest carries a direct image URI when the avatar is not
// sent as a multipart attachment
type UpdateProfilePicRequest struct {
	Image string `json:"image,omitempty" form:"image"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
