package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
)

// Notification represents a fan-out record created as a side effect of an
// engagement or graph mutation. Post is a weak reference: the post may have
// been deleted since.
type Notification struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Recipient   primitive.ObjectID  `json:"recipient" bson:"recipient"`
	Sender      primitive.ObjectID  `json:"sender" bson:"sender"`
	Type        string              `json:"type" bson:"type"` // like, comment, follow
	Post        *primitive.ObjectID `json:"post,omitempty" bson:"post,omitempty"`
	CommentText string              `json:"commentText,omitempty" bson:"comment_text,omitempty"`
	Read        bool                `json:"read" bson:"read"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
}
