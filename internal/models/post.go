package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB. Comments and their
// replies are embedded documents owned by the post.
type Post struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"userId" bson:"user_id"`
	Username  string               `json:"username" bson:"username"` // snapshot at creation
	Content   string               `json:"content" bson:"content"`
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`

	commentIdx map[primitive.ObjectID]int `json:"-" bson:"-"`
}

// Comment is an embedded comment on a post
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"userId" bson:"user_id"`
	Username  string             `json:"username" bson:"username"` // snapshot at comment time
	Text      string             `json:"text" bson:"text"`
	Replies   []Reply            `json:"replies" bson:"replies"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Reply is an embedded reply to a comment
type Reply struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"userId" bson:"user_id"`
	Username  string             `json:"username" bson:"username"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// NewComment builds a comment with a fresh identity key, a username snapshot
// and an empty reply sequence
func NewComment(userID primitive.ObjectID, username, text string) Comment {
	return Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Username:  username,
		Text:      text,
		Replies:   []Reply{},
		CreatedAt: time.Now(),
	}
}

// NewReply builds a reply with a fresh identity key and a username snapshot
func NewReply(userID primitive.ObjectID, username, text string) Reply {
	return Reply{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// LikedBy reports whether userID is in the post's like set
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment looks up an embedded comment by its ID. The position index is
// built lazily and rebuilt when the comment sequence has changed size.
func (p *Post) FindComment(id primitive.ObjectID) *Comment {
	if p.commentIdx == nil || len(p.commentIdx) != len(p.Comments) {
		p.commentIdx = make(map[primitive.ObjectID]int, len(p.Comments))
		for i, c := range p.Comments {
			p.commentIdx[c.ID] = i
		}
	}
	if i, ok := p.commentIdx[id]; ok {
		return &p.Comments[i]
	}
	return nil
}

// CreatePostRequest defines the request body for creating a new post.
// Image may be a direct URI; an uploaded attachment takes precedence.
type CreatePostRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=2000"`
	Image   string `json:"image,omitempty" form:"image"`
}

// UpdatePostRequest defines the request body for editing a post.
// Blank content keeps the stored value.
type UpdatePostRequest struct {
	Content string `json:"content,omitempty" form:"content" validate:"omitempty,max=2000"`
}

// CommentRequest defines the request body for comments and replies
type CommentRequest struct {
	Text string `json:"text" form:"text" validate:"required,min=1,max=500"`
}
