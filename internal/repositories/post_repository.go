package repositories

import (
	"context"
	"time"

	"github.com/ripplr-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetAllPosts(ctx context.Context, search string) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error
	AddReply(ctx context.Context, postID, commentID primitive.ObjectID, reply *models.Reply) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all posts newest-first, optionally filtered by a
// case-insensitive content substring
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, search string) ([]models.Post, error) {
	filter := bson.M{}
	if search != "" {
		filter["content"] = bson.M{"$regex": primitive.Regex{Pattern: search, Options: "i"}}
	}
	return r.find(ctx, filter)
}

// GetPostsByUserID retrieves posts by a specific user, newest-first
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdateContent replaces a post's content
func (r *MongoPostRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}
	return r.updatePost(ctx, bson.M{"_id": id}, update, ErrPostNotFound)
}

// DeletePost deletes a post by ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AddLike adds userID to the post's like set; $addToSet keeps each user at
// most once even under concurrent toggles
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	return r.updatePost(ctx, bson.M{"_id": postID}, update, ErrPostNotFound)
}

// RemoveLike removes userID from the post's like set
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"likes": userID}}
	return r.updatePost(ctx, bson.M{"_id": postID}, update, ErrPostNotFound)
}

// AddComment appends a comment to the end of the post's comment sequence
func (r *MongoPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	update := bson.M{"$push": bson.M{"comments": comment}}
	return r.updatePost(ctx, bson.M{"_id": postID}, update, ErrPostNotFound)
}

// AddReply appends a reply to the matched comment's reply sequence using the
// positional operator. A post that exists but has no such comment yields
// ErrCommentNotFound.
func (r *MongoPostRepository) AddReply(ctx context.Context, postID, commentID primitive.ObjectID, reply *models.Reply) error {
	filter := bson.M{"_id": postID, "comments._id": commentID}
	update := bson.M{"$push": bson.M{"comments.$.replies": reply}}
	return r.updatePost(ctx, filter, update, ErrCommentNotFound)
}

func (r *MongoPostRepository) updatePost(ctx context.Context, filter, update bson.M, notFound error) error {
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}
