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

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SearchUsers(ctx context.Context, query string) ([]models.UserCompact, error)
	GetCompactByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error)
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByUsername retrieves a user by exact username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser writes the mutable profile fields of a user. The follower and
// following arrays are mutated only through the dedicated graph operations so
// a profile save cannot clobber a concurrent follow.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"username":    user.Username,
			"name":        user.Name,
			"bio":         user.Bio,
			"profile_pic": user.ProfilePic,
			"updated_at":  user.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SearchUsers finds users whose username contains the query, case-insensitive
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string) ([]models.UserCompact, error) {
	filter := bson.M{"username": bson.M{"$regex": primitive.Regex{Pattern: query, Options: "i"}}}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "name": 1, "profile_pic": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.UserCompact{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetCompactByIDs resolves a set of user IDs to their display projections.
// Missing users are silently skipped (weak references).
func (r *MongoUserRepository) GetCompactByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	if len(ids) == 0 {
		return []models.UserCompact{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "name": 1, "profile_pic": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.UserCompact{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddFollower adds followerID to the user's follower set ($addToSet keeps the
// set deduplicated under concurrent follows)
func (r *MongoUserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateArray(ctx, userID, bson.M{"$addToSet": bson.M{"followers": followerID}})
}

// RemoveFollower removes followerID from the user's follower set
func (r *MongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateArray(ctx, userID, bson.M{"$pull": bson.M{"followers": followerID}})
}

// AddFollowing adds followingID to the user's following set
func (r *MongoUserRepository) AddFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error {
	return r.updateArray(ctx, userID, bson.M{"$addToSet": bson.M{"following": followingID}})
}

// RemoveFollowing removes followingID from the user's following set
func (r *MongoUserRepository) RemoveFollowing(ctx context.Context, userID, followingID primitive.ObjectID) error {
	return r.updateArray(ctx, userID, bson.M{"$pull": bson.M{"following": followingID}})
}

func (r *MongoUserRepository) updateArray(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
