package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ripplr-app/backend/internal/models"
	"github.com/ripplr-app/backend/internal/repositories"
	"github.com/ripplr-app/backend/internal/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// In-memory repository fakes mirroring the Mongo implementations' semantics:
// $addToSet-style deduplicated array adds, $pull-style removes, newest-first
// reads, sentinel not-found errors.

var fakeClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeUserRepo struct {
	users map[primitive.ObjectID]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]models.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = fakeClock
	user.UpdatedAt = fakeClock
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	found := u
	return &found, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	stored.Username = user.Username
	stored.Name = user.Name
	stored.Bio = user.Bio
	stored.ProfilePic = user.ProfilePic
	stored.UpdatedAt = fakeClock
	r.users[user.ID] = stored
	return nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, query string) ([]models.UserCompact, error) {
	results := []models.UserCompact{}
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			results = append(results, u.ToCompact())
		}
	}
	return results, nil
}

func (r *fakeUserRepo) GetCompactByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.UserCompact, error) {
	results := []models.UserCompact{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			results = append(results, u.ToCompact())
		}
	}
	return results, nil
}

func (r *fakeUserRepo) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return r.mutateArrays(userID, func(u *models.User) {
		u.Followers = addToSet(u.Followers, followerID)
	})
}

func (r *fakeUserRepo) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return r.mutateArrays(userID, func(u *models.User) {
		u.Followers = pull(u.Followers, followerID)
	})
}

func (r *fakeUserRepo) AddFollowing(_ context.Context, userID, followingID primitive.ObjectID) error {
	return r.mutateArrays(userID, func(u *models.User) {
		u.Following = addToSet(u.Following, followingID)
	})
}

func (r *fakeUserRepo) RemoveFollowing(_ context.Context, userID, followingID primitive.ObjectID) error {
	return r.mutateArrays(userID, func(u *models.User) {
		u.Following = pull(u.Following, followingID)
	})
}

func (r *fakeUserRepo) mutateArrays(userID primitive.ObjectID, fn func(*models.User)) error {
	stored, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	fn(&stored)
	r.users[userID] = stored
	return nil
}

func addToSet(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range set {
		if existing == id {
			return set
		}
	}
	return append(set, id)
}

func pull(set []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for _, existing := range set {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

type fakePostRepo struct {
	posts map[primitive.ObjectID]models.Post
	seq   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]models.Post)}
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = fakeClock.Add(time.Duration(r.seq) * time.Second)
	post.UpdatedAt = post.CreatedAt
	r.seq++
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.posts[post.ID] = *post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	found := p
	return &found, nil
}

func (r *fakePostRepo) GetAllPosts(_ context.Context, search string) ([]models.Post, error) {
	results := []models.Post{}
	for _, p := range r.posts {
		if search == "" || strings.Contains(strings.ToLower(p.Content), strings.ToLower(search)) {
			results = append(results, p)
		}
	}
	sortNewestFirst(results)
	return results, nil
}

func (r *fakePostRepo) GetPostsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	results := []models.Post{}
	for _, p := range r.posts {
		if p.UserID == userID {
			results = append(results, p)
		}
	}
	sortNewestFirst(results)
	return results, nil
}

func sortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func (r *fakePostRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) error {
	return r.mutate(id, func(p *models.Post) {
		p.Content = content
	})
}

func (r *fakePostRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLike(_ context.Context, postID, userID primitive.ObjectID) error {
	return r.mutate(postID, func(p *models.Post) {
		p.Likes = addToSet(p.Likes, userID)
	})
}

func (r *fakePostRepo) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	return r.mutate(postID, func(p *models.Post) {
		p.Likes = pull(p.Likes, userID)
	})
}

func (r *fakePostRepo) AddComment(_ context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	return r.mutate(postID, func(p *models.Post) {
		p.Comments = append(p.Comments, *comment)
	})
}

func (r *fakePostRepo) AddReply(_ context.Context, postID, commentID primitive.ObjectID, reply *models.Reply) error {
	stored, ok := r.posts[postID]
	if !ok {
		return repositories.ErrCommentNotFound
	}
	for i := range stored.Comments {
		if stored.Comments[i].ID == commentID {
			stored.Comments[i].Replies = append(stored.Comments[i].Replies, *reply)
			r.posts[postID] = stored
			return nil
		}
	}
	return repositories.ErrCommentNotFound
}

func (r *fakePostRepo) mutate(postID primitive.ObjectID, fn func(*models.Post)) error {
	stored, ok := r.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	fn(&stored)
	r.posts[postID] = stored
	return nil
}

type fakeNotificationRepo struct {
	notifications []models.Notification
	seq           int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = fakeClock.Add(time.Duration(r.seq) * time.Second)
	r.seq++
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipient(_ context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	results := []models.Notification{}
	for _, n := range r.notifications {
		if n.Recipient == recipient {
			results = append(results, n)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.Recipient == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipient primitive.ObjectID) error {
	for i := range r.notifications {
		if r.notifications[i].Recipient == recipient {
			r.notifications[i].Read = true
		}
	}
	return nil
}

// testEnv wires the handlers to the fakes the way the router wires them to
// Mongo.
type testEnv struct {
	e      *echo.Echo
	users  *fakeUserRepo
	posts  *fakePostRepo
	notifs *fakeNotificationRepo
}

func newTestEnv() *testEnv {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return &testEnv{
		e:      e,
		users:  newFakeUserRepo(),
		posts:  newFakePostRepo(),
		notifs: newFakeNotificationRepo(),
	}
}

func (env *testEnv) followHandler() *FollowHandler {
	return NewFollowHandler(env.users, env.notifs, zap.NewNop())
}

func (env *testEnv) engagementHandler() *EngagementHandler {
	return NewEngagementHandler(env.posts, env.users, env.notifs, zap.NewNop())
}

func (env *testEnv) postHandler() *PostHandler {
	return NewPostHandler(env.posts, env.users, nil)
}

func (env *testEnv) notificationHandler() *NotificationHandler {
	return NewNotificationHandler(env.notifs, env.users, env.posts)
}

func (env *testEnv) authHandler() *AuthHandler {
	return NewAuthHandler(env.users, "test-secret")
}

func (env *testEnv) userHandler() *UserHandler {
	return NewUserHandler(env.users, nil)
}

func (env *testEnv) addUser(username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	_ = env.users.CreateUser(context.Background(), user)
	return user
}

func (env *testEnv) addPost(owner *models.User, content string) *models.Post {
	post := &models.Post{
		UserID:   owner.ID,
		Username: owner.Username,
		Content:  content,
	}
	_ = env.posts.CreatePost(context.Background(), post)
	return post
}

// newContext builds an Echo context with an optional JSON body and an
// optional authenticated user, mirroring what the JWT middleware would set.
func (env *testEnv) newContext(method, path, body string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if user != nil {
		c.Set("user", &models.JwtCustomClaims{UserID: user.ID.Hex(), Username: user.Username})
	}
	return c, rec
}
