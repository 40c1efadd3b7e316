package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ripplr-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func toggleLike(t *testing.T, env *testEnv, actor *models.User, postID primitive.ObjectID) (*httptest.ResponseRecorder, error) {
	t.Helper()
	c, rec := env.newContext(http.MethodPost, "/api/posts/:id/like", "", actor)
	c.SetParamNames("id")
	c.SetParamValues(postID.Hex())
	return rec, env.engagementHandler().ToggleLike(c)
}

func comment(t *testing.T, env *testEnv, actor *models.User, postID primitive.ObjectID, text string) error {
	t.Helper()
	body := fmt.Sprintf(`{"text":%q}`, text)
	c, _ := env.newContext(http.MethodPost, "/api/posts/:id/comment", body, actor)
	c.SetParamNames("id")
	c.SetParamValues(postID.Hex())
	return env.engagementHandler().CommentOnPost(c)
}

func reply(t *testing.T, env *testEnv, actor *models.User, postID, commentID primitive.ObjectID, text string) error {
	t.Helper()
	body := fmt.Sprintf(`{"text":%q}`, text)
	c, _ := env.newContext(http.MethodPost, "/api/posts/:id/comment/:commentId/reply", body, actor)
	c.SetParamNames("id", "commentId")
	c.SetParamValues(postID.Hex(), commentID.Hex())
	return env.engagementHandler().ReplyToComment(c)
}

func TestToggleLikeAddsAndNotifies(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	liker := env.addUser("liker")
	post := env.addPost(owner, "hello world")

	rec, err := toggleLike(t, env, liker, post.ID)
	require.NoError(t, err)

	var updated models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.LikedBy(liker.ID))

	notifs, _ := env.notifs.GetByRecipient(context.Background(), owner.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationTypeLike, notifs[0].Type)
	require.NotNil(t, notifs[0].Post)
	assert.Equal(t, post.ID, *notifs[0].Post)
}

func TestDoubleToggleRestoresLikeSet(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	liker := env.addUser("liker")
	post := env.addPost(owner, "hello world")

	_, err := toggleLike(t, env, liker, post.ID)
	require.NoError(t, err)
	_, err = toggleLike(t, env, liker, post.ID)
	require.NoError(t, err)

	stored, _ := env.posts.GetPostByID(context.Background(), post.ID)
	assert.Empty(t, stored.Likes)

	// Removal does not emit or remove notifications
	notifs, _ := env.notifs.GetByRecipient(context.Background(), owner.ID)
	assert.Len(t, notifs, 1)
}

func TestLikeOwnPostEmitsNoNotification(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	post := env.addPost(owner, "hello world")

	_, err := toggleLike(t, env, owner, post.ID)
	require.NoError(t, err)

	stored, _ := env.posts.GetPostByID(context.Background(), post.ID)
	assert.True(t, stored.LikedBy(owner.ID))

	notifs, _ := env.notifs.GetByRecipient(context.Background(), owner.ID)
	assert.Empty(t, notifs)
}

func TestLikeMissingPost(t *testing.T) {
	env := newTestEnv()
	liker := env.addUser("liker")

	_, err := toggleLike(t, env, liker, primitive.NewObjectID())
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestCommentAppendsInOrder(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	commenter := env.addUser("commenter")
	post := env.addPost(owner, "hello world")

	require.NoError(t, comment(t, env, commenter, post.ID, "first"))
	require.NoError(t, comment(t, env, owner, post.ID, "second"))

	stored, _ := env.posts.GetPostByID(context.Background(), post.ID)
	require.Len(t, stored.Comments, 2)
	assert.Equal(t, "first", stored.Comments[0].Text)
	assert.Equal(t, "second", stored.Comments[1].Text)
	assert.Equal(t, "commenter", stored.Comments[0].Username)
	assert.Empty(t, stored.Comments[0].Replies)
	assert.False(t, stored.Comments[0].ID.IsZero())
}

func TestCommentNotificationCarriesExcerpt(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	commenter := env.addUser("commenter")
	post := env.addPost(owner, "hello world")

	long := strings.Repeat("a", 80)
	require.NoError(t, comment(t, env, commenter, post.ID, long))

	notifs, _ := env.notifs.GetByRecipient(context.Background(), owner.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationTypeComment, notifs[0].Type)
	assert.Equal(t, strings.Repeat("a", 50), notifs[0].CommentText)
}

func TestCommentOnOwnPostEmitsNoNotification(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	post := env.addPost(owner, "hello world")

	require.NoError(t, comment(t, env, owner, post.ID, "talking to myself"))

	notifs, _ := env.notifs.GetByRecipient(context.Background(), owner.ID)
	assert.Empty(t, notifs)
}

func TestCommentRequiresText(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	post := env.addPost(owner, "hello world")

	err := comment(t, env, owner, post.ID, "")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestReplyAppendsWithoutTouchingSiblings(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	commenter := env.addUser("commenter")
	replier := env.addUser("replier")
	post := env.addPost(owner, "hello world")

	require.NoError(t, comment(t, env, commenter, post.ID, "first"))
	require.NoError(t, comment(t, env, commenter, post.ID, "second"))

	stored, _ := env.posts.GetPostByID(context.Background(), post.ID)
	firstID := stored.Comments[0].ID

	require.NoError(t, reply(t, env, replier, post.ID, firstID, "a reply"))

	stored, _ = env.posts.GetPostByID(context.Background(), post.ID)
	require.Len(t, stored.Comments, 2)
	require.Len(t, stored.Comments[0].Replies, 1)
	assert.Equal(t, "a reply", stored.Comments[0].Replies[0].Text)
	assert.Equal(t, "replier", stored.Comments[0].Replies[0].Username)
	assert.Empty(t, stored.Comments[1].Replies)
}

func TestReplyNotifiesCommentAuthorWithExcerpt(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	commenter := env.addUser("commenter")
	replier := env.addUser("replier")
	post := env.addPost(owner, "hello world")

	require.NoError(t, comment(t, env, commenter, post.ID, "first"))
	stored, _ := env.posts.GetPostByID(context.Background(), post.ID)

	long := strings.Repeat("b", 60)
	require.NoError(t, reply(t, env, replier, post.ID, stored.Comments[0].ID, long))

	// The comment author gets the reply notification, not the post owner
	notifs, _ := env.notifs.GetByRecipient(context.Background(), commenter.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationTypeComment, notifs[0].Type)
	assert.Equal(t, "Replied: "+strings.Repeat("b", 30)+"...", notifs[0].CommentText)
}

func TestReplyToOwnCommentEmitsNoNotification(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	commenter := env.addUser("commenter")
	post := env.addPost(owner, "hello world")

	require.NoError(t, comment(t, env, commenter, post.ID, "first"))
	stored, _ := env.posts.GetPostByID(context.Background(), post.ID)

	require.NoError(t, reply(t, env, commenter, post.ID, stored.Comments[0].ID, "self reply"))

	notifs, _ := env.notifs.GetByRecipient(context.Background(), commenter.ID)
	assert.Empty(t, notifs)
}

func TestReplyMissingComment(t *testing.T) {
	env := newTestEnv()
	owner := env.addUser("owner")
	post := env.addPost(owner, "hello world")

	err := reply(t, env, owner, post.ID, primitive.NewObjectID(), "nope")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

// Full engagement round trip: like, unlike, comment, mark read.
func TestEngagementScenario(t *testing.T) {
	env := newTestEnv()
	u1 := env.addUser("u1")
	u2 := env.addUser("u2")
	post := env.addPost(u1, "hello")

	ctx := context.Background()

	// U2 likes P
	_, err := toggleLike(t, env, u2, post.ID)
	require.NoError(t, err)
	stored, _ := env.posts.GetPostByID(ctx, post.ID)
	assert.Equal(t, []primitive.ObjectID{u2.ID}, stored.Likes)
	count, _ := env.notifs.GetUnreadCount(ctx, u1.ID)
	assert.EqualValues(t, 1, count)

	// U2 unlikes P: like set empties, notification count unchanged
	_, err = toggleLike(t, env, u2, post.ID)
	require.NoError(t, err)
	stored, _ = env.posts.GetPostByID(ctx, post.ID)
	assert.Empty(t, stored.Likes)
	count, _ = env.notifs.GetUnreadCount(ctx, u1.ID)
	assert.EqualValues(t, 1, count)

	// U2 comments "hi"
	require.NoError(t, comment(t, env, u2, post.ID, "hi"))
	stored, _ = env.posts.GetPostByID(ctx, post.ID)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, "hi", stored.Comments[0].Text)

	notifs, _ := env.notifs.GetByRecipient(ctx, u1.ID)
	require.Len(t, notifs, 2)
	assert.Equal(t, models.NotificationTypeComment, notifs[0].Type, "newest first")
	assert.Equal(t, "hi", notifs[0].CommentText)
	count, _ = env.notifs.GetUnreadCount(ctx, u1.ID)
	assert.EqualValues(t, 2, count)

	// U1 marks all read
	c, _ := env.newContext(http.MethodPut, "/api/notifications/read", "", u1)
	require.NoError(t, env.notificationHandler().MarkAllAsRead(c))
	count, _ = env.notifs.GetUnreadCount(ctx, u1.ID)
	assert.EqualValues(t, 0, count)
}
