package repositories

import (
	"context"
	"sync"
	"testing"

	"agrocommunity_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Name: username, Email: username + "@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestMemoryUsers_CreateRejectsDuplicates(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")

	assert.Equal(t, models.UserRoleFarmer, alice.Role)
	assert.NotEmpty(t, alice.ID)

	err := repos.Users.Create(ctx, &models.User{Username: "other", Email: "alice@x.com"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	err = repos.Users.Create(ctx, &models.User{Username: "alice", Email: "new@x.com"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	exists, err := repos.Users.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryUsers_FindReturnsCopies(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")

	found, err := repos.Users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	found.Name = "changed"

	again, err := repos.Users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Name)

	_, err = repos.Users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryPosts_LikeIsIdempotent(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")
	bob := seedUser(t, repos.Users, "bob")

	post := &models.Post{Caption: "wheat", Image: "/files/a.jpg", AuthorID: alice.ID}
	require.NoError(t, repos.Posts.Create(ctx, post))

	require.NoError(t, repos.Posts.AddLike(ctx, post.ID, bob.ID))
	require.NoError(t, repos.Posts.AddLike(ctx, post.ID, bob.ID))

	found, err := repos.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, found.Likes)

	require.NoError(t, repos.Posts.RemoveLike(ctx, post.ID, bob.ID))
	require.NoError(t, repos.Posts.RemoveLike(ctx, post.ID, bob.ID))

	found, err = repos.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Likes)
}

func TestMemoryPosts_ConcurrentLikes(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")
	post := &models.Post{Image: "x", AuthorID: alice.ID}
	require.NoError(t, repos.Posts.Create(ctx, post))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repos.Posts.AddLike(ctx, post.ID, alice.ID)
		}()
	}
	wg.Wait()

	found, err := repos.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, found.Likes, 1)
}

func TestMemoryPosts_DeleteCascades(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")
	bob := seedUser(t, repos.Users, "bob")

	post := &models.Post{Image: "x", AuthorID: alice.ID}
	require.NoError(t, repos.Posts.Create(ctx, post))
	require.NoError(t, repos.Posts.AddComment(ctx, &models.Comment{Text: "nice", AuthorID: bob.ID, PostID: post.ID}))
	require.NoError(t, repos.Posts.AddLike(ctx, post.ID, bob.ID))
	saved, err := repos.Users.ToggleBookmark(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.True(t, saved)

	require.NoError(t, repos.Posts.Delete(ctx, post.ID))

	_, err = repos.Posts.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = repos.Posts.FindComments(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	ids, err := repos.Posts.IDsByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	bookmarks, err := repos.Users.BookmarkIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)

	assert.ErrorIs(t, repos.Posts.Delete(ctx, post.ID), ErrPostNotFound)
}

func TestMemoryPosts_NewestFirstWithComments(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")

	first := &models.Post{Caption: "first", Image: "x", AuthorID: alice.ID}
	second := &models.Post{Caption: "second", Image: "y", AuthorID: alice.ID}
	require.NoError(t, repos.Posts.Create(ctx, first))
	require.NoError(t, repos.Posts.Create(ctx, second))
	require.NoError(t, repos.Posts.AddComment(ctx, &models.Comment{Text: "c1", AuthorID: alice.ID, PostID: first.ID}))
	require.NoError(t, repos.Posts.AddComment(ctx, &models.Comment{Text: "c2", AuthorID: alice.ID, PostID: first.ID}))

	posts, err := repos.Posts.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Caption)
	assert.Equal(t, "first", posts[1].Caption)
	require.Len(t, posts[1].Comments, 2)
	assert.Equal(t, "c1", posts[1].Comments[0].Text)
	require.NotNil(t, posts[1].Comments[0].Author)
	assert.Equal(t, "alice", posts[1].Comments[0].Author.Username)
	require.NotNil(t, posts[0].Author)
}

func TestMemoryConversations_OneConversationPerPair(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()

	_, err := repos.Conversations.AppendMessage(ctx, "a", "b", "hi")
	require.NoError(t, err)
	_, err = repos.Conversations.AppendMessage(ctx, "b", "a", "hello")
	require.NoError(t, err)

	c1, err := repos.Conversations.FindByParticipants(ctx, "a", "b")
	require.NoError(t, err)
	c2, err := repos.Conversations.FindByParticipants(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)

	messages, err := repos.Conversations.FindMessages(ctx, "b", "a")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Text)
	assert.Equal(t, "hello", messages[1].Text)
}

func TestMemoryConversations_NoConversationIsEmpty(t *testing.T) {
	repos := NewMemoryRepositories()

	messages, err := repos.Conversations.FindMessages(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestMemoryUsers_ToggleFollow(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx := context.Background()

	following, err := repos.Users.ToggleFollow(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := repos.Users.FollowerIDs(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, followers)

	following, err = repos.Users.ToggleFollow(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, following)

	ids, err := repos.Users.FollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryStore_HonoursCancelledContext(t *testing.T) {
	repos := NewMemoryRepositories()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repos.Users.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
