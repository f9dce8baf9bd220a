package repositories

import (
	"context"
	"testing"

	"agrocommunity_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T, repo PostRepository, author *models.User) *models.Post {
	t.Helper()
	p := &models.Post{Caption: "harvest", Image: "/files/posts/a.jpg", ImageKey: "posts/a.jpg", AuthorID: author.ID}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPostRepository_DeleteRemovesDependents(t *testing.T) {
	repos, db := newGormRepos(t)
	ctx := context.Background()

	// Arrange
	alice := seedUser(t, repos.Users, "alice")
	bob := seedUser(t, repos.Users, "bob")
	post := seedPost(t, repos.Posts, alice)
	require.NoError(t, repos.Posts.AddComment(ctx, &models.Comment{Text: "nice", AuthorID: bob.ID, PostID: post.ID}))
	require.NoError(t, repos.Posts.AddLike(ctx, post.ID, bob.ID))
	saved, err := repos.Users.ToggleBookmark(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.True(t, saved)

	// Act
	err = repos.Posts.Delete(ctx, post.ID)

	// Assert
	require.NoError(t, err)

	_, err = repos.Posts.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	for _, model := range []interface{}{&models.Comment{}, &models.PostLike{}, &models.Bookmark{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("post_id = ?", post.ID).Count(&count).Error)
		assert.Zero(t, count, "%T rows left behind", model)
	}

	bookmarks, err := repos.Users.BookmarkIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
}

func TestPostRepository_DeleteMissing(t *testing.T) {
	repos, _ := newGormRepos(t)

	err := repos.Posts.Delete(context.Background(), "6f1c1a3e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostRepository_LikesAreIdempotent(t *testing.T) {
	repos, _ := newGormRepos(t)
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")
	bob := seedUser(t, repos.Users, "bob")
	post := seedPost(t, repos.Posts, alice)

	require.NoError(t, repos.Posts.AddLike(ctx, post.ID, bob.ID))
	require.NoError(t, repos.Posts.AddLike(ctx, post.ID, bob.ID))

	got, err := repos.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, got.Likes)

	require.NoError(t, repos.Posts.RemoveLike(ctx, post.ID, bob.ID))
	require.NoError(t, repos.Posts.RemoveLike(ctx, post.ID, bob.ID))

	got, err = repos.Posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.NotNil(t, got.Likes)
}

func TestPostRepository_CommentsAndListing(t *testing.T) {
	repos, _ := newGormRepos(t)
	ctx := context.Background()
	alice := seedUser(t, repos.Users, "alice")
	post := seedPost(t, repos.Posts, alice)

	require.NoError(t, repos.Posts.AddComment(ctx, &models.Comment{Text: "first", AuthorID: alice.ID, PostID: post.ID}))
	require.NoError(t, repos.Posts.AddComment(ctx, &models.Comment{Text: "second", AuthorID: alice.ID, PostID: post.ID}))

	comments, err := repos.Posts.FindComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "alice", comments[0].Author.Username)

	_, err = repos.Posts.FindComments(ctx, "6f1c1a3e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, ErrPostNotFound)

	byAuthor, err := repos.Posts.FindByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Len(t, byAuthor[0].Comments, 2)
}
