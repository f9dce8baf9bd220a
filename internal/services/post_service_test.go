package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/pkg/apperrors"
	"agrocommunity_backend/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestPostService_Create(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	post, err := f.services.Post.Create(context.Background(), alice.ID, " first harvest ", pngImage(t))

	require.NoError(t, err)
	assert.Equal(t, "first harvest", post.Caption)
	assert.True(t, strings.HasPrefix(post.Image, "/files/posts/"))
	assert.True(t, strings.HasSuffix(post.Image, ".jpg"))
	assert.Equal(t, alice.ID, post.Author.ID)

	all, err := f.services.Post.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestPostService_CreateRejectsBadImage(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, err := f.services.Post.Create(context.Background(), alice.ID, "x", strings.NewReader("not an image"))
	require.Error(t, err)
	assert.Equal(t, 400, httpCode(t, err))

	_, err = f.services.Post.Create(context.Background(), alice.ID, "x", nil)
	assert.ErrorIs(t, err, apperrors.ErrImageRequired)
}

func TestPostService_LikeIsIdempotentAndNotifiesOwner(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	post := f.post(t, alice)
	aliceConn := f.connect(alice.ID)

	// Act
	_, err := f.services.Post.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	liked, err := f.services.Post.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{bob.ID}, liked.Likes)

	notes := aliceConn.named(ws.EventNotification)
	require.Len(t, notes, 2)
	n := notes[0].Data.(models.Notification)
	assert.Equal(t, models.NotificationLike, n.Type)
	assert.Equal(t, bob.ID, n.UserID)
	assert.Equal(t, "bob", n.UserDetails.Username)
	assert.Equal(t, post.ID, n.PostID)
	assert.Equal(t, "Your post was liked", n.Message)

	_, err = f.services.Post.Dislike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	disliked, err := f.services.Post.Dislike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, disliked.Likes)
}

func TestPostService_SelfLikeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	post := f.post(t, alice)
	conn := f.connect(alice.ID)

	_, err := f.services.Post.Like(context.Background(), alice.ID, post.ID)
	require.NoError(t, err)

	assert.Empty(t, conn.named(ws.EventNotification))
}

func TestPostService_LikeMissingPost(t *testing.T) {
	f := newFixture(t)
	bob := f.user(t, "bob")

	_, err := f.services.Post.Like(context.Background(), bob.ID, "3f1c0a52-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestPostService_Comments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	post := f.post(t, alice)
	conn := f.connect(alice.ID)

	_, err := f.services.Post.Comments(ctx, post.ID)
	assert.ErrorIs(t, err, apperrors.ErrCommentsNotFound)

	comment, err := f.services.Post.Comment(ctx, bob.ID, post.ID, "nice wheat")
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.Author.Username)

	comments, err := f.services.Post.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice wheat", comments[0].Text)

	notes := conn.named(ws.EventNotification)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationComment, notes[0].Data.(models.Notification).Type)

	_, err = f.services.Post.Comments(ctx, "3f1c0a52-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestPostService_DeleteOnlyByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	post := f.post(t, alice)

	err := f.services.Post.Delete(ctx, bob.ID, post.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotPostAuthor)

	require.NoError(t, f.services.Post.Delete(ctx, alice.ID, post.ID))

	err = f.services.Post.Delete(ctx, alice.ID, post.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestPostService_ToggleBookmark(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	post := f.post(t, alice)

	saved, err := f.services.Post.ToggleBookmark(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = f.services.Post.ToggleBookmark(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, saved)
}
