package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveExistsDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(Config{BasePath: dir, BaseURL: "/files/"})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "posts/a.jpg", strings.NewReader("data"), "image/jpeg"))

	content, err := os.ReadFile(filepath.Join(dir, "posts", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	ok, err := s.Exists(ctx, "posts/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/files/posts/a.jpg", s.URL("posts/a.jpg"))

	require.NoError(t, s.Delete(ctx, "posts/a.jpg"))
	ok, err = s.Exists(ctx, "posts/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "posts/a.jpg"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	err = s.Save(context.Background(), "../escape.txt", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.Exists(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(Config{Type: "s3"})
	assert.Error(t, err)

	s, err := NewS3Storage(Config{Type: "s3", Bucket: "media", Endpoint: "https://acc.r2.cloudflarestorage.com", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com/media/posts/a.jpg", s.URL("posts/a.jpg"))
}
