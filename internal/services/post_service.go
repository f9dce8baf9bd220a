package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"agrocommunity_backend/internal/imageprocessor"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/internal/storage"
	"agrocommunity_backend/pkg/apperrors"

	"github.com/google/uuid"
)

type PostService interface {
	// Create normalizes the image to JPEG, stores it and saves the post.
	Create(ctx context.Context, authorID, caption string, image io.Reader) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)

	// Like and Dislike are idempotent. The post owner is notified unless
	// they reacted to their own post.
	Like(ctx context.Context, userID, postID string) (*models.Post, error)
	Dislike(ctx context.Context, userID, postID string) (*models.Post, error)

	Comment(ctx context.Context, userID, postID, text string) (*models.Comment, error)
	Comments(ctx context.Context, postID string) ([]models.Comment, error)

	Delete(ctx context.Context, userID, postID string) error
	// ToggleBookmark reports whether the post is saved afterwards.
	ToggleBookmark(ctx context.Context, userID, postID string) (bool, error)
}

type PostServiceImpl struct {
	posts      repositories.PostRepository
	users      repositories.UserRepository
	storage    storage.Storage
	images     *imageprocessor.Processor
	dispatcher *Dispatcher
}

func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	store storage.Storage,
	images *imageprocessor.Processor,
	dispatcher *Dispatcher,
) PostService {
	return &PostServiceImpl{
		posts:      posts,
		users:      users,
		storage:    store,
		images:     images,
		dispatcher: dispatcher,
	}
}

// ============================================
// Posts
// ============================================

func (s *PostServiceImpl) Create(ctx context.Context, authorID, caption string, image io.Reader) (*models.Post, error) {
	if image == nil {
		return nil, apperrors.ErrImageRequired
	}

	author, err := s.findUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	buf, err := s.images.ToJPEG(image)
	if err != nil {
		switch {
		case errors.Is(err, imageprocessor.ErrNotImage):
			return nil, apperrors.NewBadRequestError("Unsupported image format")
		case errors.Is(err, imageprocessor.ErrImageTooBig):
			return nil, apperrors.NewBadRequestError("Image dimensions are too large")
		}
		return nil, apperrors.InternalError(err)
	}

	key := fmt.Sprintf("posts/%s.jpg", uuid.NewString())
	if err := s.storage.Save(ctx, key, buf, "image/jpeg"); err != nil {
		return nil, apperrors.ErrUpstream(err, "media", "Failed to store image")
	}

	post := &models.Post{
		Caption:  strings.TrimSpace(caption),
		Image:    s.storage.URL(key),
		ImageKey: key,
		AuthorID: authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.removeImage(ctx, key)
		return nil, storeFailure(err, "post")
	}

	post.Author = author
	post.Comments = []models.Comment{}
	post.Likes = []string{}
	logger.CtxInfo(ctx, "Post created", "post_id", post.ID)
	return post, nil
}

func (s *PostServiceImpl) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.FindAll(ctx)
	if err != nil {
		return nil, storeFailure(err, "post")
	}
	return posts, nil
}

func (s *PostServiceImpl) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	posts, err := s.posts.FindByAuthor(ctx, authorID)
	if err != nil {
		return nil, storeFailure(err, "post")
	}
	return posts, nil
}

func (s *PostServiceImpl) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return apperrors.ErrNotPostAuthor
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return apperrors.ErrPostNotFound
		}
		return storeFailure(err, "post")
	}

	s.removeImage(ctx, post.ImageKey)
	logger.CtxInfo(ctx, "Post deleted", "post_id", postID)
	return nil
}

// ============================================
// Reactions
// ============================================

func (s *PostServiceImpl) Like(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.react(ctx, userID, postID, models.NotificationLike)
}

func (s *PostServiceImpl) Dislike(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.react(ctx, userID, postID, models.NotificationDislike)
}

// react applies the like change and returns the post as stored afterwards.
func (s *PostServiceImpl) react(ctx context.Context, userID, postID string, kind models.NotificationType) (*models.Post, error) {
	actor, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	message := "Your post was liked"
	change := s.posts.AddLike
	if kind == models.NotificationDislike {
		message = "Your post was disliked"
		change = s.posts.RemoveLike
	}

	if err := change(ctx, postID, userID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, storeFailure(err, "post")
	}

	if post.AuthorID != userID {
		s.dispatcher.Notify(ctx, post.AuthorID, models.Notification{
			Type:        kind,
			UserID:      userID,
			UserDetails: actor.Public(),
			PostID:      postID,
			Message:     message,
		})
	}
	return s.findPost(ctx, postID)
}

func (s *PostServiceImpl) Comment(ctx context.Context, userID, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewBadRequestError("Text is required")
	}

	actor, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{Text: text, AuthorID: userID, PostID: postID}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, storeFailure(err, "post")
	}
	comment.Author = actor

	if post.AuthorID != userID {
		s.dispatcher.Notify(ctx, post.AuthorID, models.Notification{
			Type:        models.NotificationComment,
			UserID:      userID,
			UserDetails: actor.Public(),
			PostID:      postID,
			Message:     "Commented on your post",
		})
	}
	return comment, nil
}

// Comments answers 404 both for an unknown post and for a post without
// comments.
func (s *PostServiceImpl) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.posts.FindComments(ctx, postID)
	if err != nil {
		return nil, storeFailure(err, "post")
	}
	if len(comments) == 0 {
		return nil, apperrors.ErrCommentsNotFound
	}
	return comments, nil
}

func (s *PostServiceImpl) ToggleBookmark(ctx context.Context, userID, postID string) (bool, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return false, err
	}

	saved, err := s.users.ToggleBookmark(ctx, userID, postID)
	if err != nil {
		return false, storeFailure(err, "user")
	}
	return saved, nil
}

// ============================================
// Helpers
// ============================================

func (s *PostServiceImpl) findPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, storeFailure(err, "post")
	}
	return post, nil
}

func (s *PostServiceImpl) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeFailure(err, "user")
	}
	return user, nil
}

func (s *PostServiceImpl) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "Failed to remove post image", err, "key", key)
	}
}
