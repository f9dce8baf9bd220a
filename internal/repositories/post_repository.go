package repositories

import (
	"context"
	"time"

	"agrocommunity_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	FindAll(ctx context.Context) ([]models.Post, error)
	FindByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	IDsByAuthor(ctx context.Context, authorID string) ([]string, error)

	// AddLike and RemoveLike are idempotent.
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error

	AddComment(ctx context.Context, comment *models.Comment) error
	FindComments(ctx context.Context, postID string) ([]models.Comment, error)

	// Delete removes the post with its comments, likes and bookmarks.
	Delete(ctx context.Context, postID string) error
}

type PostRepositoryImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *PostRepositoryImpl) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Comments.Author")
}

func (r *PostRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.preloaded(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	posts := []models.Post{post}
	if err := r.attachLikes(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *PostRepositoryImpl) FindAll(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.preloaded(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, r.attachLikes(ctx, posts)
}

func (r *PostRepositoryImpl) FindByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.preloaded(ctx).Where("author_id = ?", authorID).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, r.attachLikes(ctx, posts)
}

func (r *PostRepositoryImpl) IDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", authorID).Order("created_at DESC").Pluck("id", &ids).Error
	return ids, err
}

// attachLikes loads liker ids for all posts with one query.
func (r *PostRepositoryImpl) attachLikes(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Likes = []string{}
	}

	var likes []models.PostLike
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Order("created_at").Find(&likes).Error; err != nil {
		return err
	}
	for _, like := range likes {
		i := index[like.PostID]
		posts[i].Likes = append(posts[i].Likes, like.UserID)
	}
	return nil
}

func (r *PostRepositoryImpl) exists(ctx context.Context, postID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostRepositoryImpl) AddLike(ctx context.Context, postID, userID string) error {
	if err := r.exists(ctx, postID); err != nil {
		return err
	}
	like := models.PostLike{PostID: postID, UserID: userID, CreatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
}

func (r *PostRepositoryImpl) RemoveLike(ctx context.Context, postID, userID string) error {
	if err := r.exists(ctx, postID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{}).Error
}

func (r *PostRepositoryImpl) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := r.exists(ctx, comment.PostID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *PostRepositoryImpl) FindComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if err := r.exists(ctx, postID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// Delete clears the rows that point at the post before the post itself, so
// the comments foreign key never sees a dangling reference.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.Comment{}, &models.PostLike{}, &models.Bookmark{}} {
			if err := tx.Where("post_id = ?", postID).Delete(dependent).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", postID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}
