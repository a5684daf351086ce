package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentRepository owns the posts and comments that reports point at.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// FindAuthor returns the author of a post or comment.
func (r *ContentRepository) FindAuthor(ctx context.Context, contentType, contentID string) (uuid.UUID, error) {
	var model interface{}
	switch contentType {
	case models.ContentTypePost:
		model = &models.Post{}
	case models.ContentTypeComment:
		model = &models.Comment{}
	default:
		return uuid.Nil, fmt.Errorf("no author for content type %q", contentType)
	}

	var authors []uuid.UUID
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", contentID).Limit(1).Pluck("author_id", &authors).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(authors) == 0 {
		return uuid.Nil, ErrContentNotFound
	}
	return authors[0], nil
}

// DeletePost removes a post with its comments and returns the image URLs
// that still have to be purged from media storage.
func (r *ContentRepository) DeletePost(ctx context.Context, postID string) ([]string, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContentNotFound
			}
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete post %s: %w", postID, err)
	}
	return post.ImageURLs, nil
}

// DeleteComment removes one comment from its parent post.
func (r *ContentRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrContentNotFound
		}

		result := tx.Where("id = ? AND post_id = ?", commentID, postID).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContentNotFound
		}

		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", postID).
			Update("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}
	return nil
}
