package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return &user, nil
}

// Update writes a partial set of columns.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IncrementReportCount adds one violation and returns the new count. The
// increment and the read happen in one transaction so concurrent callers
// each observe their own value.
func (r *UserRepository) IncrementReportCount(ctx context.Context, id uuid.UUID, now time.Time) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"report_count":     gorm.Expr("report_count + ?", 1),
				"last_reported_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Model(&models.User{}).Select("report_count").Where("id = ?", id).Row().Scan(&count)
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to increment report count for %s: %w", id, err)
	}
	return count, nil
}

// MarkBanned suspends the account once. It returns false if the account was
// already banned.
func (r *UserRepository) MarkBanned(ctx context.Context, id uuid.UUID, now time.Time, reason string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_banned = ?", id, false).
		Updates(map[string]interface{}{
			"is_banned":  true,
			"banned_at":  now,
			"ban_reason": reason,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to ban user %s: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}
