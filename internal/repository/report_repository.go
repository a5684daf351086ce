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

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ListPendingOverdue returns post and comment reports whose deadline is at or
// before now and that no sweep has actioned yet.
func (r *ReportRepository) ListPendingOverdue(ctx context.Context, now time.Time) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ReportStatusPending).
		Where("content_type IN ?", []string{models.ContentTypePost, models.ContentTypeComment}).
		Where("action_deadline IS NOT NULL AND action_deadline <= ?", now).
		Where("auto_action_taken = ?", false).
		Order("action_deadline ASC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue reports: %w", err)
	}
	return reports, nil
}

// AutoAction is one sweep decision to commit: the report to close and the
// author to charge with a violation.
type AutoAction struct {
	ReportID     uuid.UUID
	UserID       *uuid.UUID
	Now          time.Time
	BanThreshold int
	BanReason    func(count int) string
}

type AutoActionResult struct {
	// Won is false when another sweep already closed the report; nothing
	// was written in that case.
	Won               bool
	ViolationRecorded bool
	ReportCount       int
	Banned            bool
	BanReason         string
}

// CommitAutoAction closes the report and records the violation in one
// transaction, so a failed violation write leaves the report pending for the
// next sweep. A missing user is not an error; the report is still closed.
func (r *ReportRepository) CommitAutoAction(ctx context.Context, action AutoAction) (AutoActionResult, error) {
	var out AutoActionResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Report{}).
			Where("id = ? AND auto_action_taken = ?", action.ReportID, false).
			Updates(map[string]interface{}{
				"status":            models.ReportStatusActionTaken,
				"auto_action_taken": true,
				"action_taken_at":   action.Now,
				"action_type":       models.ActionTypeAutoRemoved,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return nil
		}
		out.Won = true

		if action.UserID == nil {
			return nil
		}
		userID := *action.UserID

		result = tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"report_count":     gorm.Expr("report_count + ?", 1),
				"last_reported_at": action.Now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.User{}).Select("report_count").Where("id = ?", userID).Row().Scan(&out.ReportCount); err != nil {
			return err
		}
		out.ViolationRecorded = true

		if action.BanThreshold <= 0 || out.ReportCount < action.BanThreshold {
			return nil
		}
		reason := fmt.Sprintf("report count reached %d", out.ReportCount)
		if action.BanReason != nil {
			reason = action.BanReason(out.ReportCount)
		}
		result = tx.Model(&models.User{}).
			Where("id = ? AND is_banned = ?", userID, false).
			Updates(map[string]interface{}{
				"is_banned":  true,
				"banned_at":  action.Now,
				"ban_reason": reason,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			out.Banned = true
			out.BanReason = reason
		}
		return nil
	})
	if err != nil {
		return AutoActionResult{}, fmt.Errorf("failed to commit auto action for report %s: %w", action.ReportID, err)
	}
	return out, nil
}
