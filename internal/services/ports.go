package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/reputation"
	"github.com/google/uuid"
)

// ReportStore is implemented by repository.ReportRepository.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error)
	ListPendingOverdue(ctx context.Context, now time.Time) ([]models.Report, error)
	CommitAutoAction(ctx context.Context, action repository.AutoAction) (repository.AutoActionResult, error)
}

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	IncrementReportCount(ctx context.Context, id uuid.UUID, now time.Time) (int, error)
	MarkBanned(ctx context.Context, id uuid.UUID, now time.Time, reason string) (bool, error)
}

// EvaluationStore is implemented by repository.EvaluationRepository.
type EvaluationStore interface {
	ScanEntriesFor(ctx context.Context, userID uuid.UUID) ([]reputation.Entry, error)
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

// ContentStore is implemented by repository.ContentRepository.
type ContentStore interface {
	FindAuthor(ctx context.Context, contentType, contentID string) (uuid.UUID, error)
	DeletePost(ctx context.Context, postID string) ([]string, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// MediaStore removes uploaded images from the external image storage.
type MediaStore interface {
	Purge(ctx context.Context, urls []string) error
}
