package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// recordingNotifier captures events synchronously.
type recordingNotifier struct {
	mu        sync.Mutex
	removed   []notify.ContentRemoved
	banned    []notify.AccountBanned
	summaries []notify.SweepSummary
}

func (n *recordingNotifier) ContentRemoved(_ context.Context, e notify.ContentRemoved) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, e)
}

func (n *recordingNotifier) AccountBanned(_ context.Context, e notify.AccountBanned) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.banned = append(n.banned, e)
}

func (n *recordingNotifier) SweepSummary(_ context.Context, e notify.SweepSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, e)
}

type mockReportStore struct {
	listOverdueFunc func(ctx context.Context, now time.Time) ([]models.Report, error)
	commitFunc      func(ctx context.Context, action repository.AutoAction) (repository.AutoActionResult, error)
	createFunc      func(ctx context.Context, report *models.Report) error
}

func (m *mockReportStore) Create(ctx context.Context, report *models.Report) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, report)
	}
	return errors.New("not implemented")
}

func (m *mockReportStore) List(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (m *mockReportStore) ListPendingOverdue(ctx context.Context, now time.Time) ([]models.Report, error) {
	if m.listOverdueFunc != nil {
		return m.listOverdueFunc(ctx, now)
	}
	return nil, errors.New("not implemented")
}

func (m *mockReportStore) CommitAutoAction(ctx context.Context, action repository.AutoAction) (repository.AutoActionResult, error) {
	if m.commitFunc != nil {
		return m.commitFunc(ctx, action)
	}
	return repository.AutoActionResult{}, errors.New("not implemented")
}

type mockContentStore struct {
	findAuthorFunc    func(ctx context.Context, contentType, contentID string) (uuid.UUID, error)
	deletePostFunc    func(ctx context.Context, postID string) ([]string, error)
	deleteCommentFunc func(ctx context.Context, postID, commentID string) error
}

func (m *mockContentStore) FindAuthor(ctx context.Context, contentType, contentID string) (uuid.UUID, error) {
	if m.findAuthorFunc != nil {
		return m.findAuthorFunc(ctx, contentType, contentID)
	}
	return uuid.Nil, errors.New("not implemented")
}

func (m *mockContentStore) DeletePost(ctx context.Context, postID string) ([]string, error) {
	if m.deletePostFunc != nil {
		return m.deletePostFunc(ctx, postID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContentStore) DeleteComment(ctx context.Context, postID, commentID string) error {
	if m.deleteCommentFunc != nil {
		return m.deleteCommentFunc(ctx, postID, commentID)
	}
	return errors.New("not implemented")
}

type mockUserStore struct {
	getFunc       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	updateFunc    func(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	incrementFunc func(ctx context.Context, id uuid.UUID, now time.Time) (int, error)
	banFunc       func(ctx context.Context, id uuid.UUID, now time.Time, reason string) (bool, error)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, fields)
	}
	return errors.New("not implemented")
}

func (m *mockUserStore) IncrementReportCount(ctx context.Context, id uuid.UUID, now time.Time) (int, error) {
	if m.incrementFunc != nil {
		return m.incrementFunc(ctx, id, now)
	}
	return 0, errors.New("not implemented")
}

func (m *mockUserStore) MarkBanned(ctx context.Context, id uuid.UUID, now time.Time, reason string) (bool, error) {
	if m.banFunc != nil {
		return m.banFunc(ctx, id, now, reason)
	}
	return false, errors.New("not implemented")
}

type recordingMediaStore struct {
	mu   sync.Mutex
	urls []string
}

func (m *recordingMediaStore) Purge(_ context.Context, urls []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = append(m.urls, urls...)
	return nil
}
