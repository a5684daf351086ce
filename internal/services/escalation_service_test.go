package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscalationService_Boundary(t *testing.T) {
	db := dbtest.New(t)
	users := repository.NewUserRepository(db)
	notifier := &recordingNotifier{}
	svc := NewEscalationService(users, notifier, nil, 3)
	ctx := context.Background()

	atOne := &models.User{ReportCount: 1}
	atTwo := &models.User{ReportCount: 2}
	require.NoError(t, db.Create(atOne).Error)
	require.NoError(t, db.Create(atTwo).Error)

	t.Run("second violation does not ban", func(t *testing.T) {
		res, err := svc.RecordViolation(ctx, atOne.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, 2, res.ReportCount)
		assert.False(t, res.Banned)

		stored, err := users.GetByID(ctx, atOne.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.ReportCount)
		assert.False(t, stored.IsBanned)
	})

	t.Run("third violation bans", func(t *testing.T) {
		res, err := svc.RecordViolation(ctx, atTwo.ID, testNow)
		require.NoError(t, err)
		assert.Equal(t, 3, res.ReportCount)
		assert.True(t, res.Banned)
		assert.Equal(t, "repeated policy violations (count = 3)", res.BanReason)

		stored, err := users.GetByID(ctx, atTwo.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.ReportCount)
		assert.True(t, stored.IsBanned)
		require.NotNil(t, stored.BannedAt)
		assert.Equal(t, "repeated policy violations (count = 3)", stored.BanReason)
	})

	t.Run("fourth violation keeps the original ban", func(t *testing.T) {
		res, err := svc.RecordViolation(ctx, atTwo.ID, testNow.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 4, res.ReportCount)
		assert.False(t, res.Banned)

		stored, err := users.GetByID(ctx, atTwo.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsBanned)
		assert.Equal(t, "repeated policy violations (count = 3)", stored.BanReason)
	})

	require.Len(t, notifier.banned, 1)
	assert.Equal(t, atTwo.ID, notifier.banned[0].UserID)
}

func TestEscalationService_Errors(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing user", func(t *testing.T) {
		users := &mockUserStore{
			incrementFunc: func(ctx context.Context, id uuid.UUID, now time.Time) (int, error) {
				return 0, repository.ErrUserNotFound
			},
		}
		svc := NewEscalationService(users, &recordingNotifier{}, nil, 0)

		_, err := svc.RecordViolation(ctx, userID, testNow)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("ban write fails", func(t *testing.T) {
		notifier := &recordingNotifier{}
		users := &mockUserStore{
			incrementFunc: func(ctx context.Context, id uuid.UUID, now time.Time) (int, error) {
				return 3, nil
			},
			banFunc: func(ctx context.Context, id uuid.UUID, now time.Time, reason string) (bool, error) {
				return false, errors.New("connection reset")
			},
		}
		svc := NewEscalationService(users, notifier, nil, 3)

		res, err := svc.RecordViolation(ctx, userID, testNow)
		require.Error(t, err)
		require.NotNil(t, res)
		assert.Equal(t, 3, res.ReportCount)
		assert.Empty(t, notifier.banned)
	})

	t.Run("custom threshold", func(t *testing.T) {
		var reason string
		users := &mockUserStore{
			incrementFunc: func(ctx context.Context, id uuid.UUID, now time.Time) (int, error) {
				return 5, nil
			},
			banFunc: func(ctx context.Context, id uuid.UUID, now time.Time, r string) (bool, error) {
				reason = r
				return true, nil
			},
		}
		svc := NewEscalationService(users, &recordingNotifier{}, nil, 5)

		res, err := svc.RecordViolation(ctx, userID, testNow)
		require.NoError(t, err)
		assert.True(t, res.Banned)
		assert.Equal(t, "repeated policy violations (count = 5)", reason)
	})
}
