package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/reputation"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ReputationConfig struct {
	Concurrency int
}

type RecomputeResult struct {
	UserID           uuid.UUID `json:"user_id"`
	OldDistance      float64   `json:"old_distance"`
	NewDistance      float64   `json:"new_distance"`
	Delta            float64   `json:"delta"`
	BaseDistance     float64   `json:"base_distance"`
	TotalChange      float64   `json:"total_change"`
	OldAverageScore  float64   `json:"old_average_score"`
	NewAverageScore  float64   `json:"new_average_score"`
	EvaluationsFound int       `json:"evaluations_found"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type BatchItem struct {
	UserID  uuid.UUID        `json:"user_id"`
	Success bool             `json:"success"`
	Result  *RecomputeResult `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type BatchResult struct {
	Total        int         `json:"total"`
	SuccessCount int         `json:"success_count"`
	FailCount    int         `json:"fail_count"`
	Results      []BatchItem `json:"results"`
}

// ReputationService replays evaluation history into a runner's manner
// distance. It never reads the stored distance as an input.
type ReputationService struct {
	users       UserStore
	evaluations EvaluationStore
	metrics     *metrics.Metrics
	cfg         ReputationConfig
	now         func() time.Time
}

func NewReputationService(users UserStore, evaluations EvaluationStore, m *metrics.Metrics, cfg ReputationConfig) *ReputationService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &ReputationService{
		users:       users,
		evaluations: evaluations,
		metrics:     m,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Recompute rebuilds one user's manner distance from every evaluation they
// received.
func (s *ReputationService) Recompute(ctx context.Context, userID uuid.UUID) (*RecomputeResult, error) {
	result, err := s.recompute(ctx, userID)
	if err != nil {
		s.metrics.Recomputes.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.Recomputes.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *ReputationService) recompute(ctx context.Context, userID uuid.UUID) (*RecomputeResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.evaluations.ScanEntriesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := reputation.Compute(statsFor(user, entries), entries)
	now := s.now().UTC()

	err = s.users.Update(ctx, userID, map[string]interface{}{
		"manner_current_distance":        out.Distance,
		"manner_last_updated":            now,
		"community_average_manner_score": out.AverageScore,
		"community_manner_score_count":   out.ScoredCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store manner distance: %w", err)
	}

	old := user.MannerDistance.CurrentDistance
	slog.Info("manner distance recomputed",
		"action", "recompute",
		"user_id", userID.String(),
		"old_distance", old,
		"new_distance", out.Distance,
		"evaluations", out.EvaluationsFound,
	)

	return &RecomputeResult{
		UserID:           userID,
		OldDistance:      old,
		NewDistance:      out.Distance,
		Delta:            reputation.Round1(out.Distance - old),
		BaseDistance:     out.BaseDistance,
		TotalChange:      out.TotalChange,
		OldAverageScore:  user.CommunityStats.AverageMannerScore,
		NewAverageScore:  out.AverageScore,
		EvaluationsFound: out.EvaluationsFound,
		UpdatedAt:        now,
	}, nil
}

// statsFor builds calculator input. The evaluation count comes from the
// replayed entries rather than the stored counter, which this service
// overwrites, so a second run sees the same input as the first.
func statsFor(user *models.User, entries []reputation.Entry) reputation.Stats {
	scored := 0
	for _, e := range entries {
		if e.HasScore() {
			scored++
		}
	}
	return reputation.Stats{
		MannerScoreCount:  scored,
		TotalParticipated: user.CommunityStats.TotalParticipated,
		HostedEvents:      user.CommunityStats.HostedEvents,
		ReceivedTags:      user.CommunityStats.TagCounts(),
	}
}

// RecomputeMany recomputes each user independently. Failures are reported
// per user and never stop the batch. Result order follows the input.
func (s *ReputationService) RecomputeMany(ctx context.Context, userIDs []uuid.UUID) *BatchResult {
	items := make([]BatchItem, len(userIDs))
	workCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			items[i] = BatchItem{UserID: userID, Error: err.Error()}
			continue
		}
		i, userID := i, userID
		g.Go(func() error {
			result, err := s.Recompute(workCtx, userID)
			if err != nil {
				items[i] = BatchItem{UserID: userID, Error: err.Error()}
				return nil
			}
			items[i] = BatchItem{UserID: userID, Success: true, Result: result}
			return nil
		})
	}
	_ = g.Wait()

	batch := &BatchResult{Total: len(userIDs), Results: items}
	for _, item := range items {
		if item.Success {
			batch.SuccessCount++
		} else {
			batch.FailCount++
		}
	}
	return batch
}

// DeleteEvaluation removes an evaluation and replays reputation for every
// user it touched.
func (s *ReputationService) DeleteEvaluation(ctx context.Context, evaluationID uuid.UUID) (*BatchResult, error) {
	userIDs, err := s.evaluations.Delete(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	slog.Info("evaluation deleted", "action", "delete_evaluation", "evaluation_id", evaluationID.String(), "affected_users", len(userIDs))
	return s.RecomputeMany(ctx, userIDs), nil
}
