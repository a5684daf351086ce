package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/reputation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultScanBatchSize = 500

type EvaluationRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewEvaluationRepository(db *gorm.DB, batchSize int) *EvaluationRepository {
	if batchSize <= 0 {
		batchSize = defaultScanBatchSize
	}
	return &EvaluationRepository{db: db, batchSize: batchSize}
}

// EntryPayload is the JSON shape of one evaluated user inside Evaluation.Entries.
type EntryPayload struct {
	MannerScore       *float64 `json:"mannerScore,omitempty"`
	SpecialSituations []string `json:"specialSituations,omitempty"`
}

func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if err := r.db.WithContext(ctx).Create(evaluation).Error; err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

// Delete removes an evaluation and returns the ids of every user it rated.
func (r *EvaluationRepository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&evaluation, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEvaluationNotFound
			}
			return err
		}
		return tx.Delete(&evaluation).Error
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(evaluation.Entries, &raw); err != nil {
		slog.Warn("evaluation entries undecodable, no users to recompute",
			"evaluation_id", evaluation.ID.String(), "error", err)
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for key := range raw {
		if userID, err := uuid.Parse(key); err == nil {
			ids = append(ids, userID)
		}
	}
	return ids, nil
}

// ScanEntriesFor replays every evaluation and collects the entries addressed
// to userID, in evaluation id order. Malformed entries are skipped.
func (r *EvaluationRepository) ScanEntriesFor(ctx context.Context, userID uuid.UUID) ([]reputation.Entry, error) {
	key := userID.String()
	entries := make([]reputation.Entry, 0)

	query := r.db.WithContext(ctx).Model(&models.Evaluation{})
	if r.db.Dialector.Name() == "postgres" {
		query = query.Where("jsonb_exists(entries, ?)", key)
	}

	var batch []models.Evaluation
	result := query.FindInBatches(&batch, r.batchSize, func(tx *gorm.DB, _ int) error {
		for _, evaluation := range batch {
			entry, ok, err := decodeEntry(evaluation.Entries, key)
			if err != nil {
				slog.Warn("skipping malformed evaluation entry",
					"evaluation_id", evaluation.ID.String(), "user_id", key, "error", err)
				continue
			}
			if !ok {
				continue
			}
			entry.EvaluationID = evaluation.ID.String()
			entries = append(entries, entry)
		}
		return nil
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to scan evaluations for %s: %w", key, result.Error)
	}
	return entries, nil
}

func decodeEntry(doc []byte, key string) (reputation.Entry, bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return reputation.Entry{}, false, fmt.Errorf("entries is not an object: %w", err)
	}
	value, ok := raw[key]
	if !ok {
		return reputation.Entry{}, false, nil
	}

	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return reputation.Entry{}, false, errors.New("entry is not an object")
	}

	var payload EntryPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return reputation.Entry{}, false, err
	}

	entry := reputation.Entry{SpecialSituations: payload.SpecialSituations}
	if payload.MannerScore != nil {
		score := *payload.MannerScore
		if score == math.Trunc(score) && score >= 1 && score <= 5 {
			entry.MannerScore = int(score)
		}
	}
	return entry, true, nil
}
