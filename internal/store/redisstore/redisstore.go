package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultPrefix = "summary-judge"

// RedisStore keeps evaluations as JSON strings indexed by a sorted set
// whose members all score zero, so the index reads back in document id
// order. Failures live in an append-only list.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zerolog.Logger
}

var _ store.Store = (*RedisStore)(nil)

func New(client *redis.Client, prefix string, logger *zerolog.Logger) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (s *RedisStore) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *RedisStore) SaveEvaluation(ctx context.Context, evaluation models.DocumentEvaluation) error {
	data, err := store.EncodeJudgments(evaluation)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation %s: %w", evaluation.DocumentID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key("evaluation", evaluation.DocumentID), data, 0)
	pipe.ZAdd(ctx, s.key("evaluations", "ids"), redis.Z{Score: 0, Member: evaluation.DocumentID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save evaluation %s: %w", evaluation.DocumentID, err)
	}

	s.logger.Debug().Str("document_id", evaluation.DocumentID).Msg("evaluation saved to redis")
	return nil
}

func (s *RedisStore) GetEvaluation(ctx context.Context, documentID string) (models.DocumentEvaluation, error) {
	data, err := s.client.Get(ctx, s.key("evaluation", documentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DocumentEvaluation{}, fmt.Errorf("%w: evaluation %s", store.ErrNotFound, documentID)
	}
	if err != nil {
		return models.DocumentEvaluation{}, fmt.Errorf("failed to read evaluation %s: %w", documentID, err)
	}
	return store.DecodeJudgments(documentID, data)
}

func (s *RedisStore) DeleteEvaluation(ctx context.Context, documentID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key("evaluation", documentID))
	pipe.ZRem(ctx, s.key("evaluations", "ids"), documentID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete evaluation %s: %w", documentID, err)
	}
	return nil
}

// ListEvaluations returns evaluations in document id order.
func (s *RedisStore) ListEvaluations(ctx context.Context) ([]models.DocumentEvaluation, error) {
	ids, err := s.client.ZRange(ctx, s.key("evaluations", "ids"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	evaluations := make([]models.DocumentEvaluation, 0, len(ids))
	for _, id := range ids {
		evaluation, err := s.GetEvaluation(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}

	return evaluations, nil
}

func (s *RedisStore) AppendFailure(ctx context.Context, entry models.FailureEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode failure: %w", err)
	}
	if err := s.client.RPush(ctx, s.key("failures"), data).Err(); err != nil {
		return fmt.Errorf("failed to append failure: %w", err)
	}
	return nil
}

func (s *RedisStore) Failures(ctx context.Context) ([]models.FailureEntry, error) {
	items, err := s.client.LRange(ctx, s.key("failures"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read failures: %w", err)
	}

	failures := make([]models.FailureEntry, 0, len(items))
	for _, item := range items {
		var entry models.FailureEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			s.logger.Warn().Err(err).Msg("skipping malformed failure entry")
			continue
		}
		failures = append(failures, entry)
	}

	return failures, nil
}

func (s *RedisStore) SaveAssessment(ctx context.Context, assessment models.ModelAssessment) error {
	data, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment %s: %w", assessment.Model, err)
	}
	if err := s.client.Set(ctx, s.key("assessment", assessment.Model), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save assessment %s: %w", assessment.Model, err)
	}
	return nil
}

func (s *RedisStore) GetAssessment(ctx context.Context, model string) (models.ModelAssessment, error) {
	data, err := s.client.Get(ctx, s.key("assessment", model)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ModelAssessment{}, fmt.Errorf("%w: assessment %s", store.ErrNotFound, model)
	}
	if err != nil {
		return models.ModelAssessment{}, fmt.Errorf("failed to read assessment %s: %w", model, err)
	}

	var assessment models.ModelAssessment
	if err := json.Unmarshal(data, &assessment); err != nil {
		return assessment, fmt.Errorf("failed to decode assessment %s: %w", model, err)
	}
	return assessment, nil
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}
