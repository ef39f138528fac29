package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/rs/zerolog"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

const schema = `
CREATE TABLE IF NOT EXISTS judge_evaluations (
	document_id TEXT NOT NULL,
	model       TEXT NOT NULL,
	position    INT NOT NULL,
	score       INT NOT NULL CHECK (score BETWEEN 0 AND 10),
	explanation TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (document_id, model)
);
CREATE TABLE IF NOT EXISTS judge_failures (
	id          BIGSERIAL PRIMARY KEY,
	document_id TEXT NOT NULL,
	model       TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS judge_assessments (
	model         TEXT PRIMARY KEY,
	assessment    JSONB NOT NULL,
	average_score DOUBLE PRECISION NOT NULL,
	record_count  INT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PGStore keeps one row per (document, model) judgment.
type PGStore struct {
	Pool   *pgxpool.Pool
	logger *zerolog.Logger
}

var _ store.Store = (*PGStore)(nil)

func New(ctx context.Context, config Config, logger *zerolog.Logger) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PGStore{Pool: pool, logger: logger}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveEvaluation replaces every judgment stored for the document.
func (s *PGStore) SaveEvaluation(ctx context.Context, evaluation models.DocumentEvaluation) error {
	createdAt := evaluation.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM judge_evaluations WHERE document_id = $1`, evaluation.DocumentID); err != nil {
			return fmt.Errorf("failed to clear evaluation %s: %w", evaluation.DocumentID, err)
		}

		batch := &pgx.Batch{}
		for i, record := range evaluation.Records() {
			batch.Queue(
				`INSERT INTO judge_evaluations (document_id, model, position, score, explanation, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
				record.DocumentID, record.Model, i, record.Score, record.Explanation, createdAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save evaluation %s: %w", evaluation.DocumentID, err)
		}
		return nil
	})
}

func (s *PGStore) GetEvaluation(ctx context.Context, documentID string) (models.DocumentEvaluation, error) {
	evaluations, err := s.queryEvaluations(ctx, `WHERE document_id = $1`, documentID)
	if err != nil {
		return models.DocumentEvaluation{}, err
	}
	if len(evaluations) == 0 {
		return models.DocumentEvaluation{}, fmt.Errorf("%w: evaluation %s", store.ErrNotFound, documentID)
	}
	return evaluations[0], nil
}

func (s *PGStore) DeleteEvaluation(ctx context.Context, documentID string) error {
	if _, err := s.Pool.Exec(ctx, `DELETE FROM judge_evaluations WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("failed to delete evaluation %s: %w", documentID, err)
	}
	return nil
}

// ListEvaluations returns every evaluation sorted by document id, byte-wise.
func (s *PGStore) ListEvaluations(ctx context.Context) ([]models.DocumentEvaluation, error) {
	return s.queryEvaluations(ctx, "")
}

func (s *PGStore) queryEvaluations(ctx context.Context, where string, args ...any) ([]models.DocumentEvaluation, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT document_id, model, score, explanation, created_at FROM judge_evaluations `+where+` ORDER BY document_id COLLATE "C", position`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []models.DocumentEvaluation
	for rows.Next() {
		var (
			documentID, model string
			judgment          models.Judgment
			createdAt         time.Time
		)
		if err := rows.Scan(&documentID, &model, &judgment.Score, &judgment.Explanation, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}

		n := len(evaluations)
		if n == 0 || evaluations[n-1].DocumentID != documentID {
			evaluations = append(evaluations, models.DocumentEvaluation{DocumentID: documentID, CreatedAt: createdAt})
			n++
		}
		evaluations[n-1] = store.Merge(evaluations[n-1], model, judgment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read evaluations: %w", err)
	}

	return evaluations, nil
}

func (s *PGStore) AppendFailure(ctx context.Context, entry models.FailureEntry) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO judge_failures (document_id, model, reason) VALUES ($1, $2, $3)`,
		entry.DocumentID, entry.Model, entry.Reason)
	if err != nil {
		return fmt.Errorf("failed to append failure: %w", err)
	}
	return nil
}

func (s *PGStore) Failures(ctx context.Context) ([]models.FailureEntry, error) {
	rows, err := s.Pool.Query(ctx, `SELECT document_id, model, reason, created_at FROM judge_failures ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}

	failures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FailureEntry, error) {
		var entry models.FailureEntry
		err := row.Scan(&entry.DocumentID, &entry.Model, &entry.Reason, &entry.CreatedAt)
		return entry, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read failures: %w", err)
	}

	return failures, nil
}

func (s *PGStore) SaveAssessment(ctx context.Context, assessment models.ModelAssessment) error {
	payload, err := json.Marshal(assessment.Assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment %s: %w", assessment.Model, err)
	}

	_, err = s.Pool.Exec(ctx, `
		INSERT INTO judge_assessments (model, assessment, average_score, record_count, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (model) DO UPDATE SET
			assessment = EXCLUDED.assessment,
			average_score = EXCLUDED.average_score,
			record_count = EXCLUDED.record_count,
			created_at = EXCLUDED.created_at`,
		assessment.Model, payload, assessment.AverageScore, assessment.Count)
	if err != nil {
		return fmt.Errorf("failed to save assessment %s: %w", assessment.Model, err)
	}

	return nil
}

func (s *PGStore) GetAssessment(ctx context.Context, model string) (models.ModelAssessment, error) {
	assessment := models.ModelAssessment{Model: model}

	var payload []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT assessment, average_score, record_count, created_at FROM judge_assessments WHERE model = $1`, model,
	).Scan(&payload, &assessment.AverageScore, &assessment.Count, &assessment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return assessment, fmt.Errorf("%w: assessment %s", store.ErrNotFound, model)
	}
	if err != nil {
		return assessment, fmt.Errorf("failed to read assessment %s: %w", model, err)
	}

	if err := json.Unmarshal(payload, &assessment.Assessment); err != nil {
		return assessment, fmt.Errorf("failed to decode assessment %s: %w", model, err)
	}

	return assessment, nil
}

func (s *PGStore) Close() error {
	s.Pool.Close()
	return nil
}
