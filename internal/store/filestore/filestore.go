package filestore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/rs/zerolog"
)

const (
	evaluationSuffix = "_evaluation.json"
	assessmentSuffix = "_assessment.json"
	failureLog       = "error.txt"
)

// FileStore keeps one <doc>_evaluation.json per document and an error.txt
// failure log in the evaluation directory, and one <model>_assessment.json
// per model in the assessment directory.
type FileStore struct {
	evaluationDir string
	assessmentDir string
	mu            sync.Mutex
	logger        *zerolog.Logger
}

var _ store.Store = (*FileStore)(nil)

func New(evaluationDir, assessmentDir string, logger *zerolog.Logger) (*FileStore, error) {
	if assessmentDir == "" {
		assessmentDir = evaluationDir
	}

	for _, dir := range []string{evaluationDir, assessmentDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	return &FileStore{
		evaluationDir: evaluationDir,
		assessmentDir: assessmentDir,
		logger:        logger,
	}, nil
}

func (s *FileStore) SaveEvaluation(_ context.Context, evaluation models.DocumentEvaluation) error {
	path, err := s.evaluationPath(evaluation.DocumentID)
	if err != nil {
		return err
	}

	data, err := store.EncodeJudgments(evaluation)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation %s: %w", evaluation.DocumentID, err)
	}

	if err := writeFile(path, data); err != nil {
		return err
	}

	s.logger.Debug().Str("path", path).Msg("evaluation saved")
	return nil
}

func (s *FileStore) GetEvaluation(_ context.Context, documentID string) (models.DocumentEvaluation, error) {
	path, err := s.evaluationPath(documentID)
	if err != nil {
		return models.DocumentEvaluation{}, err
	}
	return readEvaluation(path, documentID)
}

func (s *FileStore) DeleteEvaluation(_ context.Context, documentID string) error {
	path, err := s.evaluationPath(documentID)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete evaluation %s: %w", documentID, err)
	}

	s.logger.Debug().Str("path", path).Msg("evaluation deleted")
	return nil
}

// ListEvaluations returns every evaluation sorted by document id.
func (s *FileStore) ListEvaluations(_ context.Context) ([]models.DocumentEvaluation, error) {
	entries, err := os.ReadDir(s.evaluationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), evaluationSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), evaluationSuffix))
	}
	slices.Sort(ids)

	evaluations := make([]models.DocumentEvaluation, 0, len(ids))
	for _, id := range ids {
		evaluation, err := readEvaluation(filepath.Join(s.evaluationDir, id+evaluationSuffix), id)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}

	return evaluations, nil
}

// AppendFailure writes one line per failure: the document id, then the
// model when known.
func (s *FileStore) AppendFailure(_ context.Context, entry models.FailureEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.evaluationDir, failureLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open failure log: %w", err)
	}
	defer f.Close()

	line := entry.DocumentID
	if entry.Model != "" {
		line += "\t" + entry.Model
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append failure: %w", err)
	}

	return nil
}

func (s *FileStore) Failures(_ context.Context) ([]models.FailureEntry, error) {
	f, err := os.Open(filepath.Join(s.evaluationDir, failureLog))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open failure log: %w", err)
	}
	defer f.Close()

	var failures []models.FailureEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, model, _ := strings.Cut(line, "\t")
		failures = append(failures, models.FailureEntry{DocumentID: id, Model: model})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read failure log: %w", err)
	}

	return failures, nil
}

// SaveAssessment writes the assessment fields only, overwriting any
// previous run.
func (s *FileStore) SaveAssessment(_ context.Context, assessment models.ModelAssessment) error {
	path, err := s.assessmentPath(assessment.Model)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(assessment.Assessment, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode assessment %s: %w", assessment.Model, err)
	}

	if err := writeFile(path, append(data, '\n')); err != nil {
		return err
	}

	s.logger.Debug().Str("path", path).Msg("assessment saved")
	return nil
}

func (s *FileStore) GetAssessment(_ context.Context, model string) (models.ModelAssessment, error) {
	path, err := s.assessmentPath(model)
	if err != nil {
		return models.ModelAssessment{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.ModelAssessment{}, fmt.Errorf("%w: assessment %s", store.ErrNotFound, model)
	}
	if err != nil {
		return models.ModelAssessment{}, fmt.Errorf("failed to read assessment %s: %w", model, err)
	}

	assessment := models.ModelAssessment{Model: model}
	if err := json.Unmarshal(data, &assessment.Assessment); err != nil {
		return assessment, fmt.Errorf("failed to decode assessment %s: %w", model, err)
	}
	if info, err := os.Stat(path); err == nil {
		assessment.CreatedAt = info.ModTime().UTC().Truncate(time.Second)
	}

	return assessment, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) evaluationPath(documentID string) (string, error) {
	if err := store.ValidateKey(documentID); err != nil {
		return "", fmt.Errorf("document id: %w", err)
	}
	return filepath.Join(s.evaluationDir, documentID+evaluationSuffix), nil
}

func (s *FileStore) assessmentPath(model string) (string, error) {
	if err := store.ValidateKey(model); err != nil {
		return "", fmt.Errorf("model: %w", err)
	}
	return filepath.Join(s.assessmentDir, model+assessmentSuffix), nil
}

func readEvaluation(path, documentID string) (models.DocumentEvaluation, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.DocumentEvaluation{}, fmt.Errorf("%w: evaluation %s", store.ErrNotFound, documentID)
	}
	if err != nil {
		return models.DocumentEvaluation{}, fmt.Errorf("failed to read evaluation %s: %w", documentID, err)
	}
	return store.DecodeJudgments(documentID, data)
}

// writeFile replaces path atomically so a crash never leaves a partial record.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
