package corpus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/rs/zerolog"
)

// DirSource reads documents from one directory and each model's candidate
// from <model dir>/<document id><suffix>.
type DirSource struct {
	documentsDir string
	ext          string
	models       []config.TrackedModel
	policy       string
	logger       *zerolog.Logger
}

func NewDirSource(settings config.CorpusSettings, tracked []config.TrackedModel, logger *zerolog.Logger) *DirSource {
	return &DirSource{
		documentsDir: settings.DocumentsDir,
		ext:          settings.DocumentExt,
		models:       tracked,
		policy:       settings.MissingCandidate,
		logger:       logger,
	}
}

// Load returns entries sorted by document id.
func (s *DirSource) Load(ctx context.Context) ([]Entry, error) {
	docs, err := ReadDocuments(ctx, s.documentsDir, s.ext)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(s.models))
	for _, m := range s.models {
		names = append(names, m.Name)
	}

	var entries []Entry
	for _, doc := range docs {
		entry := Entry{
			Document:   doc,
			Candidates: make(map[string]string, len(s.models)),
		}

		for _, m := range s.models {
			candidate, err := os.ReadFile(CandidatePath(m, doc.ID))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read candidate %s for %s: %w", m.Name, doc.ID, err)
			}
			entry.Candidates[m.Name] = string(candidate)
		}

		keep, err := join(entry, names, s.policy, s.logger)
		if err != nil {
			return nil, err
		}
		if keep {
			entries = append(entries, entry)
		}
	}

	s.logger.Info().
		Str("dir", s.documentsDir).
		Int("documents", len(entries)).
		Int("models", len(s.models)).
		Msg("corpus loaded")

	return entries, nil
}

// ReadDocuments reads every file with extension ext in dir, sorted by
// document id: the file name without the extension.
func ReadDocuments(ctx context.Context, dir, ext string) ([]models.Document, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory %s: %w", dir, err)
	}

	var docs []models.Document
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.IsDir() || !strings.HasSuffix(file.Name(), ext) {
			continue
		}

		id := strings.TrimSuffix(file.Name(), ext)
		text, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", id, err)
		}
		docs = append(docs, models.Document{ID: id, Text: string(text)})
	}

	slices.SortFunc(docs, func(a, b models.Document) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return docs, nil
}

// CandidatePath is where a model's response for a document lives.
func CandidatePath(m config.TrackedModel, documentID string) string {
	return filepath.Join(m.Dir, documentID+m.Suffix)
}

// WriteCandidate stores a generated response where DirSource will find it.
func WriteCandidate(m config.TrackedModel, documentID, text string) error {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create candidate directory %s: %w", m.Dir, err)
	}
	return os.WriteFile(CandidatePath(m, documentID), []byte(text), 0o644)
}
