package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/rs/zerolog"
)

const maxLineSize = 16 * 1024 * 1024

// jsonlEntry is one line of a JSONL corpus.
type jsonlEntry struct {
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	Candidates map[string]string `json:"candidates"`
}

type InputRecord struct {
	LineNumber int
	Entry      Entry
	Error      error
}

type Reader struct {
	reader io.Reader
	logger *zerolog.Logger
}

func NewReader(reader io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		reader: reader,
		logger: logger,
	}
}

// ReadAll streams one record per non-blank line. The channel closes at EOF
// or when ctx is cancelled.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}

			var raw jsonlEntry
			if err := json.Unmarshal([]byte(line), &raw); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
			} else if raw.DocumentID == "" {
				record.Error = fmt.Errorf("line %d: document_id is required", lineNumber)
			} else if err := store.ValidateKey(raw.DocumentID); err != nil {
				record.Error = fmt.Errorf("line %d: document_id: %w", lineNumber, err)
			} else {
				record.Entry = Entry{
					Document:   models.Document{ID: raw.DocumentID, Text: raw.Text},
					Candidates: raw.Candidates,
				}
			}

			select {
			case out <- record:
			case <-ctx.Done():
				r.logger.Debug().Int("line", lineNumber).Msg("corpus reader cancelled")
				return
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case out <- InputRecord{LineNumber: lineNumber, Error: fmt.Errorf("failed to read corpus: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}

// JSONLSource loads a corpus from a JSONL stream. Any malformed line aborts
// the load. Entries come back in document id order, like every other source.
type JSONLSource struct {
	reader  *Reader
	tracked []string
	policy  string
	logger  *zerolog.Logger
}

func NewJSONLSource(reader io.Reader, tracked []string, policy string, logger *zerolog.Logger) *JSONLSource {
	return &JSONLSource{
		reader:  NewReader(reader, logger),
		tracked: tracked,
		policy:  policy,
		logger:  logger,
	}
}

func (s *JSONLSource) Load(ctx context.Context) ([]Entry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var entries []Entry
	seen := make(map[string]bool)

	for record := range s.reader.ReadAll(ctx) {
		if record.Error != nil {
			return nil, record.Error
		}

		id := record.Entry.Document.ID
		if seen[id] {
			return nil, fmt.Errorf("%w: %s (line %d)", ErrDuplicateID, id, record.LineNumber)
		}
		seen[id] = true

		keep, err := join(record.Entry, s.tracked, s.policy, s.logger)
		if err != nil {
			return nil, err
		}
		if keep {
			entries = append(entries, record.Entry)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortEntries(entries)

	s.logger.Info().Int("documents", len(entries)).Msg("corpus loaded")
	return entries, nil
}
