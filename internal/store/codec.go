package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

// EncodeJudgments writes the judgments of an evaluation as a single JSON
// object keyed by model name, in the evaluation's model order.
func EncodeJudgments(evaluation models.DocumentEvaluation) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")

	for i, record := range evaluation.Records() {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(record.Model)
		if err != nil {
			return nil, err
		}
		value, err := json.MarshalIndent(models.Judgment{Score: record.Score, Explanation: record.Explanation}, "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
	}

	if len(evaluation.Judgments) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

// DecodeJudgments reads an object written by EncodeJudgments, recovering
// the model order from the key order.
func DecodeJudgments(documentID string, data []byte) (models.DocumentEvaluation, error) {
	evaluation := models.DocumentEvaluation{
		DocumentID: documentID,
		Judgments:  make(map[string]models.Judgment),
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return evaluation, fmt.Errorf("failed to decode evaluation %s: %w", documentID, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return evaluation, fmt.Errorf("evaluation %s is not a JSON object", documentID)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return evaluation, fmt.Errorf("failed to decode evaluation %s: %w", documentID, err)
		}
		model, _ := tok.(string)

		var judgment models.Judgment
		if err := dec.Decode(&judgment); err != nil {
			return evaluation, fmt.Errorf("failed to decode judgment %s/%s: %w", documentID, model, err)
		}

		if _, dup := evaluation.Judgments[model]; !dup {
			evaluation.Order = append(evaluation.Order, model)
		}
		evaluation.Judgments[model] = judgment
	}

	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return evaluation, fmt.Errorf("failed to decode evaluation %s: %w", documentID, err)
	}

	return evaluation, nil
}

// Merge adds the judgment for model to evaluation, appending model to the
// order when it is new.
func Merge(evaluation models.DocumentEvaluation, model string, judgment models.Judgment) models.DocumentEvaluation {
	if evaluation.Judgments == nil {
		evaluation.Judgments = make(map[string]models.Judgment)
	}
	if _, ok := evaluation.Judgments[model]; !ok {
		evaluation.Order = append(evaluation.Order, model)
	}
	evaluation.Judgments[model] = judgment
	return evaluation
}

// Remove drops model's judgment from evaluation. It reports whether a
// judgment was removed.
func Remove(evaluation models.DocumentEvaluation, model string) (models.DocumentEvaluation, bool) {
	if _, ok := evaluation.Judgments[model]; !ok {
		return evaluation, false
	}
	evaluation.Judgments = maps.Clone(evaluation.Judgments)
	delete(evaluation.Judgments, model)
	evaluation.Order = slices.DeleteFunc(slices.Clone(evaluation.Order), func(m string) bool { return m == model })
	return evaluation, true
}
