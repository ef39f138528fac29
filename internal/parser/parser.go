package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

var ErrParse = errors.New("judge response does not match the expected shape")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseError describes why raw judge output was rejected.
type ParseError struct {
	Shape  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Shape, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Shape, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Shape describes a structured record the judge is expected to return: the
// exact set of top-level fields and how to build the record from them.
type Shape[T any] struct {
	Name   string
	Fields []string
	build  func(fields map[string]json.RawMessage) (T, error)
}

// ScoreExplanation is the per-document judgment shape.
var ScoreExplanation = Shape[models.Judgment]{
	Name:   "ScoreExplanation",
	Fields: []string{"score", "explanation"},
	build:  buildJudgment,
}

// ModelAssessmentShape is the per-model meta-assessment shape.
var ModelAssessmentShape = Shape[models.Assessment]{
	Name:   "ModelAssessment",
	Fields: []string{"strengths", "weaknesses", "recommendations", "summary"},
	build:  buildAssessment,
}

// Parse interprets raw as a single JSON object matching shape. A markdown
// code fence around the object is tolerated; anything else is a ParseError.
func Parse[T any](raw string, shape Shape[T]) (T, error) {
	var zero T

	content := StripMarkdownCodeBlock(raw)
	if content == "" {
		return zero, &ParseError{Shape: shape.Name, Reason: "empty response"}
	}

	dec := json.NewDecoder(strings.NewReader(content))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return zero, &ParseError{Shape: shape.Name, Reason: "malformed JSON", Err: err}
	}
	if fields == nil {
		return zero, &ParseError{Shape: shape.Name, Reason: "response is not a JSON object"}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return zero, &ParseError{Shape: shape.Name, Reason: "trailing data after JSON object"}
	}

	for _, name := range shape.Fields {
		if _, ok := fields[name]; !ok {
			return zero, &ParseError{Shape: shape.Name, Reason: fmt.Sprintf("missing field %q", name)}
		}
	}
	for name := range fields {
		if !slices.Contains(shape.Fields, name) {
			return zero, &ParseError{Shape: shape.Name, Reason: fmt.Sprintf("unexpected field %q", name)}
		}
	}

	record, err := shape.build(fields)
	if err != nil {
		return zero, &ParseError{Shape: shape.Name, Reason: "invalid field", Err: err}
	}

	if err := validate.Struct(record); err != nil {
		return zero, &ParseError{Shape: shape.Name, Reason: "validation failed", Err: err}
	}

	return record, nil
}

func buildJudgment(fields map[string]json.RawMessage) (models.Judgment, error) {
	score, err := coerceScore(fields["score"])
	if err != nil {
		return models.Judgment{}, fmt.Errorf("score: %w", err)
	}

	explanation, err := decodeString(fields["explanation"])
	if err != nil {
		return models.Judgment{}, fmt.Errorf("explanation: %w", err)
	}

	return models.Judgment{Score: score, Explanation: explanation}, nil
}

func buildAssessment(fields map[string]json.RawMessage) (models.Assessment, error) {
	var a models.Assessment
	var err error

	if a.Strengths, err = decodeStrings(fields["strengths"]); err != nil {
		return a, fmt.Errorf("strengths: %w", err)
	}
	if a.Weaknesses, err = decodeStrings(fields["weaknesses"]); err != nil {
		return a, fmt.Errorf("weaknesses: %w", err)
	}
	if a.Recommendations, err = decodeStrings(fields["recommendations"]); err != nil {
		return a, fmt.Errorf("recommendations: %w", err)
	}
	if a.Summary, err = decodeString(fields["summary"]); err != nil {
		return a, fmt.Errorf("summary: %w", err)
	}

	return a, nil
}

// coerceScore accepts an integral JSON number or a string holding one.
func coerceScore(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		raw = []byte(strings.TrimSpace(s))
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %s", raw)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("out of range: %s", raw)
	}

	return int(f), nil
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func decodeStrings(raw json.RawMessage) ([]string, error) {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items, nil
}

// StripMarkdownCodeBlock removes markdown code block formatting if present.
func StripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	firstNewline := strings.Index(content, "\n")
	if firstNewline == -1 {
		return content
	}

	closing := strings.LastIndex(content, "```")
	if closing <= firstNewline {
		return content
	}

	return strings.TrimSpace(content[firstNewline+1 : closing])
}
