package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/rs/zerolog"
)

const (
	evaluationPrefix = "evaluations/"
	assessmentPrefix = "assessments/"
	failurePrefix    = "failures/"
	evaluationSuffix = "_evaluation.json"
	assessmentSuffix = "_assessment.json"
	contentTypeJSON  = "application/json"
)

type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// ObjectStore mirrors the file layout in an S3-compatible bucket. Each
// failure is its own object so appends never rewrite existing data.
type ObjectStore struct {
	Client     *minio.Client
	BucketName string
	logger     *zerolog.Logger
}

var _ store.Store = (*ObjectStore)(nil)

func New(ctx context.Context, config Config, logger *zerolog.Logger) (*ObjectStore, error) {
	if config.Endpoint == "" || config.BucketName == "" {
		return nil, fmt.Errorf("minio endpoint and bucket name must be set")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, config.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if MinIO bucket '%s' exists: %w", config.BucketName, err)
	}
	if !exists {
		logger.Info().Str("bucket", config.BucketName).Msg("MinIO bucket does not exist, creating it")
		if err := client.MakeBucket(ctx, config.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create MinIO bucket '%s': %w", config.BucketName, err)
		}
	}

	return &ObjectStore{
		Client:     client,
		BucketName: config.BucketName,
		logger:     logger,
	}, nil
}

func (s *ObjectStore) put(ctx context.Context, objectName string, data []byte) error {
	_, err := s.Client.PutObject(ctx, s.BucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeJSON,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to MinIO bucket %s: %w", objectName, s.BucketName, err)
	}
	return nil
}

func (s *ObjectStore) get(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := s.Client.GetObject(ctx, s.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, objectName)
		}
		return nil, fmt.Errorf("failed to read %s: %w", objectName, err)
	}
	return data, nil
}

// list returns object names under prefix in lexical order.
func (s *ObjectStore) list(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for object := range s.Client.ListObjects(ctx, s.BucketName, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, object.Err)
		}
		names = append(names, object.Key)
	}
	return names, nil
}

func (s *ObjectStore) SaveEvaluation(ctx context.Context, evaluation models.DocumentEvaluation) error {
	name, err := evaluationObject(evaluation.DocumentID)
	if err != nil {
		return err
	}
	data, err := store.EncodeJudgments(evaluation)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation %s: %w", evaluation.DocumentID, err)
	}
	return s.put(ctx, name, data)
}

func (s *ObjectStore) GetEvaluation(ctx context.Context, documentID string) (models.DocumentEvaluation, error) {
	name, err := evaluationObject(documentID)
	if err != nil {
		return models.DocumentEvaluation{}, err
	}
	data, err := s.get(ctx, name)
	if err != nil {
		return models.DocumentEvaluation{}, err
	}
	return store.DecodeJudgments(documentID, data)
}

func (s *ObjectStore) DeleteEvaluation(ctx context.Context, documentID string) error {
	name, err := evaluationObject(documentID)
	if err != nil {
		return err
	}
	if err := s.Client.RemoveObject(ctx, s.BucketName, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s from MinIO bucket %s: %w", name, s.BucketName, err)
	}
	return nil
}

// ListEvaluations returns every evaluation sorted by document id.
func (s *ObjectStore) ListEvaluations(ctx context.Context) ([]models.DocumentEvaluation, error) {
	names, err := s.list(ctx, evaluationPrefix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := strings.CutSuffix(path.Base(name), evaluationSuffix); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	evaluations := make([]models.DocumentEvaluation, 0, len(ids))
	for _, id := range ids {
		evaluation, err := s.GetEvaluation(ctx, id)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}

	return evaluations, nil
}

func (s *ObjectStore) AppendFailure(ctx context.Context, entry models.FailureEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode failure: %w", err)
	}

	name := fmt.Sprintf("%s%020d-%s.json", failurePrefix, entry.CreatedAt.UnixNano(), uuid.NewString())
	return s.put(ctx, name, data)
}

func (s *ObjectStore) Failures(ctx context.Context) ([]models.FailureEntry, error) {
	names, err := s.list(ctx, failurePrefix)
	if err != nil {
		return nil, err
	}

	failures := make([]models.FailureEntry, 0, len(names))
	for _, name := range names {
		data, err := s.get(ctx, name)
		if err != nil {
			return nil, err
		}
		var entry models.FailureEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			s.logger.Warn().Err(err).Str("object", name).Msg("skipping malformed failure entry")
			continue
		}
		failures = append(failures, entry)
	}

	return failures, nil
}

func (s *ObjectStore) SaveAssessment(ctx context.Context, assessment models.ModelAssessment) error {
	name, err := assessmentObject(assessment.Model)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(assessment.Assessment, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode assessment %s: %w", assessment.Model, err)
	}
	return s.put(ctx, name, data)
}

func (s *ObjectStore) GetAssessment(ctx context.Context, model string) (models.ModelAssessment, error) {
	assessment := models.ModelAssessment{Model: model}

	name, err := assessmentObject(model)
	if err != nil {
		return assessment, err
	}
	data, err := s.get(ctx, name)
	if err != nil {
		return assessment, err
	}
	if err := json.Unmarshal(data, &assessment.Assessment); err != nil {
		return assessment, fmt.Errorf("failed to decode assessment %s: %w", model, err)
	}
	return assessment, nil
}

func (s *ObjectStore) Close() error {
	return nil
}

func evaluationObject(documentID string) (string, error) {
	if err := store.ValidateKey(documentID); err != nil {
		return "", fmt.Errorf("document id: %w", err)
	}
	return evaluationPrefix + documentID + evaluationSuffix, nil
}

func assessmentObject(model string) (string, error) {
	if err := store.ValidateKey(model); err != nil {
		return "", fmt.Errorf("model: %w", err)
	}
	return assessmentPrefix + model + assessmentSuffix, nil
}
