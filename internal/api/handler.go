package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/aggregator"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/executor"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/rs/zerolog"
)

// Judger judges a single candidate response.
type Judger interface {
	Judge(ctx context.Context, req models.JudgeRequest) (models.JudgeResult, error)
}

// Assessor aggregates persisted evaluations and assesses models.
type Assessor interface {
	Stats(ctx context.Context) (map[string]models.AggregatedStats, error)
	AssessModel(ctx context.Context, model string) (models.ModelAssessment, error)
}

// AssessmentReader loads persisted assessments.
type AssessmentReader interface {
	GetAssessment(ctx context.Context, model string) (models.ModelAssessment, error)
}

type Handler struct {
	judger      Judger
	assessor    Assessor
	assessments AssessmentReader
	models      []string
	logger      *zerolog.Logger
}

func NewHandler(judger Judger, assessor Assessor, assessments AssessmentReader, trackedModels []string, logger *zerolog.Logger) *Handler {
	return &Handler{
		judger:      judger,
		assessor:    assessor,
		assessments: assessments,
		models:      trackedModels,
		logger:      logger,
	}
}

// POST /api/v1/judge
// Body: JudgeRequest
// Returns: JudgeResult
func (h *Handler) Judge(req *restful.Request, resp *restful.Response) {
	var judgeRequest models.JudgeRequest
	if err := req.ReadEntity(&judgeRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("document_id", judgeRequest.DocumentID).
		Str("model", judgeRequest.Model).
		Bool("persist", judgeRequest.Persist).
		Msg("Start judgment")

	result, err := h.judger.Judge(req.Request.Context(), judgeRequest)
	if err != nil {
		h.logger.Error().Err(err).Str("document_id", judgeRequest.DocumentID).Msg("Judgment failed")
		middleware.HandleError(resp, err, statusFor(err))
		return
	}

	h.logger.Info().
		Str("document_id", result.DocumentID).
		Str("model", result.Model).
		Str("status", string(result.Status)).
		Int("attempts", result.Attempts).
		Msg("Judgment complete")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/stats
func (h *Handler) Stats(req *restful.Request, resp *restful.Response) {
	stats, err := h.assessor.Stats(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to aggregate evaluations")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	response := StatsResponse{Models: []aggregator.Summary{}}
	for _, model := range h.models {
		modelStats, err := aggregator.StatsFor(stats, model)
		if err != nil {
			continue
		}
		response.Models = append(response.Models, aggregator.Summarize(modelStats))
	}

	resp.WriteHeaderAndEntity(http.StatusOK, response)
}

// POST /api/v1/assessments/{model}
func (h *Handler) Assess(req *restful.Request, resp *restful.Response) {
	model := req.PathParameter("model")

	h.logger.Info().Str("model", model).Msg("Start assessment")

	assessment, err := h.assessor.AssessModel(req.Request.Context(), model)
	if err != nil {
		h.logger.Error().Err(err).Str("model", model).Msg("Assessment failed")
		middleware.HandleError(resp, err, statusFor(err))
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, assessment)
}

// GET /api/v1/assessments/{model}
func (h *Handler) GetAssessment(req *restful.Request, resp *restful.Response) {
	model := req.PathParameter("model")

	assessment, err := h.assessments.GetAssessment(req.Request.Context(), model)
	if err != nil {
		middleware.HandleError(resp, err, statusFor(err))
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, assessment)
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, executor.ErrInvalidRequest), errors.Is(err, store.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, aggregator.ErrNoData), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, judge.ErrExhausted):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
