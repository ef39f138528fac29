package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/judge").
			To(handler.Judge).
			Doc("Judge one candidate response against its source document").
			Metadata(restfulspec.KeyOpenAPITags, []string{"judge"}).
			Reads(models.JudgeRequest{}).
			Writes(models.JudgeResult{}).
			Returns(200, "OK", models.JudgeResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/stats").
			To(handler.Stats).
			Doc("Per-model score summary over persisted evaluations").
			Metadata(restfulspec.KeyOpenAPITags, []string{"assessment"}).
			Writes(StatsResponse{}).
			Returns(200, "OK", StatsResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/assessments/{model}").
			To(handler.Assess).
			Doc("Generate and persist the meta-assessment for a model").
			Metadata(restfulspec.KeyOpenAPITags, []string{"assessment"}).
			Param(ws.PathParameter("model", "Tracked model name").DataType("string")).
			Writes(models.ModelAssessment{}).
			Returns(200, "OK", models.ModelAssessment{}).
			Returns(404, "No Judgments For Model", middleware.ErrorResponse{}).
			Returns(502, "Assessment Exhausted", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/assessments/{model}").
			To(handler.GetAssessment).
			Doc("Read a persisted meta-assessment").
			Metadata(restfulspec.KeyOpenAPITags, []string{"assessment"}).
			Param(ws.PathParameter("model", "Tracked model name").DataType("string")).
			Writes(models.ModelAssessment{}).
			Returns(200, "OK", models.ModelAssessment{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}))

	container.Add(ws)
}
