package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/aggregator"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

type Judger interface {
	Judge(ctx context.Context, req models.JudgeRequest) (models.JudgeResult, error)
}

type Assessor interface {
	Stats(ctx context.Context) (map[string]models.AggregatedStats, error)
	AssessModel(ctx context.Context, model string) (models.ModelAssessment, error)
}

// JudgeInput is the MCP tool input schema (matches HTTP API field names).
type JudgeInput struct {
	DocumentID string `json:"document_id" jsonschema:"identifier of the source document"`
	Model      string `json:"model" jsonschema:"name of the model that produced the response"`
	Context    string `json:"context" jsonschema:"full text of the source document"`
	Response   string `json:"response" jsonschema:"candidate response to judge"`
	Task       string `json:"task,omitempty" jsonschema:"optional original task shown to the judge"`
	Persist    bool   `json:"persist,omitempty" jsonschema:"merge the judgment into the stored evaluation for the document"`
}

// StatsInput optionally restricts the summary to one model.
type StatsInput struct {
	Model string `json:"model,omitempty" jsonschema:"optional model name; empty returns every tracked model"`
}

type StatsOutput struct {
	Models []aggregator.Summary `json:"models"`
	NoData []string             `json:"no_data,omitempty"`
}

type AssessInput struct {
	Model string `json:"model" jsonschema:"tracked model to assess"`
}

// NewJudgeHandler returns a tool handler that uses the given judger.
// Pass the returned function to mcp.AddTool.
func NewJudgeHandler(judger Judger) func(context.Context, *mcp.CallToolRequest, JudgeInput) (*mcp.CallToolResult, models.JudgeResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input JudgeInput) (*mcp.CallToolResult, models.JudgeResult, error) {
		result, err := judger.Judge(ctx, models.JudgeRequest{
			DocumentID: input.DocumentID,
			Model:      input.Model,
			Context:    input.Context,
			Response:   input.Response,
			Task:       input.Task,
			Persist:    input.Persist,
		})
		return nil, result, err
	}
}

// NewStatsHandler summarizes the persisted evaluations per tracked model.
func NewStatsHandler(assessor Assessor, trackedModels []string) func(context.Context, *mcp.CallToolRequest, StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
		stats, err := assessor.Stats(ctx)
		if err != nil {
			return nil, StatsOutput{}, err
		}

		wanted := trackedModels
		if input.Model != "" {
			wanted = []string{input.Model}
		}

		out := StatsOutput{Models: []aggregator.Summary{}}
		for _, model := range wanted {
			modelStats, err := aggregator.StatsFor(stats, model)
			if err != nil {
				out.NoData = append(out.NoData, model)
				continue
			}
			out.Models = append(out.Models, aggregator.Summarize(modelStats))
		}
		return nil, out, nil
	}
}

// NewAssessHandler generates and persists the meta-assessment for a model.
func NewAssessHandler(assessor Assessor) func(context.Context, *mcp.CallToolRequest, AssessInput) (*mcp.CallToolResult, models.ModelAssessment, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AssessInput) (*mcp.CallToolResult, models.ModelAssessment, error) {
		assessment, err := assessor.AssessModel(ctx, input.Model)
		return nil, assessment, err
	}
}
