package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/mcpadapter"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := setup.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, logs go to stderr
	log.Logger = logger.New(cfg.LogLevel, cfg.LogFormat)
	logger := log.Logger

	// Wire dependencies
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}
	defer deps.Close()

	// Create MCP Server
	server := createMCPServer(deps)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			logger.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		logger.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(deps *setup.Dependencies) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "summary-judge",
			Version: "1.0.0",
		}, nil,
	)

	// Add Tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "judge_summary",
		Description: "Score a model's summary of a source document from 0 to 10 with an explanation. Set persist to store the judgment.",
	}, mcpadapter.NewJudgeHandler(deps.EvaluationExecutor))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "aggregate_scores",
		Description: "Per-model count, mean, min and max over every stored judgment.",
	}, mcpadapter.NewStatsHandler(deps.AssessmentExecutor, deps.Config.ModelNames()))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_model",
		Description: "Generate and store the strengths, weaknesses and recommendations assessment for one model.",
	}, mcpadapter.NewAssessHandler(deps.AssessmentExecutor))
	return server
}
