package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	red "github.com/povarna/generative-ai-agents/summary-judge/internal/redis"
	streamredis "github.com/povarna/generative-ai-agents/summary-judge/internal/stream/redis"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	data := flag.String("d", "", "Inline JSON JudgeRequest")
	stream := flag.String("stream", streamredis.DefaultStream, "Stream name")
	flag.Parse()

	if *data == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -d '<json>'")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(*data, *stream); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(data, stream string) error {
	_ = godotenv.Load()

	var req models.JudgeRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return fmt.Errorf("invalid JudgeRequest: %w", err)
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	client, err := red.ConnectRedis(ctx, red.Options{
		Addr:       addr,
		Password:   os.Getenv("REDIS_PASSWORD"),
		MaxRetries: 3,
	}, &log.Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{streamredis.PayloadField: data},
	}).Result()
	if err != nil {
		return err
	}

	log.Info().
		Str("stream", stream).
		Str("id", id).
		Str("document_id", req.DocumentID).
		Str("model", req.Model).
		Msg("Published successfully!")
	return nil
}
