package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/executor"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var errMissingPayload = errors.New("missing payload field")

// Judger judges and persists one candidate response.
type Judger interface {
	Judge(ctx context.Context, req models.JudgeRequest) (models.JudgeResult, error)
}

// DefaultClaimIdle is how long a delivered message may stay unacknowledged
// before any consumer of the group reclaims and retries it.
const DefaultClaimIdle = time.Minute

const batchSize = 10

// Consumer reads JudgeRequest payloads from a Redis stream consumer group
// and merges each judgment into the stored evaluation for its document.
// Messages whose judgment fails stay pending: they are retried when the
// consumer restarts and reclaimed once idle for ClaimIdle.
type Consumer struct {
	client       *redis.Client
	stream       string
	groupID      string
	consumerName string
	judger       Judger
	logger       *zerolog.Logger

	ClaimIdle time.Duration
}

func NewConsumer(client *redis.Client, stream string, groupID string, consumerName string, judger Judger, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:       client,
		stream:       stream,
		groupID:      groupID,
		consumerName: consumerName,
		judger:       judger,
		logger:       logger,
		ClaimIdle:    DefaultClaimIdle,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	if err := c.drainPending(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error().Err(err).Msg("Failed to replay pending messages")
	}

	lastClaim := time.Now()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if c.ClaimIdle > 0 && time.Since(lastClaim) >= c.ClaimIdle {
			if err := c.reclaim(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("Failed to reclaim idle messages")
			}
			lastClaim = time.Now()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

// drainPending replays the messages already delivered to this consumer but
// never acknowledged, oldest first.
func (c *Consumer) drainPending(ctx context.Context) error {
	cursor := "0"
	for {
		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, cursor},
			Count:    batchSize,
			Block:    -1,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		if len(msgs) == 0 || len(msgs[0].Messages) == 0 {
			return nil
		}

		c.logger.Info().Int("count", len(msgs[0].Messages)).Msg("Replaying pending messages")
		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
			cursor = msg.ID
		}
	}
}

// reclaim takes over messages left idle by any consumer of the group and
// processes them again.
func (c *Consumer) reclaim(ctx context.Context) error {
	start := "0-0"
	for {
		msgs, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.stream,
			Group:    c.groupID,
			Consumer: c.consumerName,
			MinIdle:  c.ClaimIdle,
			Start:    start,
			Count:    batchSize,
		}).Result()
		if err != nil {
			return err
		}

		if len(msgs) > 0 {
			c.logger.Info().Int("count", len(msgs)).Msg("Reclaimed idle messages")
		}
		for _, msg := range msgs {
			c.process(ctx, msg)
		}

		if next == "0-0" || next == "" {
			return nil
		}
		start = next
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	req, err := DecodeRequest(msg)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // undecodable, ack and skip
		return
	}

	result, err := c.judger.Judge(ctx, req)
	if err != nil {
		if errors.Is(err, executor.ErrInvalidRequest) {
			c.logger.Error().Err(err).Str("id", msg.ID).Msg("Invalid judge request")
			c.ack(ctx, msg.ID)
			return
		}
		// stays pending for drainPending or reclaim
		c.logger.Error().Err(err).Str("id", msg.ID).Str("document_id", req.DocumentID).Msg("Judgment failed")
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("document_id", result.DocumentID).
		Str("model", result.Model).
		Str("status", string(result.Status)).
		Int("attempts", result.Attempts).
		Msg("Judgment complete")

	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

// DecodeRequest reads the JSON JudgeRequest in the payload field. Stream
// requests are always persisted.
func DecodeRequest(msg redis.XMessage) (models.JudgeRequest, error) {
	payload, ok := msg.Values[PayloadField].(string)
	if !ok {
		return models.JudgeRequest{}, errMissingPayload
	}

	var req models.JudgeRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return models.JudgeRequest{}, fmt.Errorf("invalid payload: %w", err)
	}
	req.Persist = true

	return req, nil
}
