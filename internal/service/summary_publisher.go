package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-progress-api/internal/dto"
)

// SummaryPublisher fans computed summaries out to subscribers.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, event dto.ProgressSummaryEvent) error
}

type summaryPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
}

// NewSummaryPublisher publishes on "<base>:summary" over Redis and
// "<base>.summary" over NATS. Either transport may be nil; an empty base
// disables publishing.
func NewSummaryPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string) SummaryPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":summary"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".summary"
	}

	return &summaryPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
	}
}

func (p *summaryPublisher) PublishSummary(ctx context.Context, event dto.ProgressSummaryEvent) error {
	if (p.redis == nil || p.redisChannel == "") && (p.nats == nil || p.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}
