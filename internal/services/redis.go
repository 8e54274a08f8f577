package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TripUpdatesChannel = "trip:updates"
	OpsAlertsChannel   = "ops:alerts"
)

// TripEvent is published after a lifecycle change so that notification and
// chat collaborators can react to it.
type TripEvent struct {
	Type       string                 `json:"type"`
	TripID     string                 `json:"tripId"`
	BidID      string                 `json:"bidId,omitempty"`
	BookingID  string                 `json:"bookingId,omitempty"`
	DriverID   string                 `json:"driverId,omitempty"`
	TravelerID string                 `json:"travelerId,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Timestamp  int64                  `json:"timestamp"`
}

// Alert asks an operator to repair state by hand.
type Alert struct {
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	TripID    string `json:"tripId"`
	BidID     string `json:"bidId"`
	Cause     string `json:"cause"`
	Timestamp int64  `json:"timestamp"`
}

type EventPublisher interface {
	PublishTripEvent(ctx context.Context, event TripEvent) error
	PublishAlert(ctx context.Context, alert Alert) error
}

// RedisPublisher fans events out over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to redisURL and checks the connection.
func NewRedisPublisher(ctx context.Context, redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPublisher{client: client}, nil
}

func (p *RedisPublisher) PublishTripEvent(ctx context.Context, event TripEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	return p.publish(ctx, TripUpdatesChannel, event)
}

func (p *RedisPublisher) PublishAlert(ctx context.Context, alert Alert) error {
	if alert.Timestamp == 0 {
		alert.Timestamp = time.Now().Unix()
	}
	return p.publish(ctx, OpsAlertsChannel, alert)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, data).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NoopPublisher is used when REDIS_URL is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTripEvent(context.Context, TripEvent) error { return nil }
func (NoopPublisher) PublishAlert(context.Context, Alert) error         { return nil }
