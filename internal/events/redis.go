package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher broadcasts events on one pub/sub channel per facility so every API instance
// can feed its own websocket hub.
type RedisPublisher struct {
	client redisPublishClient
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	return newRedisPublisher(client, prefix)
}

func newRedisPublisher(client redisPublishClient, prefix string) *RedisPublisher {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "slotwise"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Channel(facilityID int64) string {
	return facilityChannel(p.prefix, facilityID)
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	channel := p.Channel(ev.FacilityID)
	if err := p.client.Publish(ctx, channel, value).Err(); err != nil {
		return fmt.Errorf("publish event %s to %s: %w", ev.ID, channel, err)
	}
	return nil
}

func facilityChannel(prefix string, facilityID int64) string {
	return prefix + ":facility:" + strconv.FormatInt(facilityID, 10)
}

// Relay subscribes to the facility channels and hands every received event to target.
type Relay struct {
	client  *redis.Client
	pattern string
	target  Publisher
	log     *slog.Logger
}

func NewRelay(client *redis.Client, prefix string, target Publisher, log *slog.Logger) *Relay {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "slotwise"
	}
	return &Relay{client: client, pattern: prefix + ":facility:*", target: target, log: log}
}

// Run blocks until ctx is cancelled or the subscription closes.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, r.pattern)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.pattern, err)
	}
	r.log.Info("relaying schedule events from redis", "pattern", r.pattern)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

func (r *Relay) forward(ctx context.Context, channel string, data []byte) {
	ev, err := DecodeEvent(data)
	if err != nil {
		r.log.Warn("dropping undecodable event", "channel", channel, "error", err)
		return
	}
	if err := r.target.Publish(ctx, ev); err != nil {
		r.log.Warn("relay publish failed", "event_id", ev.ID, "channel", channel, "error", err)
	}
}

// DecodeEvent parses a published event. The payload is kept as raw JSON.
func DecodeEvent(data []byte) (Event, error) {
	var wire struct {
		Event
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Event{}, err
	}
	if wire.ID == "" || wire.Type == "" {
		return Event{}, fmt.Errorf("event is missing id or type")
	}
	ev := wire.Event
	ev.Payload = wire.Payload
	return ev, nil
}
