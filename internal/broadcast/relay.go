package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	relayBuffer         = 256
	relayPublishTimeout = 2 * time.Second
)

// RedisRelay shares a hub's events with other replicas through Redis pub/sub.
// Each topic maps to the channel "<prefix>:<topic>". Events that come back
// with this hub's origin are ignored, since they were delivered locally on
// publish.
type RedisRelay struct {
	rc     *redis.Client
	prefix string
	hub    *Hub
	log    logrus.FieldLogger

	out   chan Event
	ready chan struct{}
}

// NewRedisRelay attaches a relay to hub. Call Run to start moving events.
func NewRedisRelay(rc *redis.Client, prefix string, hub *Hub, log logrus.FieldLogger) *RedisRelay {
	r := &RedisRelay{
		rc:     rc,
		prefix: prefix,
		hub:    hub,
		log:    log,
		out:    make(chan Event, relayBuffer),
		ready:  make(chan struct{}),
	}
	hub.SetForwarder(r.enqueue)
	return r
}

// Ready is closed once the pattern subscription is confirmed.
func (r *RedisRelay) Ready() <-chan struct{} { return r.ready }

func (r *RedisRelay) channel(topic string) string {
	return r.prefix + ":" + topic
}

func (r *RedisRelay) enqueue(ev Event) {
	select {
	case r.out <- ev:
	default:
		r.log.WithField("topic", ev.Topic).Warn("broadcast: relay queue full, event not forwarded")
	}
}

// Run subscribes to every topic under the prefix and pumps events both ways
// until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rc.PSubscribe(ctx, r.prefix+":*")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("broadcast: subscribe %s:*: %w", r.prefix, err)
	}
	close(r.ready)
	r.log.WithField("pattern", r.prefix+":*").Info("broadcast: redis relay subscribed")

	in := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-r.out:
			r.publish(ctx, ev)
		case msg, ok := <-in:
			if !ok {
				return fmt.Errorf("broadcast: redis subscription closed")
			}
			r.receive(msg)
		}
	}
}

func (r *RedisRelay) publish(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.log.WithError(err).Warn("broadcast: encode relay event")
		return
	}
	pctx, cancel := context.WithTimeout(ctx, relayPublishTimeout)
	defer cancel()
	if err := r.rc.Publish(pctx, r.channel(ev.Topic), data).Err(); err != nil {
		r.log.WithError(err).WithField("topic", ev.Topic).Warn("broadcast: relay publish failed")
	}
}

func (r *RedisRelay) receive(msg *redis.Message) {
	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		r.log.WithError(err).WithField("channel", msg.Channel).Warn("broadcast: unable to parse relayed event")
		return
	}
	if ev.Origin == r.hub.Origin() {
		return
	}
	if ev.Topic == "" {
		ev.Topic = strings.TrimPrefix(msg.Channel, r.prefix+":")
	}
	r.hub.Deliver(ev)
}
