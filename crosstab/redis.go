package crosstab

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	session "github.com/traf3li/go-session"
)

const defaultChannel = "session:logout"

// RedisBroadcaster fans logout signals out over a redis pub/sub channel.
// Every process runs one: it republishes local manual logouts and applies
// remote ones to its token manager.
type RedisBroadcaster struct {
	client  redis.UniversalClient
	manager *session.TokenManager
	channel string
	logger  session.Logger
}

// RedisOption customizes the broadcaster.
type RedisOption func(*RedisBroadcaster)

// WithChannel overrides the pub/sub channel name.
func WithChannel(channel string) RedisOption {
	return func(b *RedisBroadcaster) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// WithRedisLogger overrides the logger.
func WithRedisLogger(logger session.Logger) RedisOption {
	return func(b *RedisBroadcaster) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewRedisBroadcaster wires client and manager together. Call Run to start
// listening.
func NewRedisBroadcaster(client redis.UniversalClient, manager *session.TokenManager, opts ...RedisOption) *RedisBroadcaster {
	b := &RedisBroadcaster{
		client:  client,
		manager: manager,
		channel: defaultChannel,
		logger:  session.DefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Publish announces a local logout to every other instance.
func (b *RedisBroadcaster) Publish(ctx context.Context) error {
	signal := LogoutSignal{
		Source:  b.manager.InstanceID(),
		FiredAt: time.Now().UTC(),
	}
	data, err := signal.Encode()
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Run subscribes to the channel and applies remote logout signals until ctx
// is canceled. Local manual logouts are republished automatically via the
// manager's tokens-cleared channel.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	unsubscribe := b.manager.Events().TokensCleared.Subscribe(func(e session.TokensClearedEvent) {
		if e.Reason != session.ClearReasonManualLogout {
			return
		}
		if err := b.Publish(ctx); err != nil {
			b.logger.Error("failed to broadcast logout: %v", err)
		}
	})
	defer unsubscribe()

	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBroadcaster) handle(payload string) {
	signal, err := DecodeSignal([]byte(payload))
	if err != nil {
		b.logger.Error("ignoring malformed logout signal: %v", err)
		return
	}
	if !ShouldApply(signal, b.manager.InstanceID()) {
		return
	}
	b.logger.Info("applying logout from instance %s", signal.Source)
	b.manager.ApplyExternalLogout(signal.Source)
}
