package publisher

import (
	"context"
	"encoding/base64"
	"math/rand"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher on top of Redis streams. Messages are
// spread across streamCount streams named prefix:0 .. prefix:N-1 so consumers
// can shard.
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// Publish base64 encodes the message and XADDs it to a randomly picked shard
func (p *RedisPublisher) Publish(key string, message []byte) error {
	encoded := base64.StdEncoding.EncodeToString(message)

	stream := p.streamPrefix + ":" + strconv.Itoa(rand.Intn(p.streamCount))

	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encoded,
		},
	}).Err()
}

// TrimStreams trims every shard to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	pattern := p.streamPrefix + ":*"
	streams, err := p.client.Keys(p.ctx, pattern).Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
