package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"quiz-api-service/internal/app"
	"quiz-api-service/internal/domain"
)

const generationKey = "quiz:info:gen"

// InfoCache is a read-through Redis cache in front of an app.InfoSource.
// Snapshots are stored under the current generation:
//
//	GET quiz:info:gen           -> N
//	GET quiz:info:snapshot:{N}  -> JSON QuizInfo
//
// QuizChanged bumps the generation after every commit, so a snapshot read
// before the commit can only ever be filed under an outdated generation.
type InfoCache struct {
	client *redis.Client
	source app.InfoSource
	ttl    time.Duration
	log    *zap.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewInfoCache(client *redis.Client, source app.InfoSource, ttl time.Duration, log *zap.Logger) *InfoCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &InfoCache{
		client: client,
		source: source,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *InfoCache) Info(ctx context.Context) (domain.QuizInfo, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("info cache unavailable, reading through", zap.Error(err))
		return c.source.Info(ctx)
	}
	key := snapshotKey(gen)

	if info, ok := c.cached(ctx, key); ok {
		return info, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if info, ok := c.cached(ctx, key); ok {
			return info, nil
		}

		info, err := c.source.Info(ctx)
		if err != nil {
			return domain.QuizInfo{}, err
		}
		data, err := json.Marshal(info)
		if err != nil {
			return info, nil
		}
		if err := c.client.Set(ctx, key, data, c.ttlWithJitter()).Err(); err != nil {
			c.log.Warn("info cache fill failed", zap.String("key", key), zap.Error(err))
		}
		return info, nil
	})
	if err != nil {
		return domain.QuizInfo{}, err
	}
	return result.(domain.QuizInfo), nil
}

// QuizChanged retires every snapshot cached so far.
func (c *InfoCache) QuizChanged(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Error("info cache invalidation failed", zap.Error(err))
	}
}

func (c *InfoCache) cached(ctx context.Context, key string) (domain.QuizInfo, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.QuizInfo{}, false
	}
	var info domain.QuizInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return domain.QuizInfo{}, false
	}
	return info, true
}

func snapshotKey(gen int64) string {
	return "quiz:info:snapshot:" + strconv.FormatInt(gen, 10)
}

func (c *InfoCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
