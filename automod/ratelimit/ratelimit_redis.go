package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var redisRateLimitPrefix string = "ratelimit/"

// Prune, count and append atomically. Returns 1 if admitted.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local ceiling = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= ceiling then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// Limiter with the window kept in redis, shared across daemon replicas.
type RedisLimiter struct {
	Client  *redis.Client
	Ceiling int
	Window  time.Duration
	Logger  *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(redisURL string, ceiling int, window time.Duration, logger *slog.Logger) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{
		Client:  rdb,
		Ceiling: ceiling,
		Window:  window,
		Logger:  logger,
	}, nil
}

func (l *RedisLimiter) Admit(ctx context.Context, clientID string) bool {
	key := redisRateLimitPrefix + clientKey(clientID)
	now := time.Now().UnixMilli()
	res, err := admitScript.Run(ctx, l.Client, []string{key}, now, l.Window.Milliseconds(), l.Ceiling, uuid.NewString()).Int()
	if err != nil {
		l.Logger.Warn("rate limit check failed, admitting", "client", clientID, "err", err)
		rateLimitErrors.Inc()
		return true
	}
	if res != 1 {
		rateLimitedCount.WithLabelValues("redis").Inc()
		return false
	}
	return true
}
