package countstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"

	"github.com/redis/go-redis/v9"
)

var redisInfractionPrefix string = "infractions/"
var redisRecordPrefix string = "infraction/"
var redisLogIndexPrefix string = "infraction-log/"

// Infractions are kept in a sorted set per (guild, user), scored by creation time in milliseconds. Per-record details (sanction, audit log id) live in a small hash alongside.
type RedisInfractionStore struct {
	Client *redis.Client
	// how long records are retained in redis. should be at least as long as the longest counting window.
	Retention time.Duration
}

var _ InfractionStore = (*RedisInfractionStore)(nil)

func NewRedisInfractionStore(redisURL string, retention time.Duration) (*RedisInfractionStore, error) {
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
	if retention <= 0 {
		retention = 2 * DefaultWindow
	}
	ris := RedisInfractionStore{
		Client:    rdb,
		Retention: retention,
	}
	return &ris, nil
}

func infractionKey(userID, guildID string) string {
	return redisInfractionPrefix + guildID + "/" + userID
}

func scoreMin(since time.Time) string {
	return strconv.FormatInt(since.UnixMilli(), 10)
}

func (s *RedisInfractionStore) GetInfractionCount(ctx context.Context, userID, guildID string, since time.Time) (int, error) {
	c, err := s.Client.ZCount(ctx, infractionKey(userID, guildID), scoreMin(since), "+inf").Result()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return int(c), nil
}

func (s *RedisInfractionStore) LastSanction(ctx context.Context, userID, guildID string, since time.Time) (*toxicity.Sanction, error) {
	ids, err := s.Client.ZRevRangeByScore(ctx, infractionKey(userID, guildID), &redis.ZRangeBy{
		Min: scoreMin(since),
		Max: "+inf",
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	for _, id := range ids {
		raw, err := s.Client.HGet(ctx, redisRecordPrefix+id, "sanction").Result()
		if errors.Is(err, redis.Nil) || raw == "" {
			continue
		} else if err != nil {
			return nil, err
		}
		sanction, err := toxicity.ParseSanction(raw)
		if err != nil {
			return nil, err
		}
		return &sanction, nil
	}
	return nil, nil
}

func (s *RedisInfractionStore) RecordInfraction(ctx context.Context, rec InfractionRecord) error {
	key := infractionKey(rec.UserID, rec.GuildID)
	sanction := ""
	if rec.Sanction != nil {
		sanction = rec.Sanction.String()
	}

	// all writes in a single redis round-trip
	multi := s.Client.TxPipeline()
	multi.ZAdd(ctx, key, redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.ID})
	multi.Expire(ctx, key, s.Retention)
	multi.HSet(ctx, redisRecordPrefix+rec.ID, "key", key, "log", rec.LogID, "sanction", sanction, "severity", rec.Severity)
	multi.Expire(ctx, redisRecordPrefix+rec.ID, s.Retention)
	if rec.LogID != "" {
		multi.Set(ctx, redisLogIndexPrefix+rec.LogID, rec.ID, s.Retention)
	}
	// trim anything which fell out of retention
	multi.ZRemRangeByScore(ctx, key, "-inf", scoreMin(rec.CreatedAt.Add(-s.Retention)))
	_, err := multi.Exec(ctx)
	return err
}

func (s *RedisInfractionStore) Retract(ctx context.Context, logID string) error {
	if logID == "" {
		return nil
	}
	id, err := s.Client.Get(ctx, redisLogIndexPrefix+logID).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	} else if err != nil {
		return err
	}
	key, err := s.Client.HGet(ctx, redisRecordPrefix+id, "key").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	multi := s.Client.TxPipeline()
	if key != "" {
		multi.ZRem(ctx, key, id)
	}
	multi.Del(ctx, redisRecordPrefix+id, redisLogIndexPrefix+logID)
	_, err = multi.Exec(ctx)
	return err
}
