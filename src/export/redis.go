package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"artifact-scanner/src/logutil"
	"artifact-scanner/src/scanner"
)

// RedisPusher is the part of a Redis client RedisSink uses.
type RedisPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

type RedisOptions struct {
	// Addr is host:port or a redis:// URL.
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisSink appends each record as JSON to <key>:<session> and writes the
// error tally to <key>:<session>:stats.
type RedisSink struct {
	Client RedisPusher
	Key    string

	closer interface{ Close() error }
}

const dialTimeout = 5 * time.Second

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, opts RedisOptions) (*RedisSink, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis export: no address")
	}
	var ro *redis.Options
	if strings.Contains(opts.Addr, "://") {
		var err error
		if ro, err = redis.ParseURL(opts.Addr); err != nil {
			return nil, fmt.Errorf("redis export: %w", err)
		}
	} else {
		ro = &redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB}
	}

	logutil.Info(logutil.Fields{"addr": logutil.RedactAddr(opts.Addr)}, "export: connecting to redis")
	client := redis.NewClient(ro)
	pctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis export: ping %s: %w", logutil.RedactAddr(opts.Addr), err)
	}
	return &RedisSink{Client: client, Key: opts.Key, closer: client}, nil
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *RedisSink) listKey(session string) string {
	key := s.Key
	if key == "" {
		key = "artifacts"
	}
	return key + ":" + session
}

func (s *RedisSink) Export(ctx context.Context, b Batch) error {
	list := s.listKey(b.SessionID)
	if len(b.Records) > 0 {
		values := make([]interface{}, 0, len(b.Records))
		for _, a := range b.Records {
			data, err := json.Marshal(redisRecord{ID: a.ID, goodArtifact: toGOOD(a)})
			if err != nil {
				return err
			}
			values = append(values, string(data))
		}
		if err := s.Client.RPush(ctx, list, values...).Err(); err != nil {
			return fmt.Errorf("rpush %s: %w", list, err)
		}
	}

	fields := []interface{}{
		"outcome", string(b.Outcome),
		"records", len(b.Records),
		"finished", b.Finished.UTC().Format(time.RFC3339),
	}
	for _, c := range scanner.Categories {
		fields = append(fields, string(c), b.Stats[c])
	}
	if err := s.Client.HSet(ctx, list+":stats", fields...).Err(); err != nil {
		return fmt.Errorf("hset %s:stats: %w", list, err)
	}
	logutil.Debug(logutil.Fields{"key": list, "records": len(b.Records)}, "export: pushed to redis")
	return nil
}

type redisRecord struct {
	ID string `json:"id"`
	goodArtifact
}
