package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisEndpointIndexKey  = "endpoints:index"
	redisEndpointKeyPrefix = "endpoint:"
	redisRunKeyPrefix      = "run:"
	redisRunListKey        = "runs"
	redisEndpointTTL       = 5 * time.Minute
	redisRunTTL            = 24 * time.Hour
	redisRunListMax        = 100
)

// RedisRecorder guarda el último estado de cada endpoint (con TTL) y un resumen de cada ejecución.
type RedisRecorder struct {
	client redis.Cmdable
}

func NewRedisRecorder(client redis.Cmdable) *RedisRecorder {
	return &RedisRecorder{client: client}
}

func (r *RedisRecorder) Record(ctx context.Context, run Run) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, ep := range run.Endpoints {
			key := redisEndpointKeyPrefix + ep.Endpoint
			pipe.HSet(ctx, key, endpointFields(run, ep))
			pipe.Expire(ctx, key, redisEndpointTTL)
			pipe.SAdd(ctx, redisEndpointIndexKey, ep.Endpoint)
		}

		runKey := redisRunKeyPrefix + run.ID
		pipe.HSet(ctx, runKey, map[string]interface{}{
			"k":           fmt.Sprint(run.K),
			"mod":         fmt.Sprint(run.Modulus),
			"product":     fmt.Sprint(run.Outcome.Product),
			"succeeded":   run.Outcome.Succeeded,
			"total":       run.Outcome.Total,
			"status":      run.Status,
			"started_at":  run.StartedAt.UnixMilli(),
			"finished_at": run.FinishedAt.UnixMilli(),
		})
		pipe.Expire(ctx, runKey, redisRunTTL)
		pipe.LPush(ctx, redisRunListKey, run.ID)
		pipe.LTrim(ctx, redisRunListKey, 0, redisRunListMax-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("journal: redis: %w", err)
	}
	return nil
}

func endpointFields(run Run, ep EndpointRecord) map[string]interface{} {
	return map[string]interface{}{
		"last_run":  run.ID,
		"ok":        ep.OK,
		"value":     fmt.Sprint(ep.Value),
		"begin":     fmt.Sprint(ep.Range.Begin),
		"end":       fmt.Sprint(ep.Range.End),
		"error":     ep.Error,
		"last_seen": run.FinishedAt.UnixMilli(),
	}
}
