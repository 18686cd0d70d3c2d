// Package metrics declares the prometheus collectors of the API.
package metrics

import (
	"context"
	"errors"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	// HTTPRequestsTotal counts requests by method, route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodgram_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RelationToggles counts favorite, cart and follow toggles.
	// outcome is ok, already_exists, not_found or error.
	RelationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_relation_toggles_total",
		Help: "Total number of favorite, shopping cart and subscription toggles",
	}, []string{"relation", "action", "outcome"})

	ShoppingListDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodgram_shopping_list_downloads_total",
		Help: "Total number of shopping list downloads",
	})

	// RedisErrors counts failed redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodgram_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ObjectStoreBreakerOpen is 1 while the object store circuit breaker is open.
	ObjectStoreBreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodgram_object_store_breaker_open",
		Help: "Whether the object store circuit breaker is open",
	})
)

// RedisHook counts redis command errors. redis.Nil is not an error.
type RedisHook struct{}

func (RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Outcome is the outcome label for the error of a toggle.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := models.KindOf(err); kind != models.KindInternal {
		return string(kind)
	}
	return "error"
}
