package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host        string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port        int           `env:"REDIS_PORT" envDefault:"6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize    int           `env:"REDIS_POOL_SIZE" envDefault:"0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewRedisClient connects to Redis, pings it and installs the tracing hook.
// PoolSize 0 keeps the go-redis default.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}
	client.AddHook(redisTracingHook{tracer: otel.Tracer(tracerName)})
	return client, nil
}

// redisTracingHook emits one client span per command or pipeline. A miss
// (redis.Nil) is a normal cart lookup result and is not marked as an error.
type redisTracingHook struct {
	tracer trace.Tracer
}

func (h redisTracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h redisTracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		ctx, span := h.start(ctx, "redis."+cmd.Name(), cmd.Name())
		defer span.End()
		err := next(ctx, cmd)
		recordRedisErr(span, err)
		return err
	}
}

func (h redisTracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		names := make([]string, len(cmds))
		for i, c := range cmds {
			names[i] = c.Name()
		}
		ctx, span := h.start(ctx, "redis.pipeline", strings.Join(names, " "))
		span.SetAttributes(attribute.Int("db.redis.num_cmd", len(cmds)))
		defer span.End()
		err := next(ctx, cmds)
		recordRedisErr(span, err)
		return err
	}
}

func (h redisTracingHook) start(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return h.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", SystemRedis),
			attribute.String("db.operation", op),
		),
	)
}

func recordRedisErr(span trace.Span, err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
