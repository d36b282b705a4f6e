package connection

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLogger routes go-redis internal messages to zap at debug level.
// Connection failures are already reported by Manager at warn level.
type RedisLogger struct {
	logger *zap.Logger
}

// NewRedisLogger creates a RedisLogger. A nil logger discards messages.
func NewRedisLogger(logger *zap.Logger) *RedisLogger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisLogger{logger: logger}
}

// Printf implements the go-redis logging interface.
func (l *RedisLogger) Printf(_ context.Context, format string, v ...any) {
	l.logger.Debug(strings.TrimPrefix(fmt.Sprintf(format, v...), "redis: "))
}

// InstallRedisLogger replaces the process-wide go-redis logger, which
// otherwise writes to stderr.
func InstallRedisLogger(logger *zap.Logger) {
	redis.SetLogger(NewRedisLogger(logger))
}
