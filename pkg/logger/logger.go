package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dmurtari/mbu-online-sub002/pkg/config"
	"github.com/dmurtari/mbu-online-sub002/pkg/middleware/requestid"
)

const contextKey = "request_logger"

func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build(zap.Fields(zap.String("service", "mbu-engine")))
}

// GinMiddleware logs one line per request and exposes a request-scoped logger
// to handlers through FromGin.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := requestid.Value(c)

		scoped := l
		if reqID != "" {
			scoped = l.With(zap.String("request_id", reqID))
		}
		c.Set(contextKey, scoped)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		scoped.Info("http_request", fields...)
	}
}

// FromGin returns the request-scoped logger, or fallback when none is set.
func FromGin(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if c != nil {
		if v, ok := c.Get(contextKey); ok {
			if l, ok := v.(*zap.Logger); ok {
				return l
			}
		}
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
