package client

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxRequestIdKey ctxKey = "REQUEST_ID"
	ctxLoggerKey    ctxKey = "LOGGER"
)

func ctxWithRequestId(ctx context.Context, requestId uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxRequestIdKey, requestId)
}

func getRequestIdFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxRequestIdKey).(uuid.UUID)
	return id, ok
}

// CtxWithLogger attaches a logger that the client uses for requests made
// with ctx instead of its own.
func CtxWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, logger)
}

func LoggerFromCtx(ctx context.Context) (*slog.Logger, bool) {
	logger, ok := ctx.Value(ctxLoggerKey).(*slog.Logger)
	return logger, ok
}
