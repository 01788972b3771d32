package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestIdHeader = "X-Request-Id"

// loggingTransport stamps every outgoing request with a request id and
// writes one access log line per round trip.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func newLoggingTransport(next http.RoundTripper, logger *slog.Logger) *loggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{
		next:   otelhttp.NewTransport(next),
		logger: logger,
	}
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	requestId, ok := getRequestIdFromCtx(r.Context())
	if !ok {
		requestId = uuid.New()
	}

	r = r.Clone(ctxWithRequestId(r.Context(), requestId))
	r.Header.Set(requestIdHeader, requestId.String())

	logger := t.logger
	if ctxLogger, ok := LoggerFromCtx(r.Context()); ok {
		logger = ctxLogger
	}
	logger = logger.With(slog.String("request-id", requestId.String()))

	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	if err != nil {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("latency", formatDuration(time.Since(start))),
			slog.String("method", r.Method),
			slog.String("host", r.URL.Host),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	logger.InfoContext(r.Context(), "request complete",
		slog.String("latency", formatDuration(time.Since(start))),
		slog.Int64("request-content-length", r.ContentLength),
		slog.Int64("resp-content-length", resp.ContentLength),
		slog.String("host", r.URL.Host),
		slog.String("method", r.Method),
		slog.Int("status-code", resp.StatusCode),
		slog.String("path", r.URL.Path),
	)
	return resp, nil
}

// formatDuration formats a duration to one decimal point.
func formatDuration(d time.Duration) string {
	div := time.Duration(10)
	switch {
	case d > time.Second:
		d = d.Round(time.Second / div)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond / div)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond / div)
	case d > time.Nanosecond:
		d = d.Round(time.Nanosecond / div)
	}
	return d.String()
}
