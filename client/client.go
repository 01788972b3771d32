package client

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/International-Combat-Archery-Alliance/registration-client/validation"
)

const tracerName = "github.com/International-Combat-Archery-Alliance/registration-client/client"

// Client is the single point through which the backend is reached. It holds
// the bearer credential, if any, and attaches it to every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	validate   *validator.Validate

	mu         sync.RWMutex
	credential string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is still
// wrapped for request ids, tracing and access logs.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
		validate:   validation.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Transport = newLoggingTransport(hc.Transport, c.logger)
	c.httpClient = &hc

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) SetCredential(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = credential
}

func (c *Client) ClearCredential() {
	c.SetCredential("")
}

func (c *Client) HasCredential() bool {
	return c.getCredential() != ""
}

func (c *Client) getCredential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}
