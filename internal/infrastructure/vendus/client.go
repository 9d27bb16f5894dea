package vendus

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

// maxResponseSize is the maximum allowed response size from the provider (10MB)
const maxResponseSize = 10 * 1024 * 1024

var errResponseTooLarge = fmt.Errorf("vendus: response exceeds %d bytes", maxResponseSize)

const tracerName = "github.com/erp/fiscalsync/internal/infrastructure/vendus"

// Client is the request envelope around every provider call. It resolves
// the credential of the acting identity, strips empty values from request
// bodies and turns provider error envelopes into typed errors.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
	observer   RequestObserver
}

// RequestObserver is told about every completed provider call. status is 0
// when the call never reached the provider.
type RequestObserver interface {
	ObserveRequest(ctx context.Context, method, endpoint string, status int, latency time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(context.Context, string, string, int, time.Duration) {}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTracer replaces the tracer used for request spans
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithObserver reports every provider call to o
func WithObserver(o RequestObserver) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewClient creates a provider client with the given configuration
func NewClient(config *Config, logger *zap.Logger, opts ...ClientOption) (*Client, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout(),
		},
		logger:   logger.Named("vendus"),
		tracer:   otel.Tracer(tracerName),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ fiscalsync.RemoteGateway = (*Client)(nil)

// Do performs one provider call as the identity carried by sc.
func (c *Client) Do(ctx context.Context, sc fiscalsync.SyncContext, req fiscalsync.Request) (*fiscalsync.Response, error) {
	key := sc.Credential()
	if key == "" {
		if sc.AsSystem {
			return nil, fiscalsync.NewConfigurationError("vendus: api key not found for tenant %s", sc.TenantID)
		}
		return nil, fiscalsync.NewConfigurationError("vendus: api key not found for user %s", sc.UserID)
	}

	endpoint := NormalizeEndpoint(req.Endpoint)
	target := c.config.APIRoot() + endpoint
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "vendus.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("vendus.endpoint", endpoint),
			attribute.Bool("vendus.as_system", sc.AsSystem),
		),
	)
	defer span.End()

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(fiscalsync.Sanitize(req.Body))
		if err != nil {
			return nil, fmt.Errorf("vendus: failed to encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("vendus: failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", BasicAuthKey(key))
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observer.ObserveRequest(ctx, req.Method, endpoint, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.Warn("Provider call failed",
			zap.String("method", req.Method),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return nil, &fiscalsync.RemoteServiceError{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		span.RecordError(err)
		return nil, &fiscalsync.RemoteServiceError{StatusCode: resp.StatusCode, Cause: err}
	}
	if len(raw) > maxResponseSize {
		c.observer.ObserveRequest(ctx, req.Method, endpoint, resp.StatusCode, time.Since(start))
		span.RecordError(errResponseTooLarge)
		span.SetStatus(codes.Error, "response too large")
		c.logger.Error("Provider response too large",
			zap.String("method", req.Method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &fiscalsync.RemoteServiceError{StatusCode: resp.StatusCode, Cause: errResponseTooLarge}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.observer.ObserveRequest(ctx, req.Method, endpoint, resp.StatusCode, time.Since(start))
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("Provider call", fields...)
		return decodeSuccess(resp.StatusCode, raw), nil
	}

	var envelope errorResponse
	_ = json.Unmarshal(raw, &envelope)

	if resp.StatusCode == http.StatusNotFound && envelope.firstCode() == errorCodeNoRecords {
		c.logger.Debug("Provider collection empty", fields...)
		return &fiscalsync.Response{StatusCode: resp.StatusCode, Body: json.RawMessage("[]")}, nil
	}

	remoteErr := &fiscalsync.RemoteServiceError{
		StatusCode: resp.StatusCode,
		Codes:      envelope.codes(),
		Messages:   envelope.messages(),
	}
	span.SetStatus(codes.Error, remoteErr.Error())
	c.logger.Error("Provider call rejected", append(fields, zap.String("error", remoteErr.Error()))...)
	return nil, remoteErr
}

func decodeSuccess(status int, raw []byte) *fiscalsync.Response {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &fiscalsync.Response{StatusCode: status}
	}
	if json.Valid(trimmed) {
		return &fiscalsync.Response{StatusCode: status, Body: json.RawMessage(trimmed)}
	}
	return &fiscalsync.Response{StatusCode: status, Binary: base64.StdEncoding.EncodeToString(raw)}
}
