package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-spapi/core"
	"github.com/goliatone/go-spapi/schema"
)

const (
	DefaultTimeout = 30 * time.Second

	headerAccessToken    = "x-amz-access-token"
	maxResponseBodyBytes = 4 << 20
)

// Client sends Selling Partner API requests for one regional endpoint.
type Client struct {
	endpoint   string
	tokens     core.AccessTokenSource
	httpClient core.HTTPDoer
	userAgent  string
	signer     RequestSigner
	overrides  map[string]Limit
	limits     *limiterSet
	logger     core.Logger
	metrics    core.MetricsRecorder
}

type ClientOption func(*Client)

func WithHTTPClient(client core.HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(userAgent)
	}
}

// WithSigner signs every request, typically with a SigV4Signer.
func WithSigner(signer RequestSigner) ClientOption {
	return func(c *Client) {
		c.signer = signer
	}
}

// WithRateLimit replaces the default limit of one operation. A zero Rate
// disables client side throttling for it.
func WithRateLimit(operation string, limit Limit) ClientOption {
	return func(c *Client) {
		if c.overrides == nil {
			c.overrides = map[string]Limit{}
		}
		c.overrides[operation] = limit
	}
}

func WithLogger(logger core.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetricsRecorder records spapi.api_request.total and
// spapi.api_request.duration_ms for every request sent.
func WithMetricsRecorder(recorder core.MetricsRecorder) ClientOption {
	return func(c *Client) {
		c.metrics = recorder
	}
}

// NewClient returns a client for endpoint, an absolute origin such as
// https://sellingpartnerapi-na.amazon.com.
func NewClient(endpoint string, tokens core.AccessTokenSource, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, goerrors.New(fmt.Sprintf("resources: endpoint %q must be an absolute URL", endpoint), goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ErrorConfigurationMissing)
	}
	if tokens == nil {
		return nil, goerrors.New("resources: access token source is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ErrorConfigurationMissing)
	}
	client := &Client{
		endpoint:  endpoint,
		tokens:    tokens,
		userAgent: core.DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	client.logger = glog.Ensure(client.logger)
	if client.metrics == nil {
		client.metrics = core.NopMetricsRecorder{}
	}
	client.limits = newLimiterSet(client.overrides)
	return client, nil
}

// NewClientFromConfig targets the endpoint of cfg's marketplace. When the
// application keys carry AWS credentials, requests are signed for the
// marketplace's AWS region.
func NewClientFromConfig(cfg core.Config, tokens core.AccessTokenSource, opts ...ClientOption) (*Client, error) {
	resolved, err := cfg.Marketplace()
	if err != nil {
		return nil, err
	}
	base := []ClientOption{}
	if userAgent := strings.TrimSpace(cfg.UserAgent); userAgent != "" {
		base = append(base, WithUserAgent(userAgent))
	}
	if cfg.IsSet("aws_access_key") && cfg.IsSet("aws_secret_key") {
		signer, err := NewSigV4Signer(cfg.Keys, resolved.AWSRegion())
		if err != nil {
			return nil, err
		}
		base = append(base, WithSigner(signer))
	}
	return NewClient(resolved.Endpoint(cfg.Sandbox), tokens, append(base, opts...)...)
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) Orders() *Orders {
	return &Orders{client: c}
}

func (c *Client) Notifications() *Notifications {
	return &Notifications{client: c}
}

// RateLimit reports the limit currently applied to operation, in requests
// per second.
func (c *Client) RateLimit(operation string) float64 {
	return float64(c.limits.current(operation))
}

type apiRequest struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      map[string]any
}

// call sends req and decodes a 2xx body into T.
func call[T any](ctx context.Context, c *Client, req apiRequest) (T, error) {
	var zero T
	raw, err := c.send(ctx, req)
	if err != nil {
		return zero, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, nil
	}
	return schema.Decode[T](raw)
}

func (c *Client) send(ctx context.Context, req apiRequest) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.limits.wait(ctx, req.operation); err != nil {
		return nil, fmt.Errorf("resources: %s rate limit wait: %w", req.operation, err)
	}
	accessToken, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	target := c.endpoint + req.path
	if encoded := req.query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("resources: encode %s body: %w", req.operation, err)
		}
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("resources: build %s request: %w", req.operation, err)
	}
	httpReq.Header.Set(headerAccessToken, accessToken)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if c.signer != nil {
		if err := c.signer.Sign(httpReq); err != nil {
			return nil, err
		}
	}

	startedAt := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordRequest(ctx, req.operation, 0, startedAt)
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("resources: %s request failed", req.operation)).
			WithCode(http.StatusBadGateway).
			WithTextCode(ErrorRequestFailed).
			WithMetadata(map[string]any{"operation": req.operation})
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("resources: read %s response: %w", req.operation, err)
	}
	if len(raw) > maxResponseBodyBytes {
		return nil, fmt.Errorf("resources: %s response exceeds %d bytes", req.operation, maxResponseBodyBytes)
	}

	fields := []any{
		"operation", req.operation,
		"status_code", httpResp.StatusCode,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	}
	if id := requestID(httpResp.Header); id != "" {
		fields = append(fields, "request_id", id)
	}
	if limit, ok := c.limits.observe(req.operation, httpResp.Header); ok {
		fields = append(fields, "rate_limit", limit)
	}
	c.logger.WithContext(ctx).Debug("spapi request completed", fields...)
	c.recordRequest(ctx, req.operation, httpResp.StatusCode, startedAt)

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, newResponseError(req.operation, httpResp, raw)
	}
	return raw, nil
}

func (c *Client) recordRequest(ctx context.Context, operation string, statusCode int, startedAt time.Time) {
	status := "success"
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		status = "failure"
	}
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	if statusCode > 0 {
		tags["status_code"] = strconv.Itoa(statusCode)
	}
	c.metrics.IncCounter(ctx, "spapi.api_request.total", 1, tags)
	c.metrics.ObserveHistogram(ctx, "spapi.api_request.duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)
}
