// Package erp is the HTTP client for the remote ERP REST API.
//
// Every call carries the caller's bearer token explicitly; the client holds no
// per-user state. Calls run inside circuit breaker → bulkhead → retry.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("erp")

const (
	serviceName = "erp"

	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 4 << 20
)

// Client wraps HTTP calls to the ERP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates an ERP client. Client-side rejections (4xx) are never
// retried regardless of cfg.Retryable.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	cfg.Retryable = domain.IsRetryable
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		logger:     logger,
	}
}

// BreakerSuccess tells the circuit breaker which outcomes are not upstream
// failures: a 4xx answer means the ERP is up.
func BreakerSuccess(err error) bool {
	return err == nil || !domain.IsRetryable(err)
}

// request describes one upstream call.
type request struct {
	op       string
	method   string
	path     string
	token    string
	query    url.Values
	body     any
	headers  map[string]string
	resource string // for not-found errors
	id       string
}

// call runs fn under the breaker, bulkhead and retry policy and maps the
// outcome to domain errors.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return nil, err
		}
		defer c.bulkhead.Release()
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return wrapError(op, err)
}

func wrapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: serviceName}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: serviceName + "/" + op}
	case !domain.IsRetryable(err):
		return err
	default:
		return &domain.ErrExternalService{Service: serviceName + "/" + op, Err: err}
	}
}

// do executes a single attempt and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("erp: request failed",
			zap.String("op", req.op),
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", req.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := statusError(req, resp.StatusCode, raw)
		c.logger.Debug("erp: non-2xx response",
			zap.String("op", req.op),
			zap.Int("status", resp.StatusCode),
			zap.Error(statusErr),
		)
		return statusErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.op, err)
	}
	return nil
}

func statusError(req request, status int, raw []byte) error {
	msg := upstreamMessage(raw)
	switch {
	case status == http.StatusUnauthorized:
		return &domain.ErrUnauthorized{Message: msg}
	case status == http.StatusForbidden:
		return &domain.ErrForbidden{Action: req.op}
	case status == http.StatusNotFound:
		return &domain.ErrNotFound{Resource: req.resource, ID: req.id}
	case status == http.StatusConflict:
		return &domain.ErrConflict{Message: msg}
	case status >= 400 && status < 500:
		return &domain.ErrUpstreamRejected{Service: serviceName, Status: status, Message: msg}
	default:
		return fmt.Errorf("erp returned status %d: %s", status, msg)
	}
}

// upstreamMessage extracts a human-readable message from an ERP error body.
func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// Ping checks the ERP is reachable. It bypasses the retry policy.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ERP.Ping")
	defer span.End()

	err := c.do(ctx, request{op: "ping", method: http.MethodGet, path: "/health"}, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Login exchanges credentials for an ERP access token.
func (c *Client) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "ERP.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.name", req.Username))

	var resp domain.LoginResponse
	err := c.call(ctx, "login", func() error {
		resp = domain.LoginResponse{}
		return c.do(ctx, request{
			op:     "login",
			method: http.MethodPost,
			path:   "/auth/login",
			body:   req,
		}, &resp)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &resp, nil
}
