package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/pkg/logger"
	"payment-broker.backend/pkg/metrics"
)

const (
	DefaultTransactPath = "/api/transact.php"
	DefaultQueryPath    = "/api/query.php"
	DefaultTimeout      = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// Config locates the gateway endpoints
type Config struct {
	BaseURL      string
	TransactPath string
	QueryPath    string
	Timeout      time.Duration
}

// Client posts form-encoded requests to the payment gateway
type Client struct {
	cfg     Config
	http    *http.Client
	metrics *metrics.BrokerMetrics
}

// NewClient creates a gateway client; m may be nil
func NewClient(cfg Config, m *metrics.BrokerMetrics) *Client {
	if cfg.TransactPath == "" {
		cfg.TransactPath = DefaultTransactPath
	}
	if cfg.QueryPath == "" {
		cfg.QueryPath = DefaultQueryPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		metrics: m,
	}
}

// AuditPayload returns the sanitized form body of req
func (c *Client) AuditPayload(req *entities.TransactionRequest) string {
	return AuditForm(req)
}

// AuditQuery returns the form body of a query without the security key
func (c *Client) AuditQuery(req *entities.QueryRequest) string {
	return EncodeForm(queryFields(req), false).Encode()
}

// Transact runs a sale, auth, capture, void or refund. The raw reply is
// returned whenever one was received, even if it could not be parsed.
func (c *Client) Transact(ctx context.Context, securityKey string, req *entities.TransactionRequest) (*entities.TransactionResponse, string, error) {
	form := EncodeForm(transactionFields(req), true)
	form.Set(SecurityKeyField, securityKey)

	op := string(req.Type)
	raw, err := c.post(ctx, op, c.cfg.TransactPath, form)
	if err != nil {
		return nil, raw, err
	}

	resp, err := ParseTransactionResponse(raw)
	if err != nil {
		c.count(op, "error")
		return nil, raw, domainerrors.Transient("gateway returned an unreadable response", err)
	}

	switch resp.Response {
	case entities.GatewayResponseApproved:
		c.count(op, "approved")
	case entities.GatewayResponseDeclined:
		c.count(op, "declined")
	default:
		c.count(op, "error")
	}
	return resp, raw, nil
}

// Query looks transactions up through the query endpoint
func (c *Client) Query(ctx context.Context, securityKey string, req *entities.QueryRequest) (*entities.QueryResponse, string, error) {
	form := EncodeForm(queryFields(req), true)
	form.Set(SecurityKeyField, securityKey)

	const op = "query"
	raw, err := c.post(ctx, op, c.cfg.QueryPath, form)
	if err != nil {
		return nil, raw, err
	}

	resp, err := ParseQueryResponse([]byte(raw))
	if err != nil {
		c.count(op, "error")
		if errors.Is(err, ErrGatewayRejected) {
			return resp, raw, domainerrors.Transient("gateway rejected the query", err)
		}
		return nil, raw, domainerrors.Transient("gateway returned an unreadable response", err)
	}
	c.count(op, "approved")
	return resp, raw, nil
}

func (c *Client) post(ctx context.Context, op, path string, form url.Values) (string, error) {
	endpoint := c.cfg.BaseURL + path
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.GatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		}
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", domainerrors.InternalError(fmt.Errorf("build gateway request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "*/*")

	res, err := c.http.Do(httpReq)
	if err != nil {
		c.count(op, "transport_error")
		logger.Warn(ctx, "Gateway call failed", zap.String("operation", op), zap.Error(err))
		return "", domainerrors.Transient("gateway unreachable", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		c.count(op, "transport_error")
		return "", domainerrors.Transient("failed to read gateway response", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.count(op, "transport_error")
		logger.Warn(ctx, "Gateway returned non-2xx status",
			zap.String("operation", op), zap.Int("status", res.StatusCode))
		return string(body), domainerrors.Transient(
			fmt.Sprintf("gateway returned status %d", res.StatusCode), nil)
	}

	return string(body), nil
}

func (c *Client) count(op, outcome string) {
	if c.metrics != nil {
		c.metrics.GatewayRequestsTotal.WithLabelValues(op, outcome).Inc()
	}
}
