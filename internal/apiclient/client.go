package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/infra"
)

const maxResponseBody = 4 << 20

// Client — типизированный клиент REST бэкенда (/api).
// Публичные эндпоинты вызываются без токена, остальные с Bearer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	rel        *reliability
	metrics    *Metrics
	logger     *zap.Logger
}

func New(cfg infra.APIConfig, httpClient *http.Client, metrics *Metrics, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("apiclient")

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		rel:        newReliability(cfg, metrics, logger),
		metrics:    metrics,
		logger:     logger,
	}
}

type call struct {
	op     string
	method string
	path   string
	token  string
	query  url.Values
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, req call) error {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return fmt.Errorf("encode %s request: %w", req.op, err)
		}
	}

	start := time.Now()
	status := 0
	err := c.rel.execute(ctx, req.method == http.MethodGet, func(ctx context.Context) error {
		code, err := c.roundTrip(ctx, req, payload)
		status = code
		return err
	})

	c.metrics.TotalRequests.WithLabelValues(req.op).Inc()
	c.metrics.RequestDuration.WithLabelValues(req.op, strconv.Itoa(status)).Observe(time.Since(start).Seconds())

	if err == nil {
		return nil
	}

	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		// лимитер, открытый предохранитель или отмена контекста
		netErr = &domain.NetworkError{Op: req.op, Message: domain.ConnectionErrorMessage, Cause: err}
	}
	c.metrics.ErrorTotal.WithLabelValues(errorKind(err, netErr)).Inc()

	c.logger.Warn("backend call failed",
		zap.String("op", req.op),
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", netErr.Status),
		zap.String("trace_id", TraceID(ctx)),
		zap.Error(err))
	return netErr
}

func (c *Client) roundTrip(ctx context.Context, req call, payload []byte) (int, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if traceID := TraceID(ctx); traceID != "" {
		httpReq.Header.Set(TraceHeader, traceID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, &domain.NetworkError{Op: req.op, Message: domain.ConnectionErrorMessage, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, &domain.NetworkError{Op: req.op, Message: domain.ConnectionErrorMessage, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &domain.NetworkError{
			Op:      req.op,
			Status:  resp.StatusCode,
			Message: backendMessage(data),
		}
	}

	if req.out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, req.out); err != nil {
			return resp.StatusCode, &domain.NetworkError{
				Op:     req.op,
				Status: resp.StatusCode,
				Cause:  fmt.Errorf("decode response: %w", err),
			}
		}
	}
	return resp.StatusCode, nil
}

// backendMessage достает поле message (или error) из тела ошибки.
// Короткий текстовый ответ тоже годится как сообщение.
func backendMessage(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ""
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(trimmed, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}

	text := string(trimmed)
	if len(text) > 300 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

func errorKind(err error, netErr *domain.NetworkError) string {
	switch {
	case errors.Is(err, errRateLimited):
		return "rate_limit"
	case errors.Is(err, errBreakerOpen):
		return "breaker_open"
	case netErr.Status == 0:
		return "connection"
	case netErr.Status >= 500:
		return "server"
	default:
		return "client"
	}
}
