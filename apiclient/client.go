// Package apiclient talks to the shop REST API. The Spanish wire names stay in this package.
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
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// APIError is a non-2xx answer from the shop API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shop api error %d on %s %s", e.StatusCode, e.Method, e.Path)
	}
	return fmt.Sprintf("shop api error %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("shop api base url is empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid shop api base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("meatshop-console/apiclient"),
		logger:  config.GetLogger(),
	}, nil
}

// NewClientFromEnv uses API_BASE_URL and API_TIMEOUT_SECONDS.
func NewClientFromEnv() (*Client, error) {
	return NewClient(config.APIBaseURL(), config.APITimeout())
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is what the API sends on failures; both spellings occur.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

const maxErrorMessageRunes = 200

func errorMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if runes := []rune(msg); len(runes) > maxErrorMessageRunes {
		msg = string(runes[:maxErrorMessageRunes])
	}
	return msg
}

// do sends one request. in is encoded as JSON when not nil; out is decoded when not nil and the body is not empty.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out interface{}) (err error) {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	span.SetAttributes(attribute.String("http.method", method), attribute.String("http.url", endpoint))

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		req.Header.Set("X-Correlation-Id", correlationId)
	}
	if method == http.MethodPost {
		key, ok := utils.GetIdempotencyKeyFromContext(ctx)
		if !ok || key == "" {
			key = uuid.NewString()
		}
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		config.LogError(c.logger, "client.go", "do", method+" "+path, nil, err)
		return fmt.Errorf("shop api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(respBody),
		}
		config.LogError(c.logger, "client.go", "do", method+" "+path, resp.StatusCode, apiErr)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func periodValues(params map[string]string) url.Values {
	if len(params) == 0 {
		return nil
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values
}
