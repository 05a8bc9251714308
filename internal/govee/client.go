package govee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

const (
	DefaultBaseURL = "https://openapi.api.govee.com"

	devicesPath = "/router/api/v1/user/devices"
	statePath   = "/router/api/v1/device/state"
	controlPath = "/router/api/v1/device/control"

	apiKeyHeader = "Govee-API-Key"

	codeOK = 200
)

var rateLimitHeaders = []string{"API-RateLimit-Remaining", "X-RateLimit-Remaining"}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	encoder    Encoder
	retry      retryPolicy

	rateLimitRemaining atomic.Int64
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout on a copy of the HTTP client, a client passed
// through WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		httpClient := *c.httpClient
		httpClient.Timeout = timeout
		c.httpClient = &httpClient
	}
}

// WithRetry enables retries on transport failures and 429/5xx responses.
// attempts <= 1 keeps the single-attempt behavior.
func WithRetry(attempts int, initialDelay time.Duration) ClientOption {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.retry.attempts = attempts
		if initialDelay > 0 {
			c.retry.initialDelay = initialDelay
		}
	}
}

func WithEncoder(encoder Encoder) ClientOption {
	return func(c *Client) {
		c.encoder = encoder
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      singleAttempt(),
	}
	c.rateLimitRemaining.Store(-1)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimitRemaining returns the remaining request quota reported by the
// last response, if any response carried it.
func (c *Client) RateLimitRemaining() (int64, bool) {
	remaining := c.rateLimitRemaining.Load()
	return remaining, remaining >= 0
}

func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var resp devicesResponse
	if err := c.doRequest(ctx, http.MethodGet, devicesPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}
	if resp.Code != 0 && resp.Code != codeOK {
		return nil, &APIError{StatusCode: http.StatusOK, Code: resp.Code, Message: resp.Message}
	}
	if resp.Data == nil {
		return nil, &DecodeError{Endpoint: devicesPath, Err: errors.New("missing data field")}
	}
	return *resp.Data, nil
}

func (c *Client) GetDeviceState(ctx context.Context, device, sku string) (*DeviceState, error) {
	var resp stateResponse
	if err := c.doRequest(ctx, http.MethodPost, statePath, c.encoder.State(device, sku), &resp); err != nil {
		return nil, fmt.Errorf("error getting state of device %s: %w", device, err)
	}
	if resp.Code != 0 && resp.Code != codeOK {
		return nil, &APIError{StatusCode: http.StatusOK, Code: resp.Code, Message: resp.Message}
	}
	if resp.Payload == nil {
		return nil, &DecodeError{Endpoint: statePath, Err: errors.New("missing payload field")}
	}
	return &DeviceState{
		Device:       device,
		SKU:          sku,
		Capabilities: resp.Payload.Capabilities,
	}, nil
}

// SendControl posts a single control command. The request id is generated
// once, so a retried command is recognized as the same command.
func (c *Client) SendControl(ctx context.Context, device, sku string, cmd ControlCommand) error {
	request := c.encoder.Control(device, sku, cmd)

	log.Debug().
		Str("device", device).
		Str("sku", sku).
		Str("requestId", request.RequestID).
		Stringer("command", cmd).
		Msg("Sending control command")

	var resp controlResponse
	if err := c.doRequest(ctx, http.MethodPost, controlPath, request, &resp); err != nil {
		return fmt.Errorf("error controlling device %s: %w", device, err)
	}
	if resp.Code != codeOK {
		message := resp.Message
		if message == "" {
			message = fmt.Sprintf("unexpected response code %d", resp.Code)
		}
		return &APIError{StatusCode: http.StatusOK, Code: resp.Code, Message: message}
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshalling request: %w", err)
		}
	}

	return c.retry.do(ctx, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set(apiKeyHeader, c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &transportError{err: fmt.Errorf("error sending request: %w", err)}
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return &transportError{err: fmt.Errorf("error reading response: %w", err)}
		}

		c.recordRateLimit(resp.Header)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    embeddedMessage(respBody),
				Body:       string(respBody),
			}
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return &DecodeError{Endpoint: path, Err: err}
		}
		return nil
	})
}

func (c *Client) recordRateLimit(header http.Header) {
	for _, name := range rateLimitHeaders {
		raw := header.Get(name)
		if raw == "" {
			continue
		}
		remaining, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Debug().Str("header", name).Str("value", raw).Msg("Ignoring malformed rate limit header")
			continue
		}
		c.rateLimitRemaining.Store(remaining)
		log.Debug().Int64("remaining", remaining).Msg("Govee rate limit")
		return
	}
}

func embeddedMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Msg
}
