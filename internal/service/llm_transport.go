package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	maxIdleConnsPerHost = 5
	maxConnsPerHost     = 10
	errorBodyLimit      = 2048
)

// APIStatusError is returned when the endpoint answers with a non-2xx status.
// It is never retried.
type APIStatusError struct {
	StatusCode int
	Body       string
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("OpenRouter API HTTP error: %d", e.StatusCode)
}

// TransportError is returned once every attempt failed with a timeout or
// network error.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot reach LLM endpoint after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RetryPolicy bounds retries of timeout and network failures. The wait
// before attempt n+1 is BaseWait*2^(n-1), clamped to [MinWait, MaxWait].
type RetryPolicy struct {
	MaxAttempts int
	BaseWait    time.Duration
	MinWait     time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy allows 3 attempts, waiting between 2s and 10s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseWait:    time.Second,
		MinWait:     2 * time.Second,
		MaxWait:     10 * time.Second,
	}
}

func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseWait
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = p.MaxWait
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := 0
	if p.MaxAttempts > 1 {
		retries = p.MaxAttempts - 1
	}
	floored := &flooredBackOff{BackOff: exp, min: p.MinWait}
	return backoff.WithContext(backoff.WithMaxRetries(floored, uint64(retries)), ctx)
}

// flooredBackOff raises every wait to at least min
type flooredBackOff struct {
	backoff.BackOff
	min time.Duration
}

func (f *flooredBackOff) NextBackOff() time.Duration {
	next := f.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if next < f.min {
		return f.min
	}
	return next
}

// ContentPart is one element of a multimodal message
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image as a URL or data URI
type ImageURL struct {
	URL string `json:"url"`
}

// ChatMessage is a chat-completions message. Content is a string or []ContentPart.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ChatRequest is the chat-completions request body
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the subset of the chat-completions response we read
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatClient posts chat-completions requests with bearer auth and retries
type ChatClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	retry      RetryPolicy
	logger     *zap.Logger
}

// ChatClientOption customizes a ChatClient
type ChatClientOption func(*ChatClient)

// WithHTTPClient replaces the pooled default client
func WithHTTPClient(client *http.Client) ChatClientOption {
	return func(c *ChatClient) {
		c.httpClient = client
	}
}

// WithRetryPolicy replaces DefaultRetryPolicy
func WithRetryPolicy(policy RetryPolicy) ChatClientOption {
	return func(c *ChatClient) {
		c.retry = policy
	}
}

// NewHTTPTransport returns the pooled transport shared by every LLM call
func NewHTTPTransport(connectTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
		MaxIdleConns:        maxIdleConnsPerHost,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}
}

// NewChatClient creates a client for the given endpoint
func NewChatClient(apiURL, apiKey string, connectTimeout time.Duration, logger *zap.Logger, opts ...ChatClientOption) *ChatClient {
	c := &ChatClient{
		httpClient: &http.Client{Transport: NewHTTPTransport(connectTimeout)},
		apiURL:     apiURL,
		apiKey:     apiKey,
		retry:      DefaultRetryPolicy(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends req and returns the first choice's message content.
// Each attempt is bounded by timeout.
func (c *ChatClient) Complete(ctx context.Context, req ChatRequest, timeout time.Duration) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var (
		resp     *ChatResponse
		attempts int
	)
	operation := func() error {
		attempts++
		r, err := c.post(ctx, body, timeout)
		if err == nil {
			resp = r
			return nil
		}
		if ctx.Err() != nil || !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying LLM request",
			zap.String("model", req.Model),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, c.retry.newBackOff(ctx), notify); err != nil {
		if isRetryable(err) && ctx.Err() == nil {
			c.logger.Error("LLM endpoint unreachable", zap.Int("attempts", attempts), zap.Error(err))
			return "", &TransportError{Attempts: attempts, Err: err}
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("OpenRouter API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// post performs a single attempt
func (c *ChatClient) post(ctx context.Context, body []byte, timeout time.Duration) (*ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, errorBodyLimit))
		c.logger.Error("OpenRouter API HTTP error",
			zap.Int("status", httpResp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return nil, &APIStatusError{StatusCode: httpResp.StatusCode, Body: string(snippet)}
	}

	var out ChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		// A body cut off by the deadline or a reset is a network failure.
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to decode OpenRouter response: %w", err)
	}
	return &out, nil
}

// isRetryable reports whether err is a timeout or network-class failure
func isRetryable(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
