package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"audit-agent/config"
	apperrors "audit-agent/errors"
)

// Message is a single chat turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"` // Per-request temperature override
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Embedding request/response mirror llama.cpp's expected schema
type embeddingRequest struct {
	Content string `json:"content"`
}

type embeddingResponse []struct {
	Embedding [][]float32 `json:"embedding"`
}

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger

	chatBreaker  *gobreaker.CircuitBreaker[[]byte]
	embedBreaker *gobreaker.CircuitBreaker[[]byte]
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
	c.chatBreaker = newBreaker("llm-chat", logger)
	c.embedBreaker = newBreaker("llm-embedding", logger)
	return c
}

func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Chat performs a non-streaming chat completion call.
// temperature is optional; pass nil to use server default.
func (c *Client) Chat(ctx context.Context, messages []Message, temperature *float64) (string, error) {
	reqBody := chatRequest{
		Messages:    messages,
		Stream:      false,
		Temperature: temperature,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(c.cfg.ChatHost, "/"))
	bodyBytes, err := c.post(ctx, c.chatBreaker, url, jsonBody)
	if err != nil {
		return "", apperrors.WrapError(err, "chat completion failed")
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no response choices from llm server")
	}
	return cr.Choices[0].Message.Content, nil
}

// Embed generates an embedding vector for the provided text using the
// llama.cpp-compatible embeddings endpoint.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{Content: text}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", strings.TrimRight(c.cfg.EmbeddingHost, "/"))
	bodyBytes, err := c.post(ctx, c.embedBreaker, url, jsonBody)
	if err != nil {
		return nil, apperrors.WrapError(err, "embedding request failed")
	}

	var er embeddingResponse
	if err := json.Unmarshal(bodyBytes, &er); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(er) == 0 || len(er[0].Embedding) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrEmbeddingFailed, "embedding response was empty")
	}
	return er[0].Embedding[0], nil
}

// post sends a JSON POST through the circuit breaker, retrying while the
// server reports it is still loading.
func (c *Client) post(ctx context.Context, breaker *gobreaker.CircuitBreaker[[]byte], url string, jsonBody []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		body, err := breaker.Execute(func() ([]byte, error) {
			return c.doRequest(ctx, url, jsonBody)
		})
		if err == nil {
			return body, nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.WrapError(apperrors.ErrServiceUnavailable, err.Error())
		}
		if ctx.Err() != nil {
			break
		}
		if errors.Is(err, errServerLoading) {
			c.logger.Warn("LLM server unavailable, retrying", zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		}
		break
	}
	return nil, lastErr
}

var errServerLoading = errors.New("llm server loading")

func (c *Client) doRequest(ctx context.Context, url string, jsonBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, errServerLoading
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm server status %s: %s", resp.Status, string(bodyBytes))
	}
	return bodyBytes, nil
}

func (c *Client) backoffSleep(attempt int) {
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second
	}
	d := base * time.Duration(1<<attempt)
	jitter := time.Duration(float64(d) * 0.1)
	time.Sleep(d - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter+1)))
}
