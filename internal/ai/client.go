package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/metrics"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const (
	requestTimeout = 25 * time.Second
	maxRetries     = 2
	maxTokens      = 2000
)

// ClientConfig configuration of the LLM client
type ClientConfig struct {
	APIKey  string
	BaseURL string
}

// Client talks to an OpenRouter-hosted model pool
type Client struct {
	api    *openai.Client
	mu     sync.RWMutex
	models map[string]string
}

// NewClient creates a new LLM client with the model pool loaded from the database
func NewClient(c ClientConfig) (*Client, error) {
	if c.APIKey == "" {
		return nil, errors.New("openrouter api key is required")
	}

	cfg := openai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}

	models, err := database.GetAllModels()
	if err != nil {
		return nil, errors.Wrap(err, "could not load ai models")
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		models: models,
	}, nil
}

// Complete sends a prompt and returns the model output, trying the
// preferred model first and falling back across the rest of the pool.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithModel(ctx, prompt, "")
}

// CompleteWithModel is Complete with an explicit preferred model key
func (c *Client) CompleteWithModel(ctx context.Context, prompt, modelKey string) (string, error) {
	order := c.modelOrder(modelKey)
	if len(order) == 0 {
		return "", errors.New("no ai models configured")
	}

	log.Debugf("sending LLM request, prompt length: %d", len(prompt))

	var lastErr error
	for _, key := range order {
		c.mu.RLock()
		model := c.models[key]
		c.mu.RUnlock()

		text, err := c.completeOnce(ctx, prompt, model)
		if err != nil {
			log.Warnf("model %s unavailable: %v", key, err)
			lastErr = err
			continue
		}

		log.Debugf("LLM response received from %s, length: %d", key, len(text))
		metrics.Default.LLMRequests.WithLabelValues("ok").Inc()
		return text, nil
	}

	metrics.Default.LLMRequests.WithLabelValues("error").Inc()
	return "", errors.Wrap(lastErr, "all ai models failed")
}

// completeOnce calls a single model with retries and backoff
func (c *Client) completeOnce(ctx context.Context, prompt, model string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		resp, err := c.api.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
			Model:     model,
			MaxTokens: maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("empty completion response")
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Warnf("attempt %d/%d failed: %v, retrying in %s", attempt+1, maxRetries, err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

// modelOrder returns model keys with the preferred key first
func (c *Client) modelOrder(preferred string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	order := make([]string, 0, len(c.models))
	if _, ok := c.models[preferred]; ok {
		order = append(order, preferred)
	}
	for key := range c.models {
		if key != preferred {
			order = append(order, key)
		}
	}
	return order
}

// AddModel registers a model in the pool and persists it
func (c *Client) AddModel(key, modelPath string) (bool, error) {
	added, err := database.AddModel(key, modelPath)
	if err != nil || !added {
		return added, err
	}

	c.mu.Lock()
	c.models[key] = modelPath
	c.mu.Unlock()
	return true, nil
}

// RemoveModel deletes a model from the pool and the database
func (c *Client) RemoveModel(key string) (bool, error) {
	removed, err := database.RemoveModel(key)
	if err != nil || !removed {
		return removed, err
	}

	c.mu.Lock()
	delete(c.models, key)
	c.mu.Unlock()
	return true, nil
}

// Models returns a copy of the configured model pool
func (c *Client) Models() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.models))
	for k, v := range c.models {
		out[k] = v
	}
	return out
}

// ModelCount returns the size of the model pool
func (c *Client) ModelCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// DescribeModels renders the model pool for the /models command
func (c *Client) DescribeModels() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.models) == 0 {
		return "No AI models configured. Use /add_model to add one."
	}

	out := fmt.Sprintf("Available AI models (%d):\n", len(c.models))
	for key, model := range c.models {
		out += fmt.Sprintf("• %s: %s\n", key, model)
	}
	return out
}
