package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/dwizi/board-agent/internal/llm"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client completes prompts through the Gemini API. The underlying SDK client is built on first use.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	client *genai.Client
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		logger: logger.With("component", "llm.gemini"),
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("%w: missing BOARD_AGENT_LLM_API_KEY", llm.ErrUnavailable)
	}
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", nil
	}
	client, err := c.sdkClient(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	result, err := client.Models.GenerateContent(callCtx,
		c.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(userText, genai.RoleUser)},
		config,
	)
	if err != nil {
		c.logger.Error("gemini generate content failed", "model", c.cfg.Model, "error", err)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini response returned no text")
	}
	return llm.SanitizeReply(text), nil
}

func (c *Client) sdkClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	clientConfig := &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := strings.TrimSpace(c.cfg.BaseURL); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.client = client
	return client, nil
}
