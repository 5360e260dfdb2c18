package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwizi/board-agent/internal/llm"
)

const defaultAITimeout = 10 * time.Second

type Config struct {
	// Timeout bounds each completion call; the rule-based result is used once it elapses.
	Timeout      time.Duration
	SystemPrompt string
}

// Parser combines the AI strategy with the rule-based fallback. A nil completer runs rules only.
type Parser struct {
	completer llm.Completer
	timeout   time.Duration
	logger    *slog.Logger

	mu           sync.RWMutex
	systemPrompt string
}

func New(cfg Config, completer llm.Completer, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	p := &Parser{
		completer: completer,
		timeout:   timeout,
		logger:    logger.With("component", "intent"),
	}
	p.SetSystemPrompt(cfg.SystemPrompt)
	return p
}

// SetSystemPrompt replaces the AI instruction prompt. An empty prompt restores the default.
func (p *Parser) SetSystemPrompt(prompt string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	p.mu.Lock()
	p.systemPrompt = prompt
	p.mu.Unlock()
}

func (p *Parser) SystemPrompt() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.systemPrompt
}

// Parse never fails: AI errors, timeouts and unparsable replies fall back to ParseRules on the
// same normalized text.
func (p *Parser) Parse(ctx context.Context, text string) Intent {
	cleanText := Normalize(text)
	if cleanText == "" {
		return unknownIntent(cleanText)
	}
	if p == nil || p.completer == nil {
		return ParseRules(cleanText)
	}
	parsed, err := p.parseAI(ctx, cleanText)
	if err != nil {
		p.logger.Warn("ai intent parse failed, using rules", "error", err)
		return ParseRules(cleanText)
	}
	return parsed
}

func (p *Parser) parseAI(ctx context.Context, cleanText string) (Intent, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := p.completer.Complete(callCtx, p.SystemPrompt(), cleanText)
		done <- result{raw: raw, err: err}
	}()

	select {
	case <-callCtx.Done():
		return Intent{}, fmt.Errorf("complete intent: %w", callCtx.Err())
	case res := <-done:
		if res.err != nil {
			return Intent{}, fmt.Errorf("complete intent: %w", res.err)
		}
		return decodeAIReply(llm.SanitizeReply(res.raw), cleanText)
	}
}
