package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

// Operation names used for logging and metrics.
const (
	OpDiagnose = "diagnose"
	OpDraft    = "draft"
)

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL       string
	APIKey        string
	DiagnoseModel string
	DraftModel    string
	Timeout       time.Duration
	Temperature   float32
}

// Observer is notified after every model call.
type Observer func(op string, elapsed time.Duration, err error)

// Client implements Analyst against any OpenAI-compatible chat
// completions endpoint.
type Client struct {
	api      *openai.Client
	cfg      Config
	retry    RetryConfig
	logger   *slog.Logger
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver registers a call observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a Client. The API key is required.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ai: API key is required")
	}
	if cfg.DiagnoseModel == "" || cfg.DraftModel == "" {
		return nil, errors.New("ai: diagnose and draft models are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		api:    openai.NewClientWithConfig(oc),
		cfg:    cfg,
		retry:  DefaultRetryConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Diagnose implements Analyst.
func (c *Client) Diagnose(ctx context.Context, req DiagnoseRequest) (*Diagnosis, error) {
	prompt, err := DiagnosePrompt(req)
	if err != nil {
		return nil, err
	}
	var out *Diagnosis
	err = c.call(ctx, OpDiagnose, c.cfg.DiagnoseModel, req.Locale, prompt, func(content string) error {
		d, err := ParseDiagnosis(content)
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	return out, err
}

// Draft implements Analyst.
func (c *Client) Draft(ctx context.Context, req DraftRequest) (*Report, error) {
	prompt, err := DraftPrompt(req)
	if err != nil {
		return nil, err
	}
	var out *Report
	err = c.call(ctx, OpDraft, c.cfg.DraftModel, req.Locale, prompt, func(content string) error {
		r, err := ParseReport(content)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}

func (c *Client) call(ctx context.Context, op, model string, loc catalog.Locale, prompt string, parse func(string) error) error {
	start := time.Now()
	attempts, err := retry(ctx, c.retry, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemMessage(loc)},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: c.cfg.Temperature,
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return NewFatalError(ErrEmptyResponse)
		}
		if err := parse(resp.Choices[0].Message.Content); err != nil {
			return NewFatalError(err)
		}
		return nil
	})

	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer(op, elapsed, err)
	}
	if err != nil {
		c.logger.Warn("AI call failed", "op", op, "model", model, "attempts", attempts, "error", err)
		return fmt.Errorf("ai %s: %w", op, err)
	}
	c.logger.Debug("AI call succeeded", "op", op, "model", model, "attempts", attempts, "elapsed", elapsed)
	return nil
}

func systemMessage(loc catalog.Locale) string {
	if loc == catalog.English {
		return "You are a TRIZ methodology assistant. Always answer with valid JSON only."
	}
	return "أنت مساعد في منهجية TRIZ. أجب دائماً بصيغة JSON صالحة فقط."
}

// classify sorts transport and API failures into transient and fatal.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		// No HTTP status: the request never completed.
		return NewTransientError(err)
	}

	if status == http.StatusTooManyRequests || status >= 500 {
		return NewTransientError(err)
	}
	return NewFatalError(err)
}
