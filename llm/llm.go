package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/delbyte/solana-news-analysis/config"
	"github.com/sirupsen/logrus"
)

// systemMessage frames every request sent to a backend.
const systemMessage = "You are a crypto market analyst. Base every statement strictly on the price, volume, volatility and headline data provided. Do not invent news. Explain which headlines plausibly line up with the largest volatility spikes, and keep the answer concise."

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response from language model")

// Generator turns a prompt into free-text insight.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// New returns the backend selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, logger *logrus.Logger) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case "ollama":
		gen = NewOllama(cfg)
	case "openai":
		gen = NewOpenAI(cfg)
	case "claude":
		gen, err = NewClaude(cfg)
	case "gemini":
		gen, err = NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"provider": gen.Name(),
		"model":    cfg.Model,
		"timeout":  cfg.Timeout,
	}).Info("LLM backend initialized")

	return &logged{Generator: gen, logger: logger.WithField("component", "llm")}, nil
}

// logged wraps a backend with timing and error logs.
type logged struct {
	Generator
	logger *logrus.Entry
}

func (l *logged) Generate(ctx context.Context, prompt string) (string, error) {
	entry := l.logger.WithFields(logrus.Fields{"provider": l.Name(), "prompt_length": len(prompt)})
	entry.Debug("Starting completion")

	text, err := l.Generator.Generate(ctx, prompt)
	if err != nil {
		entry.WithError(err).Error("Completion failed")
		return "", fmt.Errorf("%s completion failed: %w", l.Name(), err)
	}
	entry.WithField("response_length", len(text)).Debug("Completion finished")
	return text, nil
}
