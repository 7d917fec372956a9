package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/prompts"

	"lexcase-backend/metrics"
)

// Apology is returned in place of an answer whenever the model cannot be used
const Apology = "Przepraszam, nie mogę wygenerować odpowiedzi w tej chwili."

const answerTemplate = `Odpowiedz na poniższe pytanie opierając się na dostarczonym kontekście.
Jeśli informacja nie znajduje się w kontekście, powiedz, że nie wiesz lub że informacja nie jest zawarta w kontekście.
Odpowiedź powinna być szczegółowa, w języku polskim i zgodna z polskim prawem.

Kontekst:
{{.context}}

Pytanie: {{.question}}

Odpowiedź:`

const (
	defaultMaxTokens   int32   = 1024
	defaultTemperature float32 = 0.2
	defaultTimeout             = 60 * time.Second
	defaultAttempts            = 2
	defaultBackoff             = time.Second
)

// ErrEmptyCompletion is returned by models that answered with no text
var ErrEmptyCompletion = errors.New("model returned empty content")

// Params bounds a single completion
type Params struct {
	MaxTokens   int32
	Temperature float32
}

// Model is a text completion backend
type Model interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// Generator produces the answer text for a question and its context
type Generator struct {
	model    Model
	template prompts.PromptTemplate
	params   Params
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// GeneratorOption is a functional option for Generator
type GeneratorOption func(*Generator)

// GeneratorWithMaxTokens bounds the answer length
func GeneratorWithMaxTokens(n int32) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.params.MaxTokens = n
		}
	}
}

// GeneratorWithTemperature sets the sampling temperature
func GeneratorWithTemperature(t float32) GeneratorOption {
	return func(g *Generator) {
		g.params.Temperature = t
	}
}

// GeneratorWithTimeout bounds the whole generation, retries included
func GeneratorWithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// GeneratorWithRetry sets the number of attempts and the initial backoff
func GeneratorWithRetry(attempts int, backoff time.Duration) GeneratorOption {
	return func(g *Generator) {
		if attempts > 0 {
			g.attempts = attempts
		}
		g.backoff = backoff
	}
}

// GeneratorWithLogger sets the logger
func GeneratorWithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator on top of model
func NewGenerator(model Model, opts ...GeneratorOption) *Generator {
	g := &Generator{
		model:    model,
		template: prompts.NewPromptTemplate(answerTemplate, []string{"context", "question"}),
		params:   Params{MaxTokens: defaultMaxTokens, Temperature: defaultTemperature},
		timeout:  defaultTimeout,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Prompt renders the instruction template for question and contextText
func (g *Generator) Prompt(question, contextText string) (string, error) {
	return g.template.Format(map[string]any{
		"context":  contextText,
		"question": question,
	})
}

// Generate returns the model's answer, or Apology if anything fails. An
// empty context is still sent to the model.
func (g *Generator) Generate(ctx context.Context, question, contextText string) string {
	answer, err := g.generate(ctx, question, contextText)
	if err != nil {
		g.logger.Warn("answer generation failed, returning apology", "error", err)
		metrics.GenerationFallbacksTotal.Inc()
		return Apology
	}
	return answer
}

func (g *Generator) generate(ctx context.Context, question, contextText string) (string, error) {
	if g.model == nil {
		return "", errors.New("no model configured")
	}

	prompt, err := g.Prompt(question, contextText)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	backoff := g.backoff
	var lastErr error
	for attempt := 0; attempt < g.attempts; attempt++ {
		if attempt > 0 {
			g.logger.Debug("retrying generation", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("generation cancelled after %d attempts: %w", attempt, lastErr)
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		answer, err := g.model.Complete(ctx, prompt, g.params)
		if err == nil {
			answer = strings.TrimSpace(answer)
			if answer != "" {
				return answer, nil
			}
			err = ErrEmptyCompletion
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}
