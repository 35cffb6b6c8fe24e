// Package rag implements the retrieval-augmented answering engine: embed the
// question, retrieve matching chunks, build a grounded prompt with history,
// call the generative model, and parse its structured output tolerantly.
package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apexdash/apexdash/vectorstore"
)

// DefaultTopK is how many chunks ground each answer.
const DefaultTopK = 7

// Chat turn roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrEmptyResponse reports that the model returned no text at all.
var ErrEmptyResponse = errors.New("AI returned an empty response")

// fallbackNote prefixes raw model output when it was not valid JSON.
// Generation succeeded, so the content still reaches the user.
const fallbackNote = "(The assistant's reply was not in the expected format; raw reply follows.)\n\n"

// Turn is one prior message in the conversation, owned by the client.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is one text fragment of a turn.
type Part struct {
	Text string `json:"text"`
}

// Answer is the engine's structured result.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Embedder turns text into a fixed-length vector. Satisfied by *gemini.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a prompt. Satisfied by *gemini.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine answers questions grounded in retrieved wiki chunks.
type Engine struct {
	embedder  Embedder
	store     vectorstore.Store
	generator Generator
	topK      int
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTopK overrides how many chunks are retrieved per question.
func WithTopK(topK int) EngineOption {
	return func(e *Engine) {
		if topK > 0 {
			e.topK = topK
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an answering engine over the given collaborators.
func NewEngine(embedder Embedder, store vectorstore.Store, generator Generator, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      DefaultTopK,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer runs one request through the pipeline. The stages are strictly
// sequential; each consumes the previous stage's output. Embedding,
// retrieval, and generation failures abort the request. A malformed model
// response does not: it degrades to a raw-text answer with best-effort
// sources.
func (e *Engine) Answer(ctx context.Context, message string, history []Turn) (*Answer, error) {
	vector, err := e.embedder.Embed(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := e.store.Query(ctx, vector, e.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	e.logger.Debug("Retrieved context", "matches", len(matches))

	prompt := buildPrompt(matches, history, message)

	raw, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	return parseAnswer(raw, matches, e.logger), nil
}

// parseAnswer extracts the model's JSON object from its raw output. When
// extraction or parsing fails, it falls back to the raw text plus the
// retrieved context's page titles; this path never fails a request.
func parseAnswer(raw string, matches []vectorstore.Match, logger *slog.Logger) *Answer {
	if obj := extractObject(raw); obj != "" {
		var answer Answer
		if err := json.Unmarshal([]byte(obj), &answer); err == nil && answer.Answer != "" {
			return &answer
		}
		logger.Warn("Model output contained braces but no parseable answer object")
	}

	return &Answer{
		Answer:  fallbackNote + raw,
		Sources: contextTitles(matches),
	}
}

// contextTitles returns the deduplicated page titles of the retrieved
// context, in retrieval order.
func contextTitles(matches []vectorstore.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		title := m.Metadata.PageTitle
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return titles
}
