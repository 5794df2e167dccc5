// Package agent implements the maker/checker/reviser answer loop. One
// Answer call runs: validate → retrieve → draft → bounded critique rounds
// (each may refine the retrieval query and revise the draft) → citation
// guard. The loop always returns its best effort: exhausting the iteration
// bound is a designed soft-fail, not an error.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/ebzlo/paperqa-go/internal/budget"
	"github.com/ebzlo/paperqa-go/internal/logging"
	"github.com/ebzlo/paperqa-go/internal/rag"
	"github.com/ebzlo/paperqa-go/internal/safety"
)

// checkerMaxTokens caps the checker's response size. Verdict JSON is small;
// a tight cap keeps critique rounds cheap and deterministic in cost.
const checkerMaxTokens = 600

// Config holds the dependencies and tuning for constructing an Agent.
type Config struct {
	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.BaseChatModel

	// Retriever answers top-k similarity queries over the built index.
	Retriever rag.Retriever

	// TopK is the number of chunks retrieved per query. Values above the
	// safety clamp are reduced, not rejected. Defaults to 5 if zero.
	TopK int

	// MaxIterations bounds the number of critique rounds per question.
	// Defaults to 2 if zero.
	MaxIterations int

	// MaxQuestionChars bounds accepted question length. Defaults to 2000
	// if zero.
	MaxQuestionChars int

	// MakerTemperature is the sampling temperature for drafting and
	// revision (creative but grounded).
	MakerTemperature float32

	// CheckerTemperature is the sampling temperature for critique.
	// Zero gives deterministic, reproducible verdicts.
	CheckerTemperature float32

	// MaxCompletionTokens caps maker and reviser output. Defaults to 900
	// if zero.
	MaxCompletionTokens int

	// MaxContextTokens is the estimated token budget for the prompt.
	// Low-ranked excerpts are dropped to fit. Defaults to
	// budget.DefaultMaxContextTokens if zero.
	MaxContextTokens int

	// RequestsPerMinute rate-limits chat model calls to respect provider
	// quotas. Zero disables limiting.
	RequestsPerMinute int
}

// Agent answers one question at a time. It holds no per-question state
// between Answer calls.
type Agent struct {
	chatModel           model.BaseChatModel
	retriever           rag.Retriever
	topK                int
	maxIterations       int
	maxQuestionChars    int
	makerTemperature    float32
	checkerTemperature  float32
	maxCompletionTokens int
	maxContextTokens    int

	// limiter paces chat model calls; nil means unlimited.
	limiter *rate.Limiter
}

// New constructs an Agent from the provided Config.
func New(cfg *Config) (*Agent, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("agent: ChatModel must not be nil")
	}
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("agent: Retriever must not be nil")
	}

	a := &Agent{
		chatModel:           cfg.ChatModel,
		retriever:           cfg.Retriever,
		topK:                cfg.TopK,
		maxIterations:       cfg.MaxIterations,
		maxQuestionChars:    cfg.MaxQuestionChars,
		makerTemperature:    cfg.MakerTemperature,
		checkerTemperature:  cfg.CheckerTemperature,
		maxCompletionTokens: cfg.MaxCompletionTokens,
		maxContextTokens:    cfg.MaxContextTokens,
	}
	if a.topK <= 0 {
		a.topK = 5
	}
	if a.maxIterations <= 0 {
		a.maxIterations = 2
	}
	if a.maxQuestionChars <= 0 {
		a.maxQuestionChars = 2000
	}
	if a.maxCompletionTokens <= 0 {
		a.maxCompletionTokens = 900
	}
	if a.maxContextTokens <= 0 {
		a.maxContextTokens = budget.DefaultMaxContextTokens
	}
	if cfg.RequestsPerMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1)
	}

	return a, nil
}

// Answer resolves one question end to end and returns the guarded answer.
// Validation and retrieval errors propagate; an exhausted critique loop does
// not — the last draft is returned through the citation guard instead.
func (a *Agent) Answer(ctx context.Context, question string) (string, error) {
	log := logging.FromContext(ctx)

	q, err := safety.ValidateQuestion(question, a.maxQuestionChars)
	if err != nil {
		return "", err
	}
	topK, err := safety.ValidateTopK(a.topK, safety.DefaultMaxTopK)
	if err != nil {
		return "", err
	}

	contextBlock, retrieved, err := a.retrieve(ctx, q, topK)
	if err != nil {
		return "", err
	}
	log.Debug("agent: initial retrieval",
		slog.Int("excerpts", len(retrieved)),
		slog.Int("context_tokens", budget.Estimate(contextBlock)),
	)

	draft, err := a.draft(ctx, q, contextBlock)
	if err != nil {
		return "", err
	}

	// Each round is one checker call; the bound counts critique rounds,
	// not full maker/checker/revise cycles.
	for round := 1; round <= a.maxIterations; round++ {
		verdict, err := a.critique(ctx, q, contextBlock, draft)
		if err != nil {
			return "", err
		}

		if verdict.Verdict == VerdictAccept {
			log.Debug("agent: checker accepted", slog.Int("round", round))
			return guardOutput(draft, retrieved), nil
		}

		if refined := strings.TrimSpace(verdict.QueryRefinement); refined != "" {
			log.Debug("agent: retrieval query refined", slog.Int("round", round))
			contextBlock, retrieved, err = a.retrieve(ctx, refined, topK)
			if err != nil {
				return "", err
			}
		}

		draft, err = a.revise(ctx, verdict, contextBlock, draft)
		if err != nil {
			return "", err
		}
	}

	// Iteration bound exhausted: soft-fail with the last draft, still
	// subject to the citation guard.
	log.Debug("agent: iteration bound exhausted, returning last draft")
	return guardOutput(draft, retrieved), nil
}

// retrieve queries the index and trims low-ranked excerpts so the prompt
// fits the context budget, re-rendering the context block afterwards.
func (a *Agent) retrieve(ctx context.Context, query string, topK int) (string, []rag.Retrieved, error) {
	_, retrieved, err := a.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return "", nil, fmt.Errorf("agent: retrieval failed: %w", err)
	}

	fixed := budget.EstimateMessages([]*schema.Message{
		schema.SystemMessage(makerSystem),
		schema.UserMessage(query),
	})
	trimmed := budget.TrimExcerpts(fixed, retrieved, a.maxContextTokens)
	if dropped := len(retrieved) - len(trimmed); dropped > 0 {
		logging.FromContext(ctx).Warn("agent: dropped excerpts to fit context budget",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(trimmed)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}

	return rag.FormatContext(trimmed), trimmed, nil
}

// draft asks the maker for an initial cited answer.
func (a *Agent) draft(ctx context.Context, question, contextBlock string) (string, error) {
	user := fmt.Sprintf("Question:\n%s\n\nContext excerpts:\n%s\n\nWrite the answer with citations.",
		question, contextBlock)
	messages := []*schema.Message{
		schema.SystemMessage(makerSystem),
		schema.UserMessage(user),
	}
	return a.stream(ctx, messages, a.makerTemperature, a.maxCompletionTokens)
}

// critique asks the checker for a structured verdict on the draft.
func (a *Agent) critique(ctx context.Context, question, contextBlock, draft string) (*Verdict, error) {
	user := fmt.Sprintf("Question:\n%s\n\nContext excerpts:\n%s\n\nDraft:\n%s\n\nReturn JSON.",
		question, contextBlock, draft)
	messages := []*schema.Message{
		schema.SystemMessage(checkerSystem),
		schema.UserMessage(user),
	}

	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	msg, err := a.chatModel.Generate(ctx, messages,
		model.WithTemperature(a.checkerTemperature),
		model.WithMaxTokens(checkerMaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("agent: checker call failed: %w", err)
	}

	return parseVerdict(msg.Content)
}

// revise asks the reviser for an improved draft given the checker's notes
// and the (possibly refreshed) context.
func (a *Agent) revise(ctx context.Context, verdict *Verdict, contextBlock, draft string) (string, error) {
	instructions := verdict.RevisionInstructions
	if instructions == "" {
		instructions = "Improve clarity and grounding with citations."
	}

	user := fmt.Sprintf(`Revision instructions:
%s

Critique notes:
%s

Context excerpts:
%s

Old draft:
%s

Return improved answer with correct citations only.`,
		instructions, strings.Join(verdict.Critique, "\n"), contextBlock, draft)

	messages := []*schema.Message{
		schema.SystemMessage(reviserSystem),
		schema.UserMessage(user),
	}
	return a.stream(ctx, messages, a.makerTemperature, a.maxCompletionTokens)
}

// stream sends the messages to the chat model in streaming mode and consumes
// the stream to completion before returning; callers never observe partial
// text.
func (a *Agent) stream(ctx context.Context, messages []*schema.Message, temperature float32, maxTokens int) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}

	sr, err := a.chatModel.Stream(ctx, messages,
		model.WithTemperature(temperature),
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("agent: stream failed: %w", err)
	}
	defer sr.Close()

	var out strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("agent: stream receive error: %w", err)
		}
		if msg != nil {
			out.WriteString(msg.Content)
		}
	}

	return out.String(), nil
}

// wait blocks until the rate limiter grants a slot, or returns early when
// the context is cancelled. No-op when limiting is disabled.
func (a *Agent) wait(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("agent: rate limiter: %w", err)
	}
	return nil
}
