package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"ai-reader-be/internal/constant"
	"ai-reader-be/internal/pkg/logger"
	"ai-reader-be/pkg/llm"
)

// StructureGenerator is the model collaborator: it proposes a flat list of
// depth-tagged nodes for a piece of document text. The generation itself is
// a black box; only the proposal list and the typed errors matter here.
type StructureGenerator interface {
	GenerateStructure(ctx context.Context, text string, opts GenerateOptions) ([]*NodeProposal, error)
	GenerateStructureWithContext(ctx context.Context, text string, opts GenerateOptions, previousNodes []*NodeProposal, chunkIndex, totalChunks int) ([]*NodeProposal, error)
}

// llmGenerator implements StructureGenerator on top of the generic LLM
// provider, with an explicit bounded retry loop (exponential backoff with
// jitter, capped) around each call.
type llmGenerator struct {
	provider llm.LLMProvider
	cfg      Config
	log      logger.ILogger
}

func NewStructureGenerator(provider llm.LLMProvider, cfg Config, log logger.ILogger) StructureGenerator {
	return &llmGenerator{provider: provider, cfg: cfg, log: log}
}

func (g *llmGenerator) GenerateStructure(ctx context.Context, text string, opts GenerateOptions) ([]*NodeProposal, error) {
	prompt := buildStructurePrompt(text, opts, nil, 0, 1)
	return g.generate(ctx, prompt)
}

func (g *llmGenerator) GenerateStructureWithContext(ctx context.Context, text string, opts GenerateOptions, previousNodes []*NodeProposal, chunkIndex, totalChunks int) ([]*NodeProposal, error) {
	prompt := buildStructurePrompt(text, opts, previousNodes, chunkIndex, totalChunks)
	return g.generate(ctx, prompt)
}

func (g *llmGenerator) generate(ctx context.Context, prompt string) ([]*NodeProposal, error) {
	maxAttempts := g.cfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt - 1)
			if g.log != nil {
				g.log.Warn("outline.generator", "retrying model call", map[string]interface{}{
					"attempt": attempt + 1,
					"delay":   delay.String(),
					"error":   lastErr.Error(),
				})
			}
			select {
			case <-ctx.Done():
				return nil, &RetryExhaustedError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		raw, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
		if err != nil {
			lastErr = err
			continue
		}

		proposals, err := parseProposals(raw)
		if err != nil {
			lastErr = err
			continue
		}
		if len(proposals) == 0 {
			return nil, &GenerationError{Message: NoNodesMessage}
		}
		return proposals, nil
	}

	return nil, &RetryExhaustedError{Attempts: maxAttempts, Err: lastErr}
}

// backoff returns the delay before retry attempt n (0-indexed): exponential
// base with random jitter, capped at 30s.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// parseProposals extracts the JSON proposal array from a model response,
// tolerating markdown fences and prose around the array.
func parseProposals(raw string) ([]*NodeProposal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, &GenerationError{Message: "response contains no JSON array"}
	}

	var proposals []*NodeProposal
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &proposals); err != nil {
		return nil, &GenerationError{Message: "malformed proposal JSON", Err: err}
	}
	return proposals, nil
}

// buildStructurePrompt assembles the structuring prompt, carrying up to the
// last previousContextLimit nodes of context for chunked documents.
func buildStructurePrompt(text string, opts GenerateOptions, previousNodes []*NodeProposal, chunkIndex, totalChunks int) string {
	var sb strings.Builder
	sb.WriteString(constant.StructurePromptHeader)

	if opts.DocumentTitle != "" {
		fmt.Fprintf(&sb, "\nDocument title: %s\n", opts.DocumentTitle)
	}
	if opts.MaxDepth > 0 {
		fmt.Fprintf(&sb, "Maximum depth: %d\n", opts.MaxDepth)
	}
	if opts.Language != "" {
		fmt.Fprintf(&sb, "Document language: %s\n", opts.Language)
	}

	if totalChunks > 1 {
		fmt.Fprintf(&sb, "\nThis is part %d of %d of the document.\n", chunkIndex+1, totalChunks)
		if len(previousNodes) > 0 {
			sb.WriteString("Sections already identified in earlier parts:\n")
			for _, n := range previousNodes {
				fmt.Fprintf(&sb, "- [%s, depth %d] %s\n", n.Type, n.Depth, n.Title)
			}
		}
	}

	sb.WriteString("\n--- DOCUMENT TEXT ---\n")
	sb.WriteString(text)
	sb.WriteString("\n--- END DOCUMENT TEXT ---\n")
	sb.WriteString(constant.StructurePromptFooter)
	return sb.String()
}
