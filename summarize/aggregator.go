package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/confsum/confsum/config"
	"github.com/confsum/confsum/llm"
	"github.com/confsum/confsum/persona"
)

// Summarizer is the LLM capability the pipeline depends on.
type Summarizer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// aggregate merges per-chunk summaries into one output, preserving sequence
// order. A single summary is returned unchanged. The concat policy joins
// parts with labeled separators; resummarize issues one extra LLM pass over
// the joined partials.
func aggregate(
	ctx context.Context,
	policy config.AggregationPolicy,
	client Summarizer,
	p persona.Persona,
	userContext string,
	partials []string,
	temperature *float64,
) (string, error) {
	if len(partials) == 0 {
		return "", fmt.Errorf("no chunk summaries to aggregate")
	}
	if len(partials) == 1 {
		return partials[0], nil
	}

	joined := joinParts(partials)
	if policy == config.AggregationConcat {
		return joined, nil
	}

	resp, err := client.Complete(ctx, llm.Request{
		Messages:    persona.BuildMergePrompt(p, userContext, joined),
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("merge chunk summaries: %w", err)
	}
	return resp.Content, nil
}

// joinParts concatenates partial summaries with section separators labeled
// by sequence index.
func joinParts(partials []string) string {
	var sb strings.Builder
	for i, part := range partials {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "## Part %d\n\n", i+1)
		sb.WriteString(strings.TrimSpace(part))
	}
	return sb.String()
}
