package persona

import (
	"fmt"
	"strings"

	"github.com/confsum/confsum/llm"
)

// summaryDirectives are the fixed instructions appended to every persona's
// system prompt.
const summaryDirectives = `Please provide a comprehensive summary that:
1. Captures the key points and main ideas
2. Maintains the technical accuracy of the content
3. Is organized in a clear, logical structure
4. Highlights any important warnings, notes, or critical information
5. Preserves any code examples or technical details`

// BuildPrompt combines the persona's system prompt, the optional user-supplied
// context directive, and the chunk text into a chat request payload.
// partIndex and partCount describe the chunk's position when a page needed
// more than one chunk; pass 0 and 1 for single-chunk pages.
func BuildPrompt(p Persona, context, chunkText string, partIndex, partCount int) []llm.Message {
	var sys strings.Builder

	fmt.Fprintf(&sys, "You are a %s tasked with summarizing Confluence documentation.\n\n", p.Name)
	sys.WriteString(p.SystemPrompt)
	sys.WriteString("\n\n")

	if context != "" {
		sys.WriteString("Additional context: ")
		sys.WriteString(context)
		sys.WriteString("\n\n")
	}

	if partCount > 1 {
		fmt.Fprintf(&sys, "The document is split into %d parts; this is part %d. Summarize this part on its own.\n\n",
			partCount, partIndex+1)
	}

	sys.WriteString(summaryDirectives)

	return []llm.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: chunkText},
	}
}

// BuildMergePrompt asks for one coherent narrative over already-generated
// partial summaries, used by the resummarize aggregation policy.
func BuildMergePrompt(p Persona, context, partials string) []llm.Message {
	var sys strings.Builder

	fmt.Fprintf(&sys, "You are a %s tasked with merging partial summaries of one Confluence document.\n\n", p.Name)
	sys.WriteString(p.SystemPrompt)
	sys.WriteString("\n\n")

	if context != "" {
		sys.WriteString("Additional context: ")
		sys.WriteString(context)
		sys.WriteString("\n\n")
	}

	sys.WriteString("Combine the partial summaries below into a single coherent summary. " +
		"Keep their original order, remove repetition introduced by overlapping parts, " +
		"and do not drop any distinct fact.")

	return []llm.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: partials},
	}
}
