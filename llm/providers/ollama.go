package providers

import (
	"strings"

	"github.com/confsum/confsum/llm"
)

// OllamaProvider targets local Ollama / vLLM servers exposing the
// OpenAI-compatible API, with a localhost default URL.
type OllamaProvider struct {
	OpenAICompatProvider
}

func init() {
	llm.RegisterProvider(&OllamaProvider{})
}

// Name returns the provider identifier.
func (o *OllamaProvider) Name() string {
	return "ollama"
}

// BuildURL constructs the chat completions endpoint.
func (o *OllamaProvider) BuildURL(ep llm.Endpoint) string {
	base := ep.URL
	if base == "" {
		base = "http://localhost:11434/v1"
	}
	base = strings.TrimSuffix(base, "/")

	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}
