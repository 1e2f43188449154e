package llm

import (
	"net/http"
	"sync"
)

// Endpoint describes the single LLM endpoint a client talks to.
type Endpoint struct {
	// Provider names the registered Provider implementation ("azure",
	// "openai", "ollama").
	Provider string

	// URL is the base URL of the API (resource endpoint for Azure).
	URL string

	// Model is the model name, or the deployment name for Azure.
	Model string

	// APIKey authenticates the request. May be empty for local endpoints.
	APIKey string

	// APIVersion is the api-version query parameter (Azure only).
	APIVersion string
}

// Provider defines the wire format of one LLM API family.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// BuildURL constructs the full chat completions URL for the endpoint.
	BuildURL(ep Endpoint) string

	// SetHeaders adds provider-specific auth and content headers.
	SetHeaders(req *http.Request, ep Endpoint)

	// BuildRequestBody creates the JSON request body.
	// temperature is nil to use the provider default.
	BuildRequestBody(model string, messages []Message, temperature *float64, maxTokens int) ([]byte, error)

	// ParseResponse extracts the completion from provider-specific JSON.
	ParseResponse(body []byte) (*Response, error)
}

var (
	providerRegistry = make(map[string]Provider)
	providerMu       sync.RWMutex
)

// RegisterProvider adds a provider to the registry.
func RegisterProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerRegistry[p.Name()] = p
}

// GetProvider retrieves a provider by name, or nil.
func GetProvider(name string) Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return providerRegistry[name]
}

// ListProviders returns all registered provider names.
func ListProviders() []string {
	providerMu.RLock()
	defer providerMu.RUnlock()

	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	return names
}
