// Package providers registers the LLM provider implementations via init().
package providers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/confsum/confsum/llm"
)

// AzureProvider implements the Azure OpenAI chat completions API, which
// addresses models by deployment name and authenticates with an api-key
// header instead of a bearer token.
type AzureProvider struct {
	OpenAICompatProvider // Shared request/response format
}

func init() {
	llm.RegisterProvider(&AzureProvider{})
}

// Name returns the provider identifier.
func (a *AzureProvider) Name() string {
	return "azure"
}

// BuildURL constructs the deployment-scoped chat completions endpoint.
func (a *AzureProvider) BuildURL(ep llm.Endpoint) string {
	base := strings.TrimSuffix(ep.URL, "/")
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		base, url.PathEscape(ep.Model), url.QueryEscape(ep.APIVersion))
}

// SetHeaders adds Azure OpenAI authentication headers.
func (a *AzureProvider) SetHeaders(req *http.Request, ep llm.Endpoint) {
	req.Header.Set("api-key", ep.APIKey)
}
