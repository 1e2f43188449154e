// Package persona manages the fixed set of summarization personas and builds
// the per-chunk prompt payloads sent to the LLM.
package persona

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Persona is a named fixed system prompt controlling summary tone and focus.
type Persona struct {
	Name         string
	SystemPrompt string
}

// Registry holds the configured persona set. Read-only after load.
type Registry struct {
	personas map[string]string
}

// builtinPersonas are the default personas available without configuration.
var builtinPersonas = map[string]string{
	"technical": `You are a technical expert focused on implementation details, code, and technical architecture.
Your summaries should:
1. Highlight technical specifications and requirements
2. Preserve code examples and technical details
3. Focus on implementation approaches and patterns
4. Note any technical constraints or limitations
5. Emphasize system architecture and design decisions`,

	"business": `You are a business analyst focused on objectives, requirements, and business value.
Your summaries should:
1. Highlight business objectives and goals
2. Focus on requirements and use cases
3. Emphasize business impact and value
4. Note any business constraints or risks
5. Summarize key stakeholders and their needs`,

	"project": `You are a project manager focused on timelines, deliverables, and project status.
Your summaries should:
1. Highlight project milestones and deadlines
2. Focus on deliverables and their status
3. Emphasize dependencies and blockers
4. Note any risks or issues
5. Summarize resource allocation and team assignments`,

	"user": `You are a user experience expert focused on usability and user needs.
Your summaries should:
1. Highlight user workflows and interactions
2. Focus on user requirements and needs
3. Emphasize usability considerations
4. Note any user feedback or pain points
5. Summarize user personas and scenarios`,
}

// DefaultPersona is used when the summarize command gets no --persona flag.
const DefaultPersona = "technical"

// NewRegistry creates a registry with the built-in personas.
func NewRegistry() *Registry {
	personas := make(map[string]string, len(builtinPersonas))
	for name, prompt := range builtinPersonas {
		personas[name] = prompt
	}
	return &Registry{personas: personas}
}

// LoadRegistry creates a registry with the built-in personas merged with the
// YAML file at path (a mapping of persona name to system prompt). File
// definitions override built-ins of the same name. An empty path returns the
// built-in set.
func LoadRegistry(path string) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	var loaded map[string]string
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse persona file %s: %w", path, err)
	}

	for name, prompt := range loaded {
		if name == "" || prompt == "" {
			return nil, fmt.Errorf("persona file %s: names and prompts must be non-empty", path)
		}
		r.personas[name] = prompt
	}
	return r, nil
}

// Get returns the persona by name. Unknown names are a configuration error,
// reported before any network call is made.
func (r *Registry) Get(name string) (Persona, error) {
	prompt, ok := r.personas[name]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q (available: %v)", name, r.Names())
	}
	return Persona{Name: name, SystemPrompt: prompt}, nil
}

// Names returns all configured persona names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.personas))
	for name := range r.personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all personas, sorted by name.
func (r *Registry) List() []Persona {
	names := r.Names()
	personas := make([]Persona, 0, len(names))
	for _, name := range names {
		personas = append(personas, Persona{Name: name, SystemPrompt: r.personas[name]})
	}
	return personas
}
