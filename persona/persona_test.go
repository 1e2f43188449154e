package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{"business", "project", "technical", "user"}, r.Names())

	p, err := r.Get("technical")
	require.NoError(t, err)
	assert.Equal(t, "technical", p.Name)
	assert.Contains(t, p.SystemPrompt, "technical expert")
}

func TestRegistry_UnknownPersona(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown persona")
	assert.Contains(t, err.Error(), "technical", "error should list available personas")
}

func TestLoadRegistry_MergesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	content := "security: You are a security reviewer.\ntechnical: Overridden technical prompt.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)

	p, err := r.Get("security")
	require.NoError(t, err)
	assert.Equal(t, "You are a security reviewer.", p.SystemPrompt)

	p, err = r.Get("technical")
	require.NoError(t, err)
	assert.Equal(t, "Overridden technical prompt.", p.SystemPrompt)

	// Untouched built-ins survive the merge.
	_, err = r.Get("business")
	assert.NoError(t, err)
}

func TestLoadRegistry_EmptyPath(t *testing.T) {
	r, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Len(t, r.List(), 4)
}

func TestLoadRegistry_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: mapping"), 0644))

	_, err := LoadRegistry(path)
	assert.Error(t, err)

	_, err = LoadRegistry(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	p := Persona{Name: "technical", SystemPrompt: "Focus on architecture."}

	msgs := BuildPrompt(p, "Emphasize the migration plan", "Chunk body text", 0, 1)
	require.Len(t, msgs, 2)

	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "You are a technical")
	assert.Contains(t, msgs[0].Content, "Focus on architecture.")
	assert.Contains(t, msgs[0].Content, "Additional context: Emphasize the migration plan")
	assert.Contains(t, msgs[0].Content, "comprehensive summary")
	assert.NotContains(t, msgs[0].Content, "split into")

	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "Chunk body text", msgs[1].Content)
}

func TestBuildPrompt_NoContext(t *testing.T) {
	p := Persona{Name: "business", SystemPrompt: "Prompt."}

	msgs := BuildPrompt(p, "", "text", 0, 1)
	assert.NotContains(t, msgs[0].Content, "Additional context")
}

func TestBuildPrompt_MultiPart(t *testing.T) {
	p := Persona{Name: "business", SystemPrompt: "Prompt."}

	msgs := BuildPrompt(p, "", "text", 2, 5)
	assert.Contains(t, msgs[0].Content, "split into 5 parts")
	assert.Contains(t, msgs[0].Content, "part 3")
}

func TestBuildMergePrompt(t *testing.T) {
	p := Persona{Name: "technical", SystemPrompt: "Prompt."}

	msgs := BuildMergePrompt(p, "ctx", "partial one\n\npartial two")
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "merging partial summaries")
	assert.Contains(t, msgs[0].Content, "Additional context: ctx")
	assert.Equal(t, "partial one\n\npartial two", msgs[1].Content)
}
