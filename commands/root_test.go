package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRoot()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "confsum version")
}

func TestCompareCommand_Identical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\n## Summary\ncontent\n"), 0644))

	out, err := execute(t, "compare", path, path)
	require.NoError(t, err)
	assert.Contains(t, out, "identical")
}

func TestCompareCommand_Changed(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.md")
	p2 := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(p1, []byte("# Title\n\n## Summary\nold line\n"), 0644))
	require.NoError(t, os.WriteFile(p2, []byte("# Title\n\n## Summary\nnew line\n"), 0644))

	out, err := execute(t, "compare", p1, p2)
	require.NoError(t, err)
	assert.Contains(t, out, "Sections: 1 changed")
	assert.Contains(t, out, "-old line")
	assert.Contains(t, out, "+new line")
}

func TestCompareCommand_MissingFile(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(p1, []byte("x"), 0644))

	_, err := execute(t, "compare", p1, filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestListPersonasCommand(t *testing.T) {
	t.Setenv("PERSONA_FILE", "")

	out, err := execute(t, "list-personas")
	require.NoError(t, err)
	for _, name := range []string{"technical", "business", "project", "user"} {
		assert.Contains(t, out, name)
	}
}

func TestListPersonasCommand_CustomFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reviewer: You are a code reviewer.\n"), 0644))

	out, err := execute(t, "list-personas", "--persona-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "reviewer")
	assert.Contains(t, out, "You are a code reviewer.")
}

func TestListPersonasCommand_WorkingDirFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "personas.yaml"),
		[]byte("auditor: You are a compliance auditor.\n"), 0644))
	t.Setenv("PERSONA_FILE", "")
	t.Chdir(dir)

	out, err := execute(t, "list-personas")
	require.NoError(t, err)
	assert.Contains(t, out, "auditor")
	assert.Contains(t, out, "technical", "built-ins stay available")
}

func TestSummarizeCommand_MissingConfig(t *testing.T) {
	for _, v := range []string{
		"CONFLUENCE_URL", "CONFLUENCE_USERNAME", "CONFLUENCE_API_TOKEN",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT_NAME",
	} {
		t.Setenv(v, "")
	}

	_, err := execute(t, "summarize", "TEAM", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required environment variables")
}
