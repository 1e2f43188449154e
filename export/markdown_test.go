package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confsum/confsum/confluence"
)

func testPage() *confluence.Page {
	return &confluence.Page{
		ID:           "123456",
		Title:        "Architecture Overview",
		SpaceKey:     "TEAM",
		Author:       "Jane Doe",
		Created:      time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		LastModified: time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC),
		URL:          "https://example.atlassian.net/wiki/spaces/TEAM/pages/123456",
	}
}

func TestRender_FixedSections(t *testing.T) {
	doc := Document{
		Page:        testPage(),
		PersonaName: "technical",
		Context:     "focus on the migration",
		Summary:     "The page describes the v2 architecture.",
	}
	generatedAt := time.Date(2024, 3, 17, 12, 30, 0, 0, time.UTC)

	out := Render(doc, generatedAt)

	assert.Contains(t, out, "# Architecture Overview\n")
	assert.Contains(t, out, "## Metadata\n")
	assert.Contains(t, out, "- Space: TEAM\n")
	assert.Contains(t, out, "- Page ID: 123456\n")
	assert.Contains(t, out, "- Author: Jane Doe\n")
	assert.Contains(t, out, "- Created: 2024-03-15\n")
	assert.Contains(t, out, "- Modified: 2024-03-16\n")
	assert.Contains(t, out, "- Persona: technical\n")
	assert.Contains(t, out, "- Context: focus on the migration\n")
	assert.Contains(t, out, "## Summary\nThe page describes the v2 architecture.\n")
	assert.Contains(t, out, "*Generated on: 2024-03-17 12:30:00*")
	assert.NotContains(t, out, "## Comparison Statistics")
}

func TestRender_WithComparison(t *testing.T) {
	doc := Document{
		Page:        testPage(),
		PersonaName: "technical",
		Summary:     "new summary",
		Comparison: &Comparison{
			UnifiedDiff: "-old summary\n+new summary\n",
			Stats: Stats{
				NewLineCount:    1,
				LineDifference:  0,
				ChangedSections: 1,
			},
		},
	}

	out := Render(doc, time.Now())

	assert.Contains(t, out, "## Comparison Statistics")
	assert.Contains(t, out, "| Changed Sections | 1 |")
	assert.Contains(t, out, "## Changes from Previous Summary")
	assert.Contains(t, out, "```diff\n-old summary\n+new summary\n```")
}

func TestRender_IdenticalComparisonOmitted(t *testing.T) {
	doc := Document{
		Page:       testPage(),
		Summary:    "same",
		Comparison: &Comparison{Identical: true},
	}

	out := Render(doc, time.Now())
	assert.NotContains(t, out, "## Comparison Statistics")
	assert.NotContains(t, out, "## Changes from Previous Summary")
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "summaries"))

	doc := Document{
		Page:        testPage(),
		PersonaName: "business",
		Summary:     "exported content",
		GeneratedAt: time.Date(2024, 3, 17, 12, 30, 0, 0, time.UTC),
	}

	path, err := w.Write(doc)
	require.NoError(t, err)
	assert.Equal(t, "TEAM_123456_20240317_123000.md", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "exported content")
}

func TestFindPrevious(t *testing.T) {
	dir := t.TempDir()

	// No exports yet.
	path, err := FindPrevious(dir, "TEAM", "123456")
	require.NoError(t, err)
	assert.Empty(t, path)

	for _, name := range []string{
		"TEAM_123456_20240315_090000.md",
		"TEAM_123456_20240316_100000.md",
		"TEAM_999999_20240317_110000.md", // different page
		"OTHER_123456_20240318_120000.md", // different space
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	path, err = FindPrevious(dir, "TEAM", "123456")
	require.NoError(t, err)
	assert.Equal(t, "TEAM_123456_20240316_100000.md", filepath.Base(path))
}
