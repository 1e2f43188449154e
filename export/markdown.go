// Package export writes summary results as markdown files and compares
// exported summaries across runs.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/confsum/confsum/confluence"
)

// timestampLayout is the filename timestamp format, sortable lexically.
const timestampLayout = "20060102_150405"

// Document is one summary ready for export.
type Document struct {
	Page        *confluence.Page
	PersonaName string
	Context     string
	Summary     string

	// Comparison is the optional diff against the previous export of the
	// same page.
	Comparison *Comparison

	// GeneratedAt stamps the export; zero means time.Now().
	GeneratedAt time.Time
}

// Writer exports summaries as markdown files under a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer targeting dir. The directory is created on the
// first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the export directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write renders the document and writes it to
// <dir>/<space>_<pageID>_<timestamp>.md, returning the path.
func (w *Writer) Write(doc Document) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	generatedAt := doc.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	name := fmt.Sprintf("%s_%s_%s.md",
		doc.Page.SpaceKey, doc.Page.ID, generatedAt.Format(timestampLayout))
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(Render(doc, generatedAt)), 0644); err != nil {
		return "", fmt.Errorf("write summary file: %w", err)
	}
	return path, nil
}

// Render produces the markdown document with its fixed section layout.
func Render(doc Document, generatedAt time.Time) string {
	var sb strings.Builder

	title := doc.Page.Title
	if title == "" {
		title = "Confluence Content"
	}
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString("## Metadata\n")
	writeMetaItem(&sb, "Space", doc.Page.SpaceKey)
	writeMetaItem(&sb, "Page ID", doc.Page.ID)
	writeMetaItem(&sb, "URL", doc.Page.URL)
	writeMetaItem(&sb, "Author", doc.Page.Author)
	if !doc.Page.Created.IsZero() {
		writeMetaItem(&sb, "Created", doc.Page.Created.Format("2006-01-02"))
	}
	if !doc.Page.LastModified.IsZero() {
		writeMetaItem(&sb, "Modified", doc.Page.LastModified.Format("2006-01-02"))
	}
	writeMetaItem(&sb, "Persona", doc.PersonaName)
	if doc.Context != "" {
		writeMetaItem(&sb, "Context", doc.Context)
	}
	sb.WriteString("\n")

	sb.WriteString("## Summary\n")
	sb.WriteString(doc.Summary)
	sb.WriteString("\n")

	if doc.Comparison != nil && !doc.Comparison.Identical {
		sb.WriteString("\n## Comparison Statistics\n\n")
		writeStats(&sb, doc.Comparison.Stats)

		sb.WriteString("\n## Changes from Previous Summary\n\n")
		sb.WriteString("```diff\n")
		sb.WriteString(doc.Comparison.UnifiedDiff)
		if !strings.HasSuffix(doc.Comparison.UnifiedDiff, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
	}

	sb.WriteString("\n---\n")
	fmt.Fprintf(&sb, "*Generated on: %s*\n", generatedAt.Format("2006-01-02 15:04:05"))

	return sb.String()
}

// writeMetaItem writes one metadata list entry, skipping empty values.
func writeMetaItem(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", key, value)
}

// writeStats renders the comparison statistics table.
func writeStats(sb *strings.Builder, stats Stats) {
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(sb, "| Total Lines | %d (Change: %+d) |\n", stats.NewLineCount, stats.LineDifference)
	fmt.Fprintf(sb, "| Changed Sections | %d |\n", stats.ChangedSections)
	fmt.Fprintf(sb, "| Added Sections | %d |\n", stats.AddedSections)
	fmt.Fprintf(sb, "| Removed Sections | %d |\n", stats.RemovedSections)
}

// FindPrevious returns the most recent prior export for the page, or "" when
// none exists. Export filenames embed a sortable timestamp, so the
// lexically greatest match is the newest.
func FindPrevious(dir, spaceKey, pageID string) (string, error) {
	pattern := filepath.Join(dir, fmt.Sprintf("%s_%s_*.md", spaceKey, pageID))
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob previous exports: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}

	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
