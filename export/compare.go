package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Comparison is the result of diffing two summaries.
type Comparison struct {
	// Identical is true when the contents match exactly.
	Identical bool

	// UnifiedDiff is the line diff, empty when Identical.
	UnifiedDiff string

	// Stats summarizes the structural changes.
	Stats Stats
}

// Stats describes line and section level changes between two documents.
type Stats struct {
	OldLineCount    int
	NewLineCount    int
	LineDifference  int
	ChangedSections int
	AddedSections   int
	RemovedSections int
	SectionChanges  []SectionChange
}

// SectionChange describes the change within one section present in both
// documents.
type SectionChange struct {
	Section      string
	OldLineCount int
	NewLineCount int
	DiffLines    int
}

// Section is one heading-delimited region of a markdown document.
type Section struct {
	Title   string
	Level   int
	Content string
}

// Compare diffs two markdown contents. fromName and toName label the diff
// header. Identical inputs produce zero detected differences.
func Compare(oldContent, newContent, fromName, toName string) *Comparison {
	if oldContent == newContent {
		return &Comparison{Identical: true}
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
	if err != nil {
		// SequenceMatcher only errors on writer failures; a string writer
		// cannot fail, but degrade to a whole-document marker regardless.
		diff = "(diff unavailable)"
	}

	if diff == "" {
		return &Comparison{Identical: true}
	}

	return &Comparison{
		UnifiedDiff: diff,
		Stats:       computeStats(oldContent, newContent),
	}
}

// CompareFiles diffs two exported summary files.
func CompareFiles(path1, path2 string) (*Comparison, error) {
	oldContent, err := os.ReadFile(path1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path1, err)
	}
	newContent, err := os.ReadFile(path2)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path2, err)
	}

	return Compare(string(oldContent), string(newContent), path1, path2), nil
}

// computeStats derives line and section statistics for two documents.
func computeStats(oldContent, newContent string) Stats {
	oldLines := strings.Count(oldContent, "\n") + 1
	newLines := strings.Count(newContent, "\n") + 1

	stats := Stats{
		OldLineCount:   oldLines,
		NewLineCount:   newLines,
		LineDifference: newLines - oldLines,
	}

	oldSections := sectionMap(Sections([]byte(oldContent)))
	newSections := sectionMap(Sections([]byte(newContent)))

	for title := range newSections {
		if _, ok := oldSections[title]; !ok {
			stats.AddedSections++
		}
	}
	for title, oldSec := range oldSections {
		newSec, ok := newSections[title]
		if !ok {
			stats.RemovedSections++
			continue
		}
		if oldSec.Content == newSec.Content {
			continue
		}

		stats.ChangedSections++
		diffLines := countDiffLines(oldSec.Content, newSec.Content)
		stats.SectionChanges = append(stats.SectionChanges, SectionChange{
			Section:      title,
			OldLineCount: lineCount(oldSec.Content),
			NewLineCount: lineCount(newSec.Content),
			DiffLines:    diffLines,
		})
	}

	return stats
}

// Sections parses markdown and splits it into heading-delimited sections.
// Text before the first heading is ignored.
func Sections(source []byte) []Section {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	type boundary struct {
		title string
		level int
		start int // offset of the line following the heading
	}
	var bounds []boundary

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		var title strings.Builder
		for i := 0; i < heading.Lines().Len(); i++ {
			seg := heading.Lines().At(i)
			title.Write(seg.Value(source))
		}

		bounds = append(bounds, boundary{
			title: strings.TrimSpace(title.String()),
			level: heading.Level,
			start: lineEnd(source, heading.Lines().At(heading.Lines().Len()-1).Stop),
		})
		return ast.WalkSkipChildren, nil
	})

	sections := make([]Section, 0, len(bounds))
	for i, b := range bounds {
		end := len(source)
		if i+1 < len(bounds) {
			end = lineStart(source, bounds[i+1].start-1)
		}
		content := ""
		if b.start < end {
			content = strings.TrimSpace(string(source[b.start:end]))
		}
		sections = append(sections, Section{
			Title:   b.title,
			Level:   b.level,
			Content: content,
		})
	}
	return sections
}

// SummarySection extracts the "## Summary" section content from an exported
// file, matching what previous runs produced.
func SummarySection(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	for _, sec := range Sections(content) {
		if sec.Level == 2 && sec.Title == "Summary" {
			return sec.Content, nil
		}
	}
	return "", fmt.Errorf("%s: no Summary section found", path)
}

// sectionMap indexes sections by title; later duplicates win, matching the
// last-occurrence behavior of the comparison.
func sectionMap(sections []Section) map[string]Section {
	m := make(map[string]Section, len(sections))
	for _, s := range sections {
		m[s.Title] = s
	}
	return m
}

// countDiffLines counts the changed lines between two section bodies.
func countDiffLines(oldContent, newContent string) int {
	matcher := difflib.NewMatcher(
		difflib.SplitLines(oldContent),
		difflib.SplitLines(newContent),
	)

	var changed int
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		changed += (op.I2 - op.I1) + (op.J2 - op.J1)
	}
	return changed
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// lineEnd returns the offset just past the newline following pos.
func lineEnd(source []byte, pos int) int {
	for pos < len(source) && source[pos] != '\n' {
		pos++
	}
	if pos < len(source) {
		pos++
	}
	return pos
}

// lineStart returns the offset of the start of the line containing pos.
func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	for pos > 0 && source[pos-1] != '\n' {
		pos--
	}
	return pos
}
