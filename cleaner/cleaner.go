// Package cleaner normalizes Confluence storage-format HTML into plain text
// suitable for LLM prompts, keeping structural markers like headings and
// lists as markdown.
package cleaner

import (
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Pre-compiled regexes for the fallback path and markdown cleanup.
var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	commentRe        = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe            = regexp.MustCompile(`<[^>]+>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// Options controls which HTML constructs survive cleaning.
type Options struct {
	// RemoveScripts strips <script> elements and their content.
	RemoveScripts bool
	// RemoveStyles strips <style> elements and their content.
	RemoveStyles bool
	// RemoveComments strips HTML comments.
	RemoveComments bool
	// PreserveTables keeps table cell text (as markdown tables).
	PreserveTables bool
	// PreserveImages keeps image references in the output.
	PreserveImages bool
	// ImageAltText replaces preserved images with their alt text instead of
	// a markdown image reference.
	ImageAltText bool
}

// DefaultOptions returns the summarization-friendly option set.
func DefaultOptions() Options {
	return Options{
		RemoveScripts:  true,
		RemoveStyles:   true,
		RemoveComments: true,
		PreserveTables: true,
		PreserveImages: true,
		ImageAltText:   true,
	}
}

// Cleaner converts HTML to clean text. Safe for reuse across pages.
type Cleaner struct {
	opts      Options
	converter *md.Converter
}

// New creates a Cleaner with the given options.
func New(opts Options) *Cleaner {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Cleaner{
		opts:      opts,
		converter: converter,
	}
}

// NewDefault creates a Cleaner with DefaultOptions.
func NewDefault() *Cleaner {
	return New(DefaultOptions())
}

// Clean converts raw HTML to plain text with markdown structure markers.
// Malformed input degrades to best-effort extraction; Clean never fails.
func (c *Cleaner) Clean(rawHTML string) string {
	pruned, ok := c.pruneDOM(rawHTML)
	if !ok {
		return c.fallbackClean(rawHTML)
	}

	markdown, err := c.converter.ConvertString(pruned)
	if err != nil {
		return c.fallbackClean(rawHTML)
	}

	markdown = tidyMarkdown(markdown)

	// Heavy layout markup can swallow all content during pruning. Let
	// readability take a second pass at the original document before giving
	// up on it.
	if markdown == "" {
		if text := extractReadable(rawHTML); text != "" {
			return text
		}
	}

	return markdown
}

// pruneDOM parses the HTML and removes the elements the options exclude.
// Returns false if the document could not be parsed at all.
func (c *Cleaner) pruneDOM(rawHTML string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false
	}

	var drop []string
	if c.opts.RemoveScripts {
		drop = append(drop, "script", "noscript")
	}
	if c.opts.RemoveStyles {
		drop = append(drop, "style")
	}
	if !c.opts.PreserveTables {
		drop = append(drop, "table")
	}
	if !c.opts.PreserveImages {
		drop = append(drop, "img")
	}
	removeElements(doc, drop)

	if c.opts.RemoveComments {
		removeComments(doc)
	}

	if c.opts.PreserveImages && c.opts.ImageAltText {
		replaceImagesWithAlt(doc)
	}

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", false
	}
	return sb.String(), true
}

// removeElements removes all elements with the given tag names.
func removeElements(n *html.Node, tags []string) {
	if len(tags) == 0 {
		return
	}

	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[tag] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tagSet[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// removeComments strips all comment nodes.
func removeComments(n *html.Node) {
	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.CommentNode {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// replaceImagesWithAlt substitutes each <img> with its alt text, dropping
// images that carry none.
func replaceImagesWithAlt(n *html.Node) {
	var images []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "img" {
			images = append(images, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, img := range images {
		if img.Parent == nil {
			continue
		}
		alt := attrValue(img, "alt")
		if alt != "" {
			img.Parent.InsertBefore(&html.Node{
				Type: html.TextNode,
				Data: "[image: " + alt + "]",
			}, img)
		}
		img.Parent.RemoveChild(img)
	}
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// fallbackClean provides regex-based cleanup when parsing fails.
func (c *Cleaner) fallbackClean(content string) string {
	if c.opts.RemoveScripts {
		content = scriptRe.ReplaceAllString(content, "")
	}
	if c.opts.RemoveStyles {
		content = styleRe.ReplaceAllString(content, "")
	}
	if c.opts.RemoveComments {
		content = commentRe.ReplaceAllString(content, "")
	}
	content = tagRe.ReplaceAllString(content, " ")
	return tidyMarkdown(content)
}

// extractReadable runs readability article extraction over the raw document.
func extractReadable(rawHTML string) string {
	u, _ := url.Parse("https://localhost/")
	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return ""
	}
	return tidyMarkdown(article.TextContent)
}

// tidyMarkdown collapses excessive blank lines and trailing whitespace.
func tidyMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
