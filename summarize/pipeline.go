// Package summarize orchestrates the fetch → clean → chunk → summarize →
// aggregate → export pipeline for one invocation.
package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/confsum/confsum/chunker"
	"github.com/confsum/confsum/cleaner"
	"github.com/confsum/confsum/config"
	"github.com/confsum/confsum/confluence"
	"github.com/confsum/confsum/export"
	"github.com/confsum/confsum/llm"
	"github.com/confsum/confsum/persona"
)

// SummaryResult is the outcome of summarizing one page.
type SummaryResult struct {
	RunID       string
	PageID      string
	PageTitle   string
	SpaceKey    string
	PersonaName string
	Context     string
	Summary     string
	ChunkCount  int
	GeneratedAt time.Time

	// ExportPath is set when the summary was written to disk.
	ExportPath string

	// Comparison holds the diff against the previous export, when one existed.
	Comparison *export.Comparison

	// FromCache marks results served from the response cache.
	FromCache bool
}

// PageReport is one entry of a batch run.
type PageReport struct {
	PageID string
	Title  string
	Result *SummaryResult
	Err    error
}

// BatchReport aggregates per-page outcomes of one invocation.
type BatchReport struct {
	Items []PageReport
}

// Failed returns the number of pages that could not be summarized.
func (r *BatchReport) Failed() int {
	var n int
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// Params describes one summarize invocation.
type Params struct {
	SpaceKey        string
	PageID          string
	IncludeChildren bool
	Persona         string
	Context         string
	Export          bool
}

// Pipeline wires the pipeline stages together. All stages run strictly
// sequentially; one page's failure does not abort the batch.
type Pipeline struct {
	source   confluence.PageSource
	client   Summarizer
	cleaner  *cleaner.Cleaner
	chunker  *chunker.Chunker
	personas *persona.Registry
	writer   *export.Writer
	cache    *Cache
	policy   config.AggregationPolicy
	temp     *float64
	logger   *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCache enables the LLM response cache.
func WithCache(cache *Cache) PipelineOption {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithTemperature sets the sampling temperature for summary generation.
func WithTemperature(t float64) PipelineOption {
	return func(p *Pipeline) {
		p.temp = &t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a Pipeline from its stage implementations.
func NewPipeline(
	source confluence.PageSource,
	client Summarizer,
	cl *cleaner.Cleaner,
	ch *chunker.Chunker,
	personas *persona.Registry,
	writer *export.Writer,
	policy config.AggregationPolicy,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		source:   source,
		client:   client,
		cleaner:  cl,
		chunker:  ch,
		personas: personas,
		writer:   writer,
		policy:   policy,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run executes one invocation. The persona is resolved before anything else
// so an unknown name fails before any network call. Fetch and summarize
// failures are isolated per page; the returned report covers every page.
func (p *Pipeline) Run(ctx context.Context, params Params) (*BatchReport, error) {
	pers, err := p.personas.Get(params.Persona)
	if err != nil {
		return nil, err
	}

	pages, err := p.collectPages(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages found in space %s", params.SpaceKey)
	}

	report := &BatchReport{}
	for i := range pages {
		page := &pages[i]

		result, err := p.summarizePage(ctx, page, pers, params)
		if err != nil {
			p.logger.Warn("Page summarization failed",
				"page_id", page.ID,
				"title", page.Title,
				"error", err)
			report.Items = append(report.Items, PageReport{
				PageID: page.ID,
				Title:  page.Title,
				Err:    err,
			})
			continue
		}

		report.Items = append(report.Items, PageReport{
			PageID: page.ID,
			Title:  page.Title,
			Result: result,
		})
	}

	return report, nil
}

// collectPages resolves the page set for the invocation.
func (p *Pipeline) collectPages(ctx context.Context, params Params) ([]confluence.Page, error) {
	if params.PageID == "" {
		pages, err := p.source.GetSpacePages(ctx, params.SpaceKey)
		if err != nil {
			return nil, fmt.Errorf("list pages in space %s: %w", params.SpaceKey, err)
		}
		return pages, nil
	}

	page, err := p.source.GetPage(ctx, params.PageID)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", params.PageID, err)
	}

	pages := []confluence.Page{*page}
	if params.IncludeChildren {
		children, err := p.source.GetChildPages(ctx, params.PageID)
		if err != nil {
			return nil, fmt.Errorf("fetch children of page %s: %w", params.PageID, err)
		}
		pages = append(pages, children...)
	}
	return pages, nil
}

// summarizePage runs the clean → chunk → summarize → aggregate → export
// stages for one page.
func (p *Pipeline) summarizePage(
	ctx context.Context,
	page *confluence.Page,
	pers persona.Persona,
	params Params,
) (*SummaryResult, error) {
	result := &SummaryResult{
		RunID:       uuid.New().String(),
		PageID:      page.ID,
		PageTitle:   page.Title,
		SpaceKey:    page.SpaceKey,
		PersonaName: pers.Name,
		Context:     params.Context,
		GeneratedAt: time.Now(),
	}

	cacheKey := p.cacheKey(page, pers.Name, params.Context)
	if summary, ok := p.cache.Get(cacheKey); ok {
		p.logger.Debug("Summary served from cache", "page_id", page.ID)
		result.Summary = summary
		result.FromCache = true
	} else {
		summary, chunkCount, err := p.generate(ctx, page, pers, params.Context)
		if err != nil {
			return nil, err
		}
		result.Summary = summary
		result.ChunkCount = chunkCount
		p.cache.Put(cacheKey, summary)
	}

	if params.Export {
		p.exportResult(page, pers, params.Context, result)
	}

	return result, nil
}

// generate produces the aggregated summary text for one page.
func (p *Pipeline) generate(
	ctx context.Context,
	page *confluence.Page,
	pers persona.Persona,
	userContext string,
) (string, int, error) {
	text := p.cleaner.Clean(page.Body)
	if text == "" {
		return "", 0, fmt.Errorf("page %s has no textual content", page.ID)
	}

	chunks := p.chunker.Split(text)
	p.logger.Debug("Page chunked",
		"page_id", page.ID,
		"chunks", len(chunks),
		"chars", len(text))

	partials := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		resp, err := p.client.Complete(ctx, llm.Request{
			Messages:    persona.BuildPrompt(pers, userContext, chunk.Text, chunk.Index, len(chunks)),
			Temperature: p.temp,
		})
		if err != nil {
			return "", 0, fmt.Errorf("summarize chunk %d/%d: %w", chunk.Index+1, len(chunks), err)
		}
		partials = append(partials, resp.Content)
	}

	summary, err := aggregate(ctx, p.policy, p.client, pers, userContext, partials, p.temp)
	if err != nil {
		return "", 0, err
	}
	return summary, len(chunks), nil
}

// exportResult writes the summary to disk, diffing against the previous
// export of the same page first. Export failures never discard the result.
func (p *Pipeline) exportResult(
	page *confluence.Page,
	pers persona.Persona,
	userContext string,
	result *SummaryResult,
) {
	if prev, err := export.FindPrevious(p.writer.Dir(), page.SpaceKey, page.ID); err == nil && prev != "" {
		if prevSummary, err := export.SummarySection(prev); err == nil {
			result.Comparison = export.Compare(prevSummary, result.Summary, prev, "current")
		}
	}

	path, err := p.writer.Write(export.Document{
		Page:        page,
		PersonaName: pers.Name,
		Context:     userContext,
		Summary:     result.Summary,
		Comparison:  result.Comparison,
		GeneratedAt: result.GeneratedAt,
	})
	if err != nil {
		p.logger.Warn("Export failed, keeping in-memory result",
			"page_id", page.ID,
			"error", err)
		return
	}
	result.ExportPath = path
}

// cacheKey combines everything that changes the generated output.
func (p *Pipeline) cacheKey(page *confluence.Page, personaName, userContext string) string {
	sum := sha256.Sum256([]byte(userContext))
	return fmt.Sprintf("%s_%s_%s_%s", page.CacheKey(), personaName, p.policy, hex.EncodeToString(sum[:8]))
}
