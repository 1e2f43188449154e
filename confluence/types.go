// Package confluence provides a minimal client for the Confluence Cloud
// REST API, fetching pages as storage-format HTML plus metadata.
package confluence

import (
	"context"
	"time"
)

// Page is a Confluence page with its storage-format body and metadata.
// Pages are immutable once fetched within a run.
type Page struct {
	ID           string
	Title        string
	SpaceKey     string
	Body         string // storage-format HTML
	Version      int
	Author       string
	Created      time.Time
	LastModified time.Time
	URL          string
}

// PageSource is the capability interface the summarization pipeline depends
// on, so it can run against a live instance or a test double.
type PageSource interface {
	// GetPage fetches a single page by ID.
	GetPage(ctx context.Context, pageID string) (*Page, error)

	// GetChildPages fetches the direct children of a page, in API order.
	GetChildPages(ctx context.Context, pageID string) ([]Page, error)

	// GetSpacePages fetches all pages of a space.
	GetSpacePages(ctx context.Context, spaceKey string) ([]Page, error)
}
