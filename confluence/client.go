package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// maxResponseSize limits API response bodies to prevent memory exhaustion.
	maxResponseSize = 32 * 1024 * 1024 // 32MB

	// expandParams asks the API for the storage body and version metadata.
	expandParams = "body.storage,version,space,history"

	// pageLimit is the page size for paginated space listings.
	pageLimit = 50
)

// Client talks to the Confluence Cloud REST API using basic auth.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a Confluence client for the given instance.
func NewClient(baseURL, username, apiToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (max 5)")
				}
				return nil
			},
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// pagePayload is the wire format of a content item.
type pagePayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		Number int    `json:"number"`
		When   string `json:"when"`
		By     struct {
			DisplayName string `json:"displayName"`
		} `json:"by"`
	} `json:"version"`
	History struct {
		CreatedDate string `json:"createdDate"`
	} `json:"history"`
}

// listPayload is the wire format of a paginated content listing.
type listPayload struct {
	Results []pagePayload `json:"results"`
	Size    int           `json:"size"`
	Limit   int           `json:"limit"`
}

// GetPage fetches a single page by ID with its storage body and version.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	endpoint := fmt.Sprintf("%s/wiki/rest/api/content/%s?expand=%s",
		c.baseURL, url.PathEscape(pageID), url.QueryEscape(expandParams))

	var payload pagePayload
	if err := c.getJSON(ctx, endpoint, "page "+pageID, &payload); err != nil {
		return nil, err
	}

	page := c.toPage(payload)
	return &page, nil
}

// GetChildPages fetches the direct children of a page, in API order.
func (c *Client) GetChildPages(ctx context.Context, pageID string) ([]Page, error) {
	endpoint := fmt.Sprintf("%s/wiki/rest/api/content/%s/child/page?expand=%s&limit=%d",
		c.baseURL, url.PathEscape(pageID), url.QueryEscape(expandParams), pageLimit)

	var payload listPayload
	if err := c.getJSON(ctx, endpoint, "children of page "+pageID, &payload); err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(payload.Results))
	for _, p := range payload.Results {
		pages = append(pages, c.toPage(p))
	}
	return pages, nil
}

// GetSpacePages fetches all pages of a space, following pagination.
func (c *Client) GetSpacePages(ctx context.Context, spaceKey string) ([]Page, error) {
	var pages []Page
	start := 0

	for {
		endpoint := fmt.Sprintf("%s/wiki/rest/api/content?spaceKey=%s&type=page&expand=%s&start=%d&limit=%d",
			c.baseURL, url.QueryEscape(spaceKey), url.QueryEscape(expandParams), start, pageLimit)

		var payload listPayload
		if err := c.getJSON(ctx, endpoint, "space "+spaceKey, &payload); err != nil {
			return nil, err
		}

		for _, p := range payload.Results {
			pages = append(pages, c.toPage(p))
		}

		if len(payload.Results) < pageLimit {
			return pages, nil
		}
		start += pageLimit
	}
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching Confluence content", "resource", resource)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, resource)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s: %w", resource, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s: %w", resource, err)
	}
	return nil
}

// toPage converts a wire payload to a Page.
func (c *Client) toPage(p pagePayload) Page {
	page := Page{
		ID:       p.ID,
		Title:    p.Title,
		SpaceKey: p.Space.Key,
		Body:     p.Body.Storage.Value,
		Version:  p.Version.Number,
		Author:   p.Version.By.DisplayName,
		URL:      c.baseURL + "/wiki/spaces/" + p.Space.Key + "/pages/" + p.ID,
	}

	if t, err := time.Parse(time.RFC3339, p.Version.When); err == nil {
		page.LastModified = t
	}
	if t, err := time.Parse(time.RFC3339, p.History.CreatedDate); err == nil {
		page.Created = t
	}

	return page
}

// CacheKey returns the cache key for a page, combining ID and version so a
// page edit invalidates prior cached responses.
func (p *Page) CacheKey() string {
	return p.ID + "-v" + strconv.Itoa(p.Version)
}
