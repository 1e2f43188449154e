package confluence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `{
	"id": "123456",
	"title": "Architecture Overview",
	"space": {"key": "TEAM"},
	"body": {"storage": {"value": "<p>Hello</p>"}},
	"version": {
		"number": 7,
		"when": "2024-03-16T10:00:00Z",
		"by": {"displayName": "Jane Doe"}
	},
	"history": {"createdDate": "2024-03-15T09:00:00Z"}
}`

func TestGetPage(t *testing.T) {
	var gotPath, gotUser, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotToken, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "user@example.com", "token")
	page, err := c.GetPage(context.Background(), "123456")
	require.NoError(t, err)

	assert.Equal(t, "/wiki/rest/api/content/123456", gotPath)
	assert.Equal(t, "user@example.com", gotUser)
	assert.Equal(t, "token", gotToken)

	assert.Equal(t, "123456", page.ID)
	assert.Equal(t, "Architecture Overview", page.Title)
	assert.Equal(t, "TEAM", page.SpaceKey)
	assert.Equal(t, "<p>Hello</p>", page.Body)
	assert.Equal(t, 7, page.Version)
	assert.Equal(t, "Jane Doe", page.Author)
	assert.Equal(t, srv.URL+"/wiki/spaces/TEAM/pages/123456", page.URL)
	assert.Equal(t, "2024-03-16", page.LastModified.Format("2006-01-02"))
}

func TestGetPage_Errors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusNotFound, IsNotFound, "not found"},
		{http.StatusUnauthorized, IsPermission, "unauthorized"},
		{http.StatusForbidden, IsPermission, "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "u", "t")
			_, err := c.GetPage(context.Background(), "1")
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestGetChildPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/rest/api/content/123456/child/page", r.URL.Path)
		w.Write([]byte(`{"results": [` + samplePage + `], "size": 1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "t")
	children, err := c.GetChildPages(context.Background(), "123456")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Architecture Overview", children[0].Title)
}

func TestGetSpacePages_Pagination(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))

		count := pageLimit
		if start >= pageLimit {
			count = 3 // final short page
		}

		results := make([]json.RawMessage, count)
		for i := range results {
			results[i] = json.RawMessage(samplePage)
		}
		resp, _ := json.Marshal(map[string]any{"results": results})
		w.Write(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "t")
	pages, err := c.GetSpacePages(context.Background(), "TEAM")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, pages, pageLimit+3)
}

func TestPageCacheKey(t *testing.T) {
	p := Page{ID: "123", Version: 4}
	assert.Equal(t, "123-v4", p.CacheKey())
}
