package maven

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/cache"
	"github.com/matzehuels/mavcrawl/pkg/httputil"
	"github.com/matzehuels/mavcrawl/pkg/integrations"
)

// DefaultSearchRows is the Solr page size.
const DefaultSearchRows = 100

// Client reads a Maven-layout repository over HTTP: directory listings,
// POMs, file metadata, Solr search and Google-style group indexes.
//
// All methods are safe for concurrent use. Every request goes through the
// client's shared throttle.
type Client struct {
	*integrations.Client
	repo    Repository
	refresh bool
}

// Options configures a [Client].
type Options struct {
	// Cache stores responses between runs. Nil disables caching.
	Cache cache.Cache
	// CacheTTL is the entry lifetime; 0 keeps entries forever.
	CacheTTL time.Duration
	// Throttle is shared by all requests. Nil uses [httputil.DefaultInterval].
	Throttle *httputil.Throttle
	// Refresh bypasses cached responses (they are still written).
	Refresh bool
	// UserAgent is sent with every request.
	UserAgent string
}

// NewClient creates a client for repo.
func NewClient(repo Repository, opts Options) *Client {
	repo = repo.WithDefaults()
	var headers map[string]string
	if opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}
	base := integrations.NewClient(opts.Cache, repo.Name+":", opts.CacheTTL, headers)
	t := opts.Throttle
	if t == nil {
		t = httputil.NewThrottle(httputil.DefaultInterval)
	}
	base.SetThrottle(t)
	return &Client{Client: base, repo: repo, refresh: opts.Refresh}
}

// Repository returns the repository this client reads.
func (c *Client) Repository() Repository { return c.repo }

// FetchPOM downloads c's POM.
//
// Returns an error wrapping [integrations.ErrNotFound] when the POM is not
// published and [integrations.ErrNetwork] for transport failures.
func (c *Client) FetchPOM(ctx context.Context, coord artifact.Coordinate) ([]byte, error) {
	u := c.repo.POMURL(coord)
	data, err := c.Cached(ctx, "pom", u, c.refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch POM %s: %w", coord, err)
	}
	return data, nil
}

// List returns the absolute URLs of the subdirectories of dirURL. Any
// non-success response yields an empty list together with the error.
func (c *Client) List(ctx context.Context, dirURL string) ([]string, error) {
	dirURL = withSlash(dirURL)
	data, err := c.Cached(ctx, "listing", dirURL, c.refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, dirURL)
	})
	if err != nil {
		return []string{}, err
	}
	dirs, err := parseListing(data, dirURL)
	if err != nil {
		return []string{}, err
	}
	return dirs, nil
}

// FileInfo returns last-modified and size of c's .jar (or .aar) file.
// Missing information is left empty; only request failures are errors.
func (c *Client) FileInfo(ctx context.Context, coord artifact.Coordinate) (FileInfo, error) {
	if c.repo.FileInfo == FileInfoHead {
		return c.headInfo(ctx, coord)
	}
	u := c.repo.DirectoryURL(coord)
	data, err := c.Cached(ctx, "listing", u, c.refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, u)
	})
	if err != nil {
		return FileInfo{}, err
	}
	entries, err := parseEntries(data)
	if err != nil {
		return FileInfo{}, err
	}
	return selectFileInfo(entries, coord), nil
}

func (c *Client) headInfo(ctx context.Context, coord artifact.Coordinate) (FileInfo, error) {
	var lastErr error
	for _, ext := range []string{"aar", "jar"} {
		h, err := c.Head(ctx, c.repo.FileURL(coord, ext))
		if err != nil {
			lastErr = err
			continue
		}
		var info FileInfo
		if t, ok := ParseTimestamp(h.Get("Last-Modified")); ok {
			info.LastModified = &t
		}
		if n, err := strconv.ParseInt(h.Get("Content-Length"), 10, 64); err == nil && n >= 0 {
			info.Size = strconv.FormatInt(n, 10)
		}
		return info, nil
	}
	return FileInfo{}, lastErr
}

// SearchPage is one page of Solr results.
type SearchPage struct {
	Coordinates []artifact.Coordinate
	NumFound    int
	Start       int
	// Docs is the number of documents returned, including dropped ones.
	Docs int
}

// Search fetches one page of the repository's Solr index (q=*:*). Docs
// without a usable version are dropped.
func (c *Client) Search(ctx context.Context, start, rows int) (*SearchPage, error) {
	if c.repo.SearchURL == "" {
		return nil, fmt.Errorf("repository %s has no search endpoint", c.repo.Name)
	}
	if rows <= 0 {
		rows = DefaultSearchRows
	}
	u := fmt.Sprintf("%s?q=%s&rows=%d&start=%d&wt=json",
		c.repo.SearchURL, integrations.URLEncode("*:*"), rows, start)

	data, err := c.Cached(ctx, "search", u, c.refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	page := &SearchPage{NumFound: resp.Response.NumFound, Start: start, Docs: len(resp.Response.Docs)}
	for _, d := range resp.Response.Docs {
		v := d.LatestVersion
		if v == "" {
			v = d.Version
		}
		coord, err := artifact.New(d.GroupID, d.ArtifactID, v)
		if err != nil {
			continue
		}
		page.Coordinates = append(page.Coordinates, coord)
	}
	return page, nil
}

type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	GroupID       string `json:"g"`
	ArtifactID    string `json:"a"`
	Version       string `json:"v"`
	LatestVersion string `json:"latestVersion"`
}
