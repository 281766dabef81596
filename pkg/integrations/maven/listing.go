package maven

import (
	"bytes"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// FileInfo is what a version directory says about an artifact's main file.
// Absent values are nil/empty.
type FileInfo struct {
	LastModified *time.Time
	Size         string
}

// listingEntry is one file row of a directory index.
type listingEntry struct {
	Name     string
	Modified string
	Size     string
}

// parseListing returns the absolute URLs of the subdirectories linked from an
// HTML index served at base. Parent links and links leaving base are dropped.
func parseListing(body []byte, base string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	baseURL, err := url.Parse(withSlash(base))
	if err != nil {
		return nil, err
	}
	prefix := baseURL.String()

	seen := make(map[string]bool)
	var dirs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasSuffix(href, "/") || href == "../" || href == "/" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := baseURL.ResolveReference(ref).String()
		if abs == prefix || !strings.HasPrefix(abs, prefix) || seen[abs] {
			return
		}
		seen[abs] = true
		dirs = append(dirs, abs)
	})
	return dirs, nil
}

// DirName returns the decoded last path component of a directory URL.
func DirName(dirURL string) string {
	name := path.Base(strings.TrimSuffix(dirURL, "/"))
	if dec, err := url.PathUnescape(name); err == nil {
		name = dec
	}
	return path.Base(name)
}

var preLink = regexp.MustCompile(`(?i)<a\s[^>]*href="([^"]*)"[^>]*>.*?</a>(.*)$`)

// parseEntries extracts file rows from either a <pre> autoindex (Maven
// Central style: name, date, time, size) or a <table> listing (Nexus style:
// name, modified, size columns).
func parseEntries(body []byte) ([]listingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var entries []listingEntry

	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		html, err := pre.Html()
		if err != nil {
			return
		}
		for _, line := range strings.Split(html, "\n") {
			m := preLink.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := DirName(m[1])
			fields := strings.Fields(m[2])
			e := listingEntry{Name: name}
			if len(fields) >= 2 {
				e.Modified = fields[0] + " " + fields[1]
			}
			if len(fields) >= 3 {
				e.Size = fields[2]
			}
			entries = append(entries, e)
		}
	})

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 3 {
			return
		}
		entries = append(entries, listingEntry{
			Name:     strings.TrimSpace(cols.Eq(0).Text()),
			Modified: strings.TrimSpace(cols.Eq(1).Text()),
			Size:     strings.TrimSpace(cols.Eq(2).Text()),
		})
	})
	return entries, nil
}

// selectFileInfo picks the .jar (else .aar) row of c. Without a match the
// timestamp of the first dated row is used and the size stays empty.
func selectFileInfo(entries []listingEntry, c artifact.Coordinate) FileInfo {
	var info FileInfo
	for _, ext := range []string{"jar", "aar"} {
		want := c.FileName(ext)
		for _, e := range entries {
			if e.Name != want {
				continue
			}
			if t, ok := ParseTimestamp(e.Modified); ok {
				info.LastModified = &t
			}
			if e.Size != "-" {
				info.Size = e.Size
			}
			return info
		}
	}
	for _, e := range entries {
		if t, ok := ParseTimestamp(e.Modified); ok {
			info.LastModified = &t
			break
		}
	}
	return info
}

var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"Mon Jan 2 15:04:05 MST 2006",
	time.RFC1123,
	time.RFC3339,
	"02-Jan-2006 15:04",
}

// ParseTimestamp parses the timestamp formats seen in repository listings and
// Last-Modified headers.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeTimestamp rewrites a listing timestamp as "2006-01-02 15:04",
// e.g. "Tue Jan 30 19:41:11 UTC 2024" becomes "2024-01-30 19:41". Unparsable
// input is returned unchanged.
func NormalizeTimestamp(raw string) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format("2006-01-02 15:04")
}
