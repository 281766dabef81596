package maven

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// IndexEntry is one artifact of a group-index.xml.
type IndexEntry struct {
	Group    string
	Artifact string
	Versions []string
}

// Groups reads the repository's master-index.xml and returns its group ids.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	if c.repo.IndexURL == "" {
		return nil, fmt.Errorf("repository %s has no index", c.repo.Name)
	}
	data, err := c.Cached(ctx, "index", c.repo.IndexURL, c.refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, c.repo.IndexURL)
	})
	if err != nil {
		return nil, err
	}
	var groups []string
	err = walkChildren(data, func(el xml.StartElement) {
		groups = append(groups, el.Name.Local)
	})
	return groups, err
}

// GroupIndex reads <group>/group-index.xml, relative to the index URL.
func (c *Client) GroupIndex(ctx context.Context, group string) ([]IndexEntry, error) {
	base := c.repo.IndexURL[:strings.LastIndex(c.repo.IndexURL, "/")+1]
	u := base + strings.ReplaceAll(group, ".", "/") + "/group-index.xml"
	data, err := c.Cached(ctx, "index", u, c.refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	var entries []IndexEntry
	err = walkChildren(data, func(el xml.StartElement) {
		e := IndexEntry{Group: group, Artifact: el.Name.Local}
		for _, a := range el.Attr {
			if a.Name.Local != "versions" {
				continue
			}
			for _, v := range strings.Split(a.Value, ",") {
				if v = strings.TrimSpace(v); v != "" {
					e.Versions = append(e.Versions, v)
				}
			}
		}
		entries = append(entries, e)
	})
	return entries, err
}

// walkChildren calls fn for each direct child element of the root.
func walkChildren(data []byte, fn func(xml.StartElement)) error {
	d := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				fn(t)
			}
		case xml.EndElement:
			depth--
		}
	}
}
