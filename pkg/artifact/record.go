package artifact

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/mavcrawl/pkg/errors"
)

// Status distinguishes fully crawled records from link anchors.
type Status string

const (
	// StatusPlaceholder marks a record that exists only to anchor a parent link.
	StatusPlaceholder Status = "placeholder"
	// StatusResolved marks a record whose descriptor was fetched and probed.
	StatusResolved Status = "resolved"
)

// Dependency is one transitive dependency edge with its build scope.
type Dependency struct {
	Coordinate Coordinate `json:"coordinate" bson:"coordinate"`
	Scope      string     `json:"scope" bson:"scope"`
}

// String returns "group:artifact:version:scope".
func (d Dependency) String() string {
	return d.Coordinate.String() + ":" + d.Scope
}

// ParseDependency parses "group:artifact:version:scope".
func ParseDependency(s string) (Dependency, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Dependency{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid dependency %q (expected group:artifact:version:scope)", s)
	}
	c, err := Parse(s[:i])
	if err != nil {
		return Dependency{}, err
	}
	if s[i+1:] == "" {
		return Dependency{}, errors.New(errors.ErrCodeInvalidCoordinate, "dependency %q has empty scope", s)
	}
	return Dependency{Coordinate: c, Scope: s[i+1:]}, nil
}

// Record is the graph store entry for one coordinate.
//
// Optional metadata uses the zero value for "absent": nil pointers and empty
// strings. Children has set semantics; its order carries no meaning.
type Record struct {
	Coordinate    Coordinate   `json:"coordinate"`
	LastModified  *time.Time   `json:"last_modified,omitempty"`
	SizeBytes     string       `json:"size_bytes,omitempty"`
	Description   string       `json:"description,omitempty"`
	SourceCodeURL string       `json:"source_code_url,omitempty"`
	Parent        *Coordinate  `json:"parent,omitempty"`
	Children      []Coordinate `json:"children,omitempty"`
	Dependencies  []Dependency `json:"dependencies,omitempty"`
	Status        Status       `json:"status"`
	CrawlRun      string       `json:"crawl_run,omitempty"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewPlaceholder returns a placeholder record whose child set is exactly child.
func NewPlaceholder(c, child Coordinate) *Record {
	return &Record{
		Coordinate: c,
		Children:   []Coordinate{child},
		Status:     StatusPlaceholder,
		UpdatedAt:  time.Now().UTC(),
	}
}

// IsPlaceholder reports whether the record only anchors a parent link.
func (r *Record) IsPlaceholder() bool {
	return r.Status == StatusPlaceholder
}

// HasChild reports whether c is in the child set.
func (r *Record) HasChild(c Coordinate) bool {
	return slices.Contains(r.Children, c)
}

// AddChildren merges cs into the child set, skipping duplicates.
// It reports how many coordinates were actually added.
func (r *Record) AddChildren(cs ...Coordinate) int {
	added := 0
	for _, c := range cs {
		if !r.HasChild(c) {
			r.Children = append(r.Children, c)
			added++
		}
	}
	return added
}

// Merge applies an upsert of next onto r: metadata fields are replaced by
// next's values, the child set is unioned. The child set never shrinks.
func (r *Record) Merge(next *Record) {
	r.LastModified = next.LastModified
	r.SizeBytes = next.SizeBytes
	r.Description = next.Description
	r.SourceCodeURL = next.SourceCodeURL
	r.Parent = next.Parent
	r.Dependencies = slices.Clone(next.Dependencies)
	if next.Status != "" {
		r.Status = next.Status
	}
	if next.CrawlRun != "" {
		r.CrawlRun = next.CrawlRun
	}
	r.UpdatedAt = next.UpdatedAt
	r.AddChildren(next.Children...)
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := *r
	if r.LastModified != nil {
		t := *r.LastModified
		out.LastModified = &t
	}
	if r.Parent != nil {
		p := *r.Parent
		out.Parent = &p
	}
	out.Children = slices.Clone(r.Children)
	out.Dependencies = slices.Clone(r.Dependencies)
	return &out
}

// SortChildren orders the child set by key. Useful for stable output only.
func (r *Record) SortChildren() {
	slices.SortFunc(r.Children, func(a, b Coordinate) int {
		return strings.Compare(a.String(), b.String())
	})
}
