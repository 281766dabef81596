// Package artifact defines the data model shared by the crawl engine: artifact
// coordinates, dependency edges and the per-coordinate graph record.
//
// # Coordinates
//
// A [Coordinate] is the (group, artifact, version) triple identifying a
// published artifact. It is a comparable value type: two coordinates are
// equal iff all three fields match exactly. No case folding or whitespace
// trimming is applied anywhere.
//
//	c, err := artifact.Parse("com.google.guava:guava:32.1.3-jre")
//	key := c.String() // "com.google.guava:guava:32.1.3-jre"
//
// # Records
//
// A [Record] is what the graph store keeps per coordinate. Records start life
// either as a [StatusResolved] record written by the crawler, or as a
// [StatusPlaceholder] record created only to anchor a parent link before the
// parent itself has been crawled.
package artifact

import (
	"strings"

	"github.com/matzehuels/mavcrawl/pkg/errors"
)

// Unknown is the sentinel for values that could not be determined.
const Unknown = "Unknown"

// Coordinate identifies a published artifact.
//
// The zero value is not a valid coordinate; use [Parse] or [New].
type Coordinate struct {
	Group    string `json:"group" bson:"group"`
	Artifact string `json:"artifact" bson:"artifact"`
	Version  string `json:"version" bson:"version"`
}

// New validates the three parts and returns a coordinate.
func New(group, artifactID, version string) (Coordinate, error) {
	c := Coordinate{Group: group, Artifact: artifactID, Version: version}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Parse parses a "group:artifact:version" key. Exactly three non-empty
// colon-separated fields are required.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid coordinate %q (expected group:artifact:version)", s)
	}
	return New(parts[0], parts[1], parts[2])
}

// MustParse is like [Parse] but panics on error. Intended for tests and constants.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the store key "group:artifact:version".
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// IsZero reports whether c is the zero coordinate.
func (c Coordinate) IsZero() bool {
	return c == Coordinate{}
}

// IsUnknown reports whether any part is the [Unknown] sentinel or still
// carries an unsubstituted ${...} placeholder.
func (c Coordinate) IsUnknown() bool {
	for _, p := range []string{c.Group, c.Artifact, c.Version} {
		if p == "" || p == Unknown || strings.Contains(p, "${") {
			return true
		}
	}
	return false
}

// Validate checks every part for characters that are unsafe in repository
// paths and build descriptors.
func (c Coordinate) Validate() error {
	if err := errors.ValidateCoordinatePart("groupId", c.Group); err != nil {
		return err
	}
	if err := errors.ValidateCoordinatePart("artifactId", c.Artifact); err != nil {
		return err
	}
	return errors.ValidateCoordinatePart("version", c.Version)
}

// GroupPath returns the group as a repository path ("com.google" -> "com/google").
func (c Coordinate) GroupPath() string {
	return strings.ReplaceAll(c.Group, ".", "/")
}

// Path returns the version directory path relative to a repository root,
// with a trailing slash: "com/google/guava/guava/32.1.3-jre/".
func (c Coordinate) Path() string {
	return c.GroupPath() + "/" + c.Artifact + "/" + c.Version + "/"
}

// FileName returns the conventional file name for the given extension,
// e.g. "guava-32.1.3-jre.pom".
func (c Coordinate) FileName(ext string) string {
	return c.Artifact + "-" + c.Version + "." + ext
}
