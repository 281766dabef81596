package maven

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/errors"
)

// FileInfoMode selects how last-modified and size are obtained.
type FileInfoMode string

const (
	// FileInfoListing parses the version directory listing.
	FileInfoListing FileInfoMode = "listing"
	// FileInfoHead issues HEAD requests for the .aar and .jar files.
	FileInfoHead FileInfoMode = "head"
)

// Repository describes one Maven-layout binary repository.
type Repository struct {
	Name string `toml:"name"`
	// BaseURL serves artifact files (POMs, jars).
	BaseURL string `toml:"base_url"`
	// BrowseURL serves HTML directory listings. Defaults to BaseURL.
	BrowseURL string `toml:"browse_url"`
	// SearchURL is a Solr select endpoint for seeding. Optional.
	SearchURL string `toml:"search_url"`
	// IndexURL is a master-index.xml for repositories without listings. Optional.
	IndexURL string `toml:"index_url"`
	// FileInfo selects how file metadata is fetched.
	FileInfo FileInfoMode `toml:"file_info"`
	// ProbeRepositories are added to the synthetic probe descriptor so the
	// dependency tool can resolve artifacts that only live here.
	ProbeRepositories []string `toml:"probe_repositories"`
}

// Presets for well-known repositories.
var (
	Central = Repository{
		Name:      "central",
		BaseURL:   "https://repo.maven.apache.org/maven2/",
		SearchURL: "https://search.maven.org/solrsearch/select",
		FileInfo:  FileInfoListing,
	}
	Cloudera = Repository{
		Name:              "cloudera",
		BaseURL:           "https://repository.cloudera.com/repository/public/",
		BrowseURL:         "https://repository.cloudera.com/service/rest/repository/browse/public/",
		FileInfo:          FileInfoListing,
		ProbeRepositories: []string{"https://repository.cloudera.com/artifactory/public/"},
	}
	Google = Repository{
		Name:              "google",
		BaseURL:           "https://dl.google.com/dl/android/maven2/",
		IndexURL:          "https://maven.google.com/master-index.xml",
		FileInfo:          FileInfoHead,
		ProbeRepositories: []string{"https://maven.google.com/"},
	}
)

// Preset returns the named preset.
func Preset(name string) (Repository, bool) {
	switch strings.ToLower(name) {
	case "central":
		return Central, true
	case "cloudera":
		return Cloudera, true
	case "google":
		return Google, true
	}
	return Repository{}, false
}

// PresetNames lists the preset names.
func PresetNames() []string { return []string{"central", "cloudera", "google"} }

// WithDefaults fills empty fields and normalizes trailing slashes.
func (r Repository) WithDefaults() Repository {
	r.BaseURL = withSlash(r.BaseURL)
	if r.BrowseURL == "" {
		r.BrowseURL = r.BaseURL
	}
	r.BrowseURL = withSlash(r.BrowseURL)
	if r.FileInfo == "" {
		r.FileInfo = FileInfoListing
	}
	r.ProbeRepositories = slices.Clone(r.ProbeRepositories)
	return r
}

// Validate checks the URLs and mode.
func (r Repository) Validate() error {
	if err := errors.ValidateURL(r.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "repository %q base_url", r.Name)
	}
	for _, u := range []string{r.BrowseURL, r.SearchURL, r.IndexURL} {
		if u == "" {
			continue
		}
		if err := errors.ValidateURL(u); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "repository %q", r.Name)
		}
	}
	switch r.FileInfo {
	case "", FileInfoListing, FileInfoHead:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "repository %q: unknown file_info %q", r.Name, r.FileInfo)
	}
	return nil
}

// FileURL returns the URL of c's file with the given extension.
func (r Repository) FileURL(c artifact.Coordinate, ext string) string {
	return r.BaseURL + c.Path() + c.FileName(ext)
}

// POMURL returns the URL of c's POM.
func (r Repository) POMURL(c artifact.Coordinate) string {
	return r.FileURL(c, "pom")
}

// DirectoryURL returns the listing URL of c's version directory.
func (r Repository) DirectoryURL(c artifact.Coordinate) string {
	return r.BrowseURL + c.Path()
}

// GroupURL returns the listing URL of a group directory.
func (r Repository) GroupURL(group string) string {
	return r.BrowseURL + strings.ReplaceAll(group, ".", "/") + "/"
}

// String implements fmt.Stringer.
func (r Repository) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.BaseURL)
}

func withSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
