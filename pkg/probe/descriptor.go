package probe

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// Descriptor is the synthetic single-dependency project handed to the
// dependency-tree tool.
type Descriptor struct {
	XMLName      xml.Name         `xml:"project"`
	ModelVersion string           `xml:"modelVersion"`
	GroupID      string           `xml:"groupId"`
	ArtifactID   string           `xml:"artifactId"`
	Version      string           `xml:"version"`
	Repositories []descriptorRepo `xml:"repositories>repository,omitempty"`
	Dependencies []descriptorDep  `xml:"dependencies>dependency"`
}

type descriptorRepo struct {
	ID  string `xml:"id"`
	URL string `xml:"url"`
}

type descriptorDep struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// NewDescriptor names c as the only dependency. repos are extra remote
// repositories the tool may resolve from.
func NewDescriptor(c artifact.Coordinate, repos ...string) *Descriptor {
	d := &Descriptor{
		ModelVersion: "4.0.0",
		GroupID:      "temp-group",
		ArtifactID:   "temp-artifact",
		Version:      "1.0",
		Dependencies: []descriptorDep{{GroupID: c.Group, ArtifactID: c.Artifact, Version: c.Version}},
	}
	for i, u := range repos {
		d.Repositories = append(d.Repositories, descriptorRepo{ID: fmt.Sprintf("extra-%d", i), URL: u})
	}
	return d
}

// Marshal renders the descriptor as an indented XML document.
func (d *Descriptor) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// writeTemp writes d to pom.xml inside a new private directory. The returned
// cleanup removes the directory and must always be called.
func (d *Descriptor) writeTemp(parent string) (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp(parent, "mavcrawl-probe-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	data, err := d.Marshal()
	if err != nil {
		cleanup()
		return "", func() {}, err
	}
	path = filepath.Join(dir, "pom.xml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return path, cleanup, nil
}
