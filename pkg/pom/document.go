package pom

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/matzehuels/mavcrawl/pkg/errors"
)

// Document is the subset of a Maven POM the crawler reads.
//
// Element names match regardless of XML namespace, so both bare and
// xmlns="http://maven.apache.org/POM/4.0.0" documents decode.
type Document struct {
	XMLName      xml.Name     `xml:"project"`
	GroupID      string       `xml:"groupId"`
	ArtifactID   string       `xml:"artifactId"`
	Version      string       `xml:"version"`
	Packaging    string       `xml:"packaging"`
	Name         string       `xml:"name"`
	Description  *string      `xml:"description"`
	URL          string       `xml:"url"`
	Parent       *Parent      `xml:"parent"`
	SCM          *SCM         `xml:"scm"`
	Modules      []string     `xml:"modules>module"`
	Properties   PropertyList `xml:"properties"`
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// Parent is the <parent> block. Absent elements decode as nil.
type Parent struct {
	GroupID      *string `xml:"groupId"`
	ArtifactID   *string `xml:"artifactId"`
	Version      *string `xml:"version"`
	RelativePath string  `xml:"relativePath"`
}

// SCM is the <scm> block.
type SCM struct {
	URL        *string `xml:"url"`
	Connection string  `xml:"connection"`
}

// Dependency is a declared <dependency>. The crawler does not use declared
// dependencies for the graph (the probe does), but they are kept for display.
type Dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
}

// Property is one <properties> entry.
type Property struct {
	Name  string
	Value string
}

// PropertyList keeps <properties> entries in document order.
type PropertyList []Property

// UnmarshalXML decodes arbitrary child elements of <properties> as
// name/value pairs.
func (pl *PropertyList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			*pl = append(*pl, Property{Name: t.Name.Local, Value: strings.TrimSpace(v)})
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// Parse decodes a POM. Failures carry [errors.ErrCodeParse].
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "empty POM document")
	}
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse POM")
	}
	return &doc, nil
}

// field returns the document's own value for a ${project.X} reference.
// groupId and version fall back to the parent block as Maven inherits them.
func (d *Document) field(name string) (string, bool) {
	switch name {
	case "groupId":
		if d.GroupID == "" && d.Parent != nil && d.Parent.GroupID != nil {
			return *d.Parent.GroupID, true
		}
		return d.GroupID, d.GroupID != ""
	case "version":
		if d.Version == "" && d.Parent != nil && d.Parent.Version != nil {
			return *d.Parent.Version, true
		}
		return d.Version, d.Version != ""
	case "artifactId":
		return d.ArtifactID, d.ArtifactID != ""
	case "packaging":
		return d.Packaging, d.Packaging != ""
	case "name":
		return d.Name, d.Name != ""
	case "description":
		if d.Description == nil {
			return "", false
		}
		return *d.Description, true
	case "url":
		return d.URL, d.URL != ""
	}
	return "", false
}

// parentField returns a ${project.parent.X} value.
func (d *Document) parentField(name string) (string, bool) {
	if d == nil || d.Parent == nil {
		return "", false
	}
	var p *string
	switch name {
	case "groupId":
		p = d.Parent.GroupID
	case "artifactId":
		p = d.Parent.ArtifactID
	case "version":
		p = d.Parent.Version
	case "relativePath":
		if d.Parent.RelativePath == "" {
			return "", false
		}
		return d.Parent.RelativePath, true
	}
	if p == nil {
		return "", false
	}
	return *p, true
}
