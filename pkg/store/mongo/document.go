package mongo

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
)

// document is the stored shape of an [artifact.Record].
type document struct {
	ID            string      `bson:"_id"`
	LastModified  listingTime `bson:"last_modified,omitempty"`
	SizeBytes     string      `bson:"jar_size,omitempty"`
	Description   *string     `bson:"description,omitempty"`
	SourceCodeURL string      `bson:"source_code_url,omitempty"`
	Parent        string      `bson:"parent_module,omitempty"`
	Children      []string    `bson:"child_modules,omitempty"`
	Dependencies  []string    `bson:"transitive_dependencies,omitempty"`
	Status        string      `bson:"status,omitempty"`
	CrawlRun      string      `bson:"crawl_run,omitempty"`
	UpdatedAt     time.Time   `bson:"updated_at,omitempty"`
}

// listingTime decodes last_modified as a BSON datetime or as the listing
// string the earlier crawler stored ("2023-01-05 10:20"). "Unknown", null and
// other unparsable strings decode to nil.
type listingTime struct {
	Time *time.Time
}

func (lt *listingTime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	lt.Time = nil
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		return nil
	case bson.TypeDateTime:
		ms, ok := raw.DateTimeOK()
		if !ok {
			return errors.New("last_modified: malformed datetime")
		}
		v := time.UnixMilli(ms).UTC()
		lt.Time = &v
		return nil
	case bson.TypeString:
		s, ok := raw.StringValueOK()
		if !ok {
			return errors.New("last_modified: malformed string")
		}
		if v, ok := maven.ParseTimestamp(s); ok {
			lt.Time = &v
		}
		return nil
	}
	return fmt.Errorf("last_modified: cannot decode BSON %s", t)
}

// status reports the record status. Documents without a status field come
// from the earlier crawler, which marked placeholders by a null description.
func (d document) status() artifact.Status {
	if d.Status != "" {
		return artifact.Status(d.Status)
	}
	if d.Description == nil {
		return artifact.StatusPlaceholder
	}
	return artifact.StatusResolved
}

// statusFilter selects documents with the given status, including documents
// without a status field that [document.status] maps to it.
func statusFilter(status artifact.Status) bson.M {
	legacy := bson.M{"status": bson.M{"$exists": false}}
	switch status {
	case "":
		return bson.M{}
	case artifact.StatusPlaceholder:
		legacy["description"] = nil
	case artifact.StatusResolved:
		legacy["description"] = bson.M{"$ne": nil}
	default:
		return bson.M{"status": string(status)}
	}
	return bson.M{"$or": bson.A{bson.M{"status": string(status)}, legacy}}
}

func (d document) record() (*artifact.Record, error) {
	c, err := artifact.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	rec := &artifact.Record{
		Coordinate:    c,
		LastModified:  d.LastModified.Time,
		SizeBytes:     d.SizeBytes,
		SourceCodeURL: d.SourceCodeURL,
		Status:        d.status(),
		CrawlRun:      d.CrawlRun,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Description != nil {
		rec.Description = *d.Description
	}
	if p, err := artifact.Parse(d.Parent); err == nil {
		rec.Parent = &p
	}
	for _, s := range d.Children {
		if cc, err := artifact.Parse(s); err == nil {
			rec.Children = append(rec.Children, cc)
		}
	}
	for _, s := range d.Dependencies {
		if dep, err := artifact.ParseDependency(s); err == nil {
			rec.Dependencies = append(rec.Dependencies, dep)
		}
	}
	return rec, nil
}

func keys(cs []artifact.Coordinate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

// resolvedUpdate replaces every metadata field and unions the children.
func resolvedUpdate(rec *artifact.Record) bson.M {
	deps := make([]string, len(rec.Dependencies))
	for i, d := range rec.Dependencies {
		deps[i] = d.String()
	}
	set := bson.M{
		"last_modified":           rec.LastModified,
		"jar_size":                rec.SizeBytes,
		"description":             rec.Description,
		"source_code_url":         rec.SourceCodeURL,
		"transitive_dependencies": deps,
		"status":                  string(artifact.StatusResolved),
		"crawl_run":               rec.CrawlRun,
		"updated_at":              updatedAt(rec),
	}
	if rec.Parent != nil {
		set["parent_module"] = rec.Parent.String()
	} else {
		set["parent_module"] = ""
	}
	return bson.M{
		"$set":      set,
		"$addToSet": bson.M{"child_modules": bson.M{"$each": keys(rec.Children)}},
	}
}

// placeholderUpdate creates a placeholder on insert and otherwise only adds
// children.
func placeholderUpdate(children ...artifact.Coordinate) bson.M {
	return bson.M{
		"$setOnInsert": bson.M{
			"status":     string(artifact.StatusPlaceholder),
			"updated_at": time.Now().UTC(),
		},
		"$addToSet": bson.M{"child_modules": bson.M{"$each": keys(children)}},
	}
}

func updatedAt(rec *artifact.Record) time.Time {
	if rec.UpdatedAt.IsZero() {
		return time.Now().UTC()
	}
	return rec.UpdatedAt
}
