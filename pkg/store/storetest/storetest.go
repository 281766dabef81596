// Package storetest is a conformance suite for [store.Store] backends.
package storetest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/store"
)

var (
	child  = artifact.MustParse("g:a:1.0")
	parent = artifact.MustParse("g:p:1.0")
)

// ignoreVolatile skips fields a backend may round or restamp.
var ignoreVolatile = cmpopts.IgnoreFields(artifact.Record{}, "UpdatedAt")

func sortedChildren(r *artifact.Record) []string {
	out := make([]string, len(r.Children))
	for i, c := range r.Children {
		out[i] = c.String()
	}
	slices.Sort(out)
	return out
}

func resolved(c artifact.Coordinate) *artifact.Record {
	lm := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	return &artifact.Record{
		Coordinate:    c,
		LastModified:  &lm,
		SizeBytes:     "2048",
		Description:   "A library",
		SourceCodeURL: "https://example.com/src",
		Dependencies: []artifact.Dependency{
			{Coordinate: artifact.MustParse("x:y:2"), Scope: "compile"},
			{Coordinate: artifact.MustParse("x:z:3"), Scope: "runtime"},
		},
		Status:    artifact.StatusResolved,
		UpdatedAt: time.Now().UTC(),
	}
}

// Run exercises the store contract against stores created by newStore.
// Each subtest receives a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(ctx, child); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Get = %v, want ErrNotFound", err)
		}
		if ok, err := s.Exists(ctx, child); err != nil || ok {
			t.Errorf("Exists = %v, %v; want false", ok, err)
		}
	})

	t.Run("UpsertRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := resolved(child)
		if err := s.Upsert(ctx, want); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, child)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got, ignoreVolatile, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("PlaceholderAnchoring", func(t *testing.T) {
		s := newStore(t)
		rec := resolved(child)
		rec.Parent = &parent
		if err := store.Save(ctx, s, rec); err != nil {
			t.Fatal(err)
		}
		p, err := s.Get(ctx, parent)
		if err != nil {
			t.Fatalf("parent record: %v", err)
		}
		if !p.IsPlaceholder() {
			t.Errorf("parent status = %q, want placeholder", p.Status)
		}
		if diff := cmp.Diff([]string{"g:a:1.0"}, sortedChildren(p)); diff != "" {
			t.Errorf("parent children mismatch (-want +got):\n%s", diff)
		}
		placeholders, err := store.Placeholders(ctx, s)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]artifact.Coordinate{parent}, placeholders); diff != "" {
			t.Errorf("Placeholders mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("MarkChildExistingParent", func(t *testing.T) {
		s := newStore(t)
		if err := s.Upsert(ctx, resolved(parent)); err != nil {
			t.Fatal(err)
		}
		created, err := s.MarkChild(ctx, parent, child)
		if err != nil || created {
			t.Fatalf("MarkChild = %v, %v; want false, nil", created, err)
		}
		if _, err := s.MarkChild(ctx, parent, child); err != nil {
			t.Fatal(err)
		}
		p, _ := s.Get(ctx, parent)
		if p.Status != artifact.StatusResolved {
			t.Errorf("status = %q, want resolved", p.Status)
		}
		if diff := cmp.Diff([]string{"g:a:1.0"}, sortedChildren(p)); diff != "" {
			t.Errorf("children mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ChildrenUnion", func(t *testing.T) {
		s := newStore(t)
		r1 := resolved(parent)
		r1.Children = []artifact.Coordinate{artifact.MustParse("g:m1:1.0")}
		r2 := resolved(parent)
		r2.Description = "updated"
		r2.Children = []artifact.Coordinate{artifact.MustParse("g:m1:1.0"), artifact.MustParse("g:m2:1.0")}
		for _, r := range []*artifact.Record{r1, r2} {
			if err := s.Upsert(ctx, r); err != nil {
				t.Fatal(err)
			}
		}
		got, _ := s.Get(ctx, parent)
		if got.Description != "updated" {
			t.Errorf("Description = %q, want replaced", got.Description)
		}
		if diff := cmp.Diff([]string{"g:m1:1.0", "g:m2:1.0"}, sortedChildren(got)); diff != "" {
			t.Errorf("children mismatch (-want +got):\n%s", diff)
		}

		// A later upsert without children never shrinks the set.
		if err := s.Upsert(ctx, resolved(parent)); err != nil {
			t.Fatal(err)
		}
		got, _ = s.Get(ctx, parent)
		if len(got.Children) != 2 {
			t.Errorf("children shrank to %v", got.Children)
		}
	})

	t.Run("PlaceholderUpgrade", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.MarkChild(ctx, parent, child); err != nil {
			t.Fatal(err)
		}
		if err := s.Upsert(ctx, resolved(parent)); err != nil {
			t.Fatal(err)
		}
		got, _ := s.Get(ctx, parent)
		if got.IsPlaceholder() || got.Description != "A library" {
			t.Errorf("got %+v, want resolved record", got)
		}
		if !got.HasChild(child) {
			t.Errorf("placeholder child lost on upgrade: %v", got.Children)
		}
	})

	t.Run("PlaceholderUpsertKeepsResolved", func(t *testing.T) {
		s := newStore(t)
		if err := s.Upsert(ctx, resolved(parent)); err != nil {
			t.Fatal(err)
		}
		if err := s.Upsert(ctx, artifact.NewPlaceholder(parent, child)); err != nil {
			t.Fatal(err)
		}
		got, _ := s.Get(ctx, parent)
		if got.IsPlaceholder() || got.Description == "" {
			t.Errorf("placeholder upsert erased metadata: %+v", got)
		}
		if !got.HasChild(child) {
			t.Errorf("children = %v, want %s added", got.Children, child)
		}
	})

	t.Run("RecordsFilter", func(t *testing.T) {
		s := newStore(t)
		for _, c := range []string{"b:b:1", "a:a:1"} {
			if err := s.Upsert(ctx, resolved(artifact.MustParse(c))); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := s.MarkChild(ctx, parent, child); err != nil {
			t.Fatal(err)
		}
		all, err := s.Records(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		var keys []string
		for _, r := range all {
			keys = append(keys, r.Coordinate.String())
		}
		if diff := cmp.Diff([]string{"a:a:1", "b:b:1", "g:p:1.0"}, keys); diff != "" {
			t.Errorf("Records order mismatch (-want +got):\n%s", diff)
		}
		res, _ := s.Records(ctx, artifact.StatusResolved)
		if len(res) != 2 {
			t.Errorf("resolved records = %d, want 2", len(res))
		}
	})

	t.Run("SaveIgnoresUnknownParent", func(t *testing.T) {
		s := newStore(t)
		rec := resolved(child)
		rec.Parent = &artifact.Coordinate{Group: "g", Artifact: artifact.Unknown, Version: "1"}
		if err := store.Save(ctx, s, rec); err != nil {
			t.Fatal(err)
		}
		all, _ := s.Records(ctx, "")
		if len(all) != 1 || !strings.HasPrefix(all[0].Coordinate.String(), "g:a") {
			t.Errorf("records = %v, want only the child", all)
		}
	})
}
