package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/store"
	"github.com/matzehuels/mavcrawl/pkg/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return store.NewMemory() })
}

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.NewFileStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		return s
	})
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad-key.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := s.MarkChild(ctx, artifact.MustParse("g:p:1"), artifact.MustParse("g:a:1")); err != nil {
		t.Fatal(err)
	}
	recs, err := s.Records(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("Records = %d, want 1", len(recs))
	}
}

func TestSaveSelfParent(t *testing.T) {
	s := store.NewMemory()
	c := artifact.MustParse("g:a:1")
	rec := &artifact.Record{Coordinate: c, Parent: &c, Status: artifact.StatusResolved}
	if err := store.Save(context.Background(), s, rec); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(context.Background(), c)
	if got.HasChild(c) {
		t.Error("record lists itself as a child")
	}
}

// failingUpsert fails the next Upsert and passes everything else through.
type failingUpsert struct {
	store.Store
	fail bool
}

func (f *failingUpsert) Upsert(ctx context.Context, rec *artifact.Record) error {
	if f.fail {
		f.fail = false
		return errors.New("write failed")
	}
	return f.Store.Upsert(ctx, rec)
}

func TestSaveRetriesAfterFailedUpsert(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := &failingUpsert{Store: mem, fail: true}
	parent := artifact.MustParse("g:p:1")
	child := artifact.MustParse("g:a:1")
	rec := &artifact.Record{Coordinate: child, Parent: &parent, Status: artifact.StatusResolved}

	if err := store.Save(ctx, s, rec); err == nil {
		t.Fatal("Save: want error from failed upsert")
	}
	// The child stays absent so a later crawl does not skip it.
	if ok, _ := mem.Exists(ctx, child); ok {
		t.Fatal("child stored despite failed upsert")
	}

	if err := store.Save(ctx, s, rec); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	got, err := mem.Get(ctx, parent)
	if err != nil {
		t.Fatalf("Get parent: %v", err)
	}
	if diff := cmp.Diff([]artifact.Coordinate{child}, got.Children); diff != "" {
		t.Errorf("parent children (-want +got):\n%s", diff)
	}
	if ok, _ := mem.Exists(ctx, child); !ok {
		t.Error("child missing after retry")
	}
}
