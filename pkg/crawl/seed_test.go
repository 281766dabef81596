package crawl

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/integrations/maven"
)

type fakeSearcher struct {
	total  int
	starts []int
}

func (f *fakeSearcher) Search(_ context.Context, start, rows int) (*maven.SearchPage, error) {
	f.starts = append(f.starts, start)
	page := &maven.SearchPage{NumFound: f.total, Start: start}
	for i := start; i < start+rows && i < f.total; i++ {
		page.Coordinates = append(page.Coordinates, artifact.Coordinate{Group: "g", Artifact: "a" + string(rune('a'+i)), Version: "1"})
		page.Docs++
	}
	return page, nil
}

func collect(t *testing.T, fn func(Emit) error) []string {
	t.Helper()
	var got []string
	if err := fn(func(c artifact.Coordinate) error {
		got = append(got, c.String())
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	return got
}

func TestFromSearchPaging(t *testing.T) {
	s := &fakeSearcher{total: 5}
	opts := SearchOptions{Rows: 2, Pause: time.Millisecond, Logger: log.New(io.Discard)}
	got := collect(t, func(emit Emit) error { return FromSearch(context.Background(), s, opts, emit) })
	if len(got) != 5 {
		t.Errorf("emitted %d, want 5", len(got))
	}
	if diff := cmp.Diff([]int{0, 2, 4, 6}, s.starts); diff != "" {
		t.Errorf("page starts mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSearchLimit(t *testing.T) {
	s := &fakeSearcher{total: 50}
	opts := SearchOptions{Rows: 10, Limit: 3, Pause: time.Millisecond, Logger: log.New(io.Discard)}
	got := collect(t, func(emit Emit) error { return FromSearch(context.Background(), s, opts, emit) })
	if len(got) != 3 || len(s.starts) != 1 {
		t.Errorf("emitted %d over %d pages, want 3 over 1", len(got), len(s.starts))
	}
}

type fakeIndexer map[string][]maven.IndexEntry

func (f fakeIndexer) Groups(context.Context) ([]string, error) {
	return []string{"androidx.core", "broken", "com.android.tools", ".meta"}, nil
}

func (f fakeIndexer) GroupIndex(_ context.Context, g string) ([]maven.IndexEntry, error) {
	e, ok := f[g]
	if !ok {
		return nil, errors.New("404")
	}
	return e, nil
}

func TestFromIndex(t *testing.T) {
	idx := fakeIndexer{
		"androidx.core": {
			{Group: "androidx.core", Artifact: "core", Versions: []string{"1.9.0", "1.10.0", "1.2.0"}},
			{Group: "androidx.core", Artifact: "empty"},
			{Group: "_staging", Artifact: "core", Versions: []string{"1.0.0"}},
		},
		".meta": {
			{Group: "com.example", Artifact: "index", Versions: []string{"1.0.0"}},
		},
		"com.android.tools": {
			{Group: "com.android.tools", Artifact: "r8", Versions: []string{"8.1.56"}},
		},
	}
	got := collect(t, func(emit Emit) error { return FromIndex(context.Background(), idx, log.New(io.Discard), emit) })
	want := []string{"androidx.core:core:1.10.0", "com.android.tools:r8:8.1.56"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromIndex mismatch (-want +got):\n%s", diff)
	}
}

func TestSendHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Send(ctx, make(chan artifact.Coordinate))(artifact.MustParse("g:a:1"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Send = %v, want context.Canceled", err)
	}
}
