package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

const base = "https://repo.example.com/maven2/"

// fakeLister serves a directory tree described by slash-separated leaf paths
// relative to base.
type fakeLister struct {
	children map[string][]string
	calls    int
}

func newFakeLister(paths ...string) *fakeLister {
	f := &fakeLister{children: map[string][]string{}}
	seen := map[string]bool{}
	for _, p := range paths {
		parent := base
		for _, part := range strings.Split(p, "/") {
			dir := parent + part + "/"
			if !seen[dir] {
				seen[dir] = true
				f.children[parent] = append(f.children[parent], dir)
			}
			parent = dir
		}
	}
	return f
}

func (f *fakeLister) List(_ context.Context, u string) ([]string, error) {
	f.calls++
	if f.children[u] == nil {
		return []string{}, nil
	}
	return f.children[u], nil
}

func quiet(l Lister, opts Options) *Walker {
	opts.Logger = log.New(io.Discard)
	return New(l, opts)
}

func TestLatestVersion(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
		ok       bool
	}{
		{"semantic beats lexicographic", []string{"1.2.0", "1.10.0", "1.9.0"}, "1.10.0", true},
		{"fallback is all or nothing", []string{"1.0", "rc-weird", "2.0"}, "rc-weird", true},
		{"two part versions", []string{"1.9", "1.10"}, "1.10", true},
		{"prerelease sorts lower", []string{"2.0.0-rc1", "2.0.0"}, "2.0.0", true},
		{"single", []string{"4.1.100.Final"}, "4.1.100.Final", true},
		{"empty", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LatestVersion(tt.versions)
			if got != tt.want || ok != tt.ok {
				t.Errorf("LatestVersion(%v) = %q, %v; want %q, %v", tt.versions, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestListVersionsDecodes(t *testing.T) {
	f := &fakeLister{children: map[string][]string{
		base + "g/a/": {base + "g/a/1.0/", base + "g/a/2.0%2Bbuild/"},
	}}
	got := quiet(f, Options{}).ListVersions(context.Background(), base+"g/a/")
	if diff := cmp.Diff([]string{"1.0", "2.0+build"}, got); diff != "" {
		t.Errorf("ListVersions mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkGroupNested(t *testing.T) {
	f := newFakeLister(
		"org/apache/commons/commons-lang3/3.12.0",
		"org/apache/commons/commons-lang3/3.14.0",
		"org/apache/commons/commons-io/2.15.1",
		"org/apache/ant/ant/1.10.14",
	)
	got := quiet(f, Options{}).WalkGroup(context.Background(), base+"org/", 0)
	sort.Strings(got)
	want := []string{
		base + "org/apache/ant/ant/",
		base + "org/apache/commons/commons-io/",
		base + "org/apache/commons/commons-lang3/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WalkGroup mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkGroupVersionDirectory(t *testing.T) {
	f := newFakeLister("g/a/1.0")
	if got := quiet(f, Options{}).WalkGroup(context.Background(), base+"g/a/1.0/", 0); len(got) != 0 {
		t.Errorf("WalkGroup(version dir) = %v, want none", got)
	}
}

func TestWalkGroupDepthBound(t *testing.T) {
	// Eight nested group levels, then an artifact and a version.
	parts := make([]string, 0, 10)
	for i := range 8 {
		parts = append(parts, fmt.Sprintf("l%d", i))
	}
	parts = append(parts, "artifact", "1.0")
	f := newFakeLister(strings.Join(parts, "/"))

	got := quiet(f, Options{}).WalkGroup(context.Background(), base+"l0/", 0)
	if len(got) != 0 {
		t.Errorf("WalkGroup = %v, want branch abandoned", got)
	}

	// The same tree is found with a larger bound.
	got = quiet(f, Options{MaxDepth: 10}).WalkGroup(context.Background(), base+"l0/", 0)
	want := base + strings.Join(parts[:9], "/") + "/"
	if diff := cmp.Diff([]string{want}, got); diff != "" {
		t.Errorf("WalkGroup(MaxDepth 10) mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidates(t *testing.T) {
	f := newFakeLister(
		"com/example/lib/1.2.0",
		"com/example/lib/1.10.0",
		"com/example/lib/1.9.0",
		"com/example/tool/0.1",
		"%23internal/x/y/1",
		"_staging/x/y/1",
		".m2e/x/y/1",
	)
	var got []string
	err := quiet(f, Options{}).Candidates(context.Background(), base, func(c artifact.Coordinate) error {
		got = append(got, c.String())
		return nil
	})
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	sort.Strings(got)
	want := []string{"com.example:lib:1.10.0", "com.example:tool:0.1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidatesSample(t *testing.T) {
	var paths []string
	for i := range 20 {
		paths = append(paths, fmt.Sprintf("g/a%02d/1.0", i))
	}
	f := newFakeLister(paths...)

	collect := func(seed uint64) []string {
		var got []string
		w := quiet(f, Options{SampleSize: 5, Seed: seed})
		if err := w.Candidates(context.Background(), base, func(c artifact.Coordinate) error {
			got = append(got, c.Artifact)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		return got
	}

	a, b := collect(42), collect(42)
	if len(a) != 5 {
		t.Fatalf("sampled %d artifacts, want 5", len(a))
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different samples (-first +second):\n%s", diff)
	}
}

func TestCandidatesStopsOnEmitError(t *testing.T) {
	f := newFakeLister("g/a/1.0", "g/b/1.0", "h/c/1.0")
	stop := errors.New("stop")
	n := 0
	err := quiet(f, Options{}).Candidates(context.Background(), base, func(artifact.Coordinate) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("err = %v after %d emits, want stop after 1", err, n)
	}
}

func TestReserved(t *testing.T) {
	for _, g := range []string{"%23foo", "#foo", "_bar", "..", ".m2e"} {
		if !Reserved(g) {
			t.Errorf("Reserved(%q) = false", g)
		}
	}
	for _, g := range []string{"org.apache", "io_grpc"} {
		if Reserved(g) {
			t.Errorf("Reserved(%q) = true", g)
		}
	}
}
