package probe

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	mcerrors "github.com/matzehuels/mavcrawl/pkg/errors"
)

const guavaTree = `[INFO] Scanning for projects...
[INFO] --- dependency:3.6.1:tree (default-cli) @ temp-artifact ---
[INFO] temp-group:temp-artifact:jar:1.0
[INFO] \- com.google.guava:guava:jar:32.1.3-jre:compile
[INFO]    +- com.google.guava:failureaccess:jar:1.0.1:compile
[INFO]    +- com.google.guava:listenablefuture:jar:9999.0-empty-to-avoid-conflict-with-guava:compile
[INFO]    +- com.google.code.findbugs:jsr305:jar:3.0.2:compile
[INFO]    \- io.netty:netty-transport-native-epoll:jar:linux-x86_64:4.1.100.Final:runtime (optional)
[INFO] ------------------------------------------------------------------------
[INFO] BUILD SUCCESS
`

func TestParseTree(t *testing.T) {
	got := ParseTree([]byte(guavaTree))
	want := []artifact.Dependency{
		{Coordinate: artifact.MustParse("com.google.guava:failureaccess:1.0.1"), Scope: "compile"},
		{Coordinate: artifact.MustParse("com.google.guava:listenablefuture:9999.0-empty-to-avoid-conflict-with-guava"), Scope: "compile"},
		{Coordinate: artifact.MustParse("com.google.code.findbugs:jsr305:3.0.2"), Scope: "compile"},
		{Coordinate: artifact.MustParse("io.netty:netty-transport-native-epoll:4.1.100.Final"), Scope: "runtime"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTreeNoDependencies(t *testing.T) {
	out := "[INFO] temp-group:temp-artifact:jar:1.0\n[INFO] \\- org.example:leaf:jar:1.0:compile\n[INFO] BUILD SUCCESS\n"
	got := ParseTree([]byte(out))
	if got == nil || len(got) != 0 {
		t.Errorf("ParseTree = %#v, want empty non-nil slice", got)
	}
}

func TestDescriptorMarshal(t *testing.T) {
	data, err := NewDescriptor(artifact.MustParse("g:a:1.0"), "https://repo.example.com/maven2").Marshal()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{
		"<groupId>temp-group</groupId>",
		"<artifactId>temp-artifact</artifactId>",
		"<dependency>",
		"<groupId>g</groupId>",
		"<artifactId>a</artifactId>",
		"<version>1.0</version>",
		"<url>https://repo.example.com/maven2</url>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("descriptor missing %q:\n%s", want, s)
		}
	}
}

type fakeTool struct {
	out   string
	err   error
	block bool
	seen  string
	body  string
}

func (f *fakeTool) Run(ctx context.Context, path string, depth int) ([]byte, error) {
	f.seen = path
	if data, err := os.ReadFile(path); err == nil {
		f.body = string(data)
	}
	if depth != Depth {
		return nil, errors.New("unexpected depth")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.out), nil
}

func newProber(tool Tool, timeout time.Duration, dir string) *Prober {
	return New(tool, Options{Timeout: timeout, TempDir: dir, Logger: log.New(io.Discard)})
}

func TestProbeSuccess(t *testing.T) {
	dir := t.TempDir()
	tool := &fakeTool{out: guavaTree}
	deps, err := newProber(tool, time.Second, dir).Probe(context.Background(), artifact.MustParse("com.google.guava:guava:32.1.3-jre"))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(deps) != 4 {
		t.Errorf("deps = %d, want 4", len(deps))
	}
	if !strings.Contains(tool.body, "<artifactId>guava</artifactId>") {
		t.Errorf("descriptor did not name the probed artifact:\n%s", tool.body)
	}
	if filepath.Dir(filepath.Dir(tool.seen)) != dir {
		t.Errorf("descriptor %s not under %s", tool.seen, dir)
	}
	if _, err := os.Stat(filepath.Dir(tool.seen)); !os.IsNotExist(err) {
		t.Errorf("temp dir not removed: %v", err)
	}
}

func TestProbeToolFailure(t *testing.T) {
	dir := t.TempDir()
	tool := &fakeTool{err: errors.New("exit status 1")}
	deps, err := newProber(tool, time.Second, dir).Probe(context.Background(), artifact.MustParse("g:a:1"))
	if deps != nil {
		t.Errorf("deps = %v, want nil on failure", deps)
	}
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("err = %v, want *Failure", err)
	}
	if f.Code() != mcerrors.ErrCodeTool {
		t.Errorf("Code() = %v, want %v", f.Code(), mcerrors.ErrCodeTool)
	}
	if _, err := os.Stat(filepath.Dir(tool.seen)); !os.IsNotExist(err) {
		t.Errorf("temp dir not removed after failure")
	}
}

func TestProbeTimeout(t *testing.T) {
	tool := &fakeTool{block: true}
	_, err := newProber(tool, 20*time.Millisecond, t.TempDir()).Probe(context.Background(), artifact.MustParse("g:a:1"))
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("err = %v, want *Failure", err)
	}
	if f.Code() != mcerrors.ErrCodeTimeout {
		t.Errorf("Code() = %v, want %v", f.Code(), mcerrors.ErrCodeTimeout)
	}
	if !IsFailure(err) {
		t.Error("IsFailure = false")
	}
}

func TestProbeConcurrentDirsDistinct(t *testing.T) {
	dir := t.TempDir()
	p := newProber(&fakeTool{out: guavaTree}, time.Second, dir)
	a, b := &fakeTool{out: ""}, &fakeTool{out: ""}
	p1, p2 := New(a, p.opts), New(b, p.opts)
	if _, err := p1.Probe(context.Background(), artifact.MustParse("g:a:1")); err != nil {
		t.Fatal(err)
	}
	if _, err := p2.Probe(context.Background(), artifact.MustParse("g:b:1")); err != nil {
		t.Fatal(err)
	}
	if a.seen == b.seen {
		t.Errorf("probes shared descriptor path %s", a.seen)
	}
}

// A wrapper script that forks the real work keeps stdout open in the child.
// The timeout must still end the run.
func TestMavenToolTimeoutKillsChildren(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tool")
	}
	script := filepath.Join(t.TempDir(), "mvn")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\necho done\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err := newProber(MavenTool{Binary: script}, 200*time.Millisecond, t.TempDir()).Probe(context.Background(), artifact.MustParse("g:a:1.0"))
	took := time.Since(start)

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("err = %v, want *Failure", err)
	}
	if f.Code() != mcerrors.ErrCodeTimeout {
		t.Errorf("Code() = %v, want %v", f.Code(), mcerrors.ErrCodeTimeout)
	}
	if took > 3*time.Second {
		t.Errorf("Probe took %s, want the timeout to bound the run", took)
	}
}
