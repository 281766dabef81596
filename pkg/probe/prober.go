package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	mcerrors "github.com/matzehuels/mavcrawl/pkg/errors"
	"github.com/matzehuels/mavcrawl/pkg/observability"
)

// DefaultTimeout bounds one tool invocation.
const DefaultTimeout = 30 * time.Second

// Depth is the tree depth requested from the tool: the synthetic root, the
// probed artifact, and its direct dependencies.
const Depth = 2

// Tool runs an external dependency-tree resolver against a project
// descriptor and returns its textual tree output.
type Tool interface {
	Run(ctx context.Context, descriptorPath string, depth int) ([]byte, error)
}

// Failure reports that dependencies could not be determined. It is distinct
// from an empty result, which means "no dependencies".
type Failure struct {
	Coordinate artifact.Coordinate
	Reason     string
	Err        error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("probe %s: %s: %v", f.Coordinate, f.Reason, f.Err)
	}
	return fmt.Sprintf("probe %s: %s", f.Coordinate, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Code classifies the failure as a timeout or a tool failure.
func (f *Failure) Code() mcerrors.Code {
	if errors.Is(f.Err, context.DeadlineExceeded) {
		return mcerrors.ErrCodeTimeout
	}
	return mcerrors.ErrCodeTool
}

// IsFailure reports whether err is a probe [Failure].
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Options configures a [Prober].
type Options struct {
	// Timeout bounds each tool run. Defaults to [DefaultTimeout].
	Timeout time.Duration
	// TempDir is where per-probe directories are created. Defaults to os.TempDir().
	TempDir string
	// Repositories are added to every descriptor.
	Repositories []string
	Logger       *log.Logger
}

// WithDefaults returns a copy of o with zero fields set to defaults.
func (o Options) WithDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Prober resolves one coordinate's direct transitive dependencies.
//
// Every call writes its own descriptor into a fresh temporary directory that
// is removed before Probe returns, so concurrent probes never share state.
type Prober struct {
	tool Tool
	opts Options
}

// New creates a prober around tool.
func New(tool Tool, opts Options) *Prober {
	return &Prober{tool: tool, opts: opts.WithDefaults()}
}

// Probe returns c's direct dependencies in tool order. It returns a *Failure
// when the descriptor cannot be written, the tool cannot be started, exits
// non-zero, or exceeds the timeout.
func (p *Prober) Probe(ctx context.Context, c artifact.Coordinate) (deps []artifact.Dependency, err error) {
	start := time.Now()
	defer func() {
		observability.Crawl().OnProbe(ctx, c.String(), len(deps), time.Since(start), err)
	}()

	path, cleanup, err := NewDescriptor(c, p.opts.Repositories...).writeTemp(p.opts.TempDir)
	if err != nil {
		return nil, &Failure{Coordinate: c, Reason: "write descriptor", Err: err}
	}
	defer cleanup()

	runCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	out, err := p.tool.Run(runCtx, path, Depth)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, &Failure{Coordinate: c, Reason: fmt.Sprintf("timed out after %s", p.opts.Timeout), Err: context.DeadlineExceeded}
		}
		return nil, &Failure{Coordinate: c, Reason: "tool failed", Err: err}
	}

	deps = ParseTree(out)
	p.opts.Logger.Debug("probed", "coord", c.String(), "deps", len(deps), "took", time.Since(start).Round(time.Millisecond))
	return deps, nil
}
