package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for the tool's output pipes once the
// context is done. Descendants that inherited them may keep them open.
const waitDelay = 2 * time.Second

// MavenTool runs `mvn dependency:tree` in batch mode.
type MavenTool struct {
	// Binary is the mvn executable. Defaults to "mvn" on PATH.
	Binary string
	// Args are extra arguments such as "-o" or "-s settings.xml".
	Args []string
}

// Run implements [Tool]. Stderr and the tail of stdout are included in the
// error on non-zero exit. When ctx ends the tool and every process it
// started are killed.
func (t MavenTool) Run(ctx context.Context, descriptorPath string, depth int) ([]byte, error) {
	bin := t.Binary
	if bin == "" {
		bin = "mvn"
	}
	args := append([]string{"-B", "dependency:tree", fmt.Sprintf("-Ddepth=%d", depth), "-f", descriptorPath}, t.Args...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = waitDelay
	killGroupOnCancel(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", bin, err, tail(stderr.String()+stdout.String(), 5))
	}
	return stdout.Bytes(), nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
