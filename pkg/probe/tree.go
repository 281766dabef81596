package probe

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

// ParseTree extracts the direct (depth 1) dependencies of the probed artifact
// from `mvn dependency:tree` output.
//
// Lines look like
//
//	[INFO] temp-group:temp-artifact:jar:1.0
//	[INFO] \- com.google.guava:guava:jar:32.1.3-jre:compile
//	[INFO]    +- com.google.guava:failureaccess:jar:1.0.1:compile
//
// The root line carries no branch marker and is ignored. The probed artifact
// sits at depth 0 and its own dependencies at depth 1, where depth is the
// number of leading " " and "|" characters divided by two. Classifier fields
// are tolerated: the version is always the field before the scope.
func ParseTree(output []byte) []artifact.Dependency {
	deps := []artifact.Dependency{}
	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimPrefix(sc.Text(), "[INFO] ")
		if !strings.Contains(line, "+- ") && !strings.Contains(line, `\- `) {
			continue
		}
		depth := (len(line) - len(strings.TrimLeft(line, " |"))) / 2
		if depth != 1 {
			continue
		}
		d, ok := parseNode(line)
		if !ok {
			continue
		}
		deps = append(deps, d)
	}
	return deps
}

// parseNode reads "+- g:a:type[:classifier]:v:scope [(annotation)]".
func parseNode(line string) (artifact.Dependency, bool) {
	line = strings.TrimLeft(line, " |+-\\")
	if i := strings.IndexByte(line, ' '); i >= 0 {
		line = line[:i]
	}
	parts := strings.Split(line, ":")
	if len(parts) < 5 {
		return artifact.Dependency{}, false
	}
	group := strings.TrimLeftFunc(parts[0], func(r rune) bool {
		return !isAlnum(r)
	})
	c := artifact.Coordinate{
		Group:    group,
		Artifact: parts[1],
		Version:  parts[len(parts)-2],
	}
	if c.Validate() != nil {
		return artifact.Dependency{}, false
	}
	return artifact.Dependency{Coordinate: c, Scope: parts[len(parts)-1]}, true
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
