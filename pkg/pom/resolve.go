package pom

import (
	"strings"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
)

const (
	parentRefPrefix  = "${project.parent."
	projectRefPrefix = "${project."
)

// Resolve substitutes a whole-value ${...} placeholder.
//
//   - nil value: [artifact.Unknown]
//   - ${project.parent.X}: X from the document's parent block, value unchanged if absent
//   - ${project.X}: X from the document itself, "" if absent
//   - ${name}: name from props, value unchanged if absent
//   - anything else: value unchanged
//
// Placeholders embedded in longer strings are left as they are.
func Resolve(value *string, props Properties, doc *Document) string {
	if value == nil {
		return artifact.Unknown
	}
	v := *value
	if !strings.HasSuffix(v, "}") {
		return v
	}

	switch {
	case strings.HasPrefix(v, parentRefPrefix):
		name := strings.TrimSuffix(strings.TrimPrefix(v, parentRefPrefix), "}")
		if s, ok := doc.parentField(name); ok {
			return s
		}
		return v
	case strings.HasPrefix(v, projectRefPrefix):
		if doc == nil {
			return ""
		}
		name := strings.TrimSuffix(strings.TrimPrefix(v, projectRefPrefix), "}")
		s, _ := doc.field(name)
		return s
	case strings.HasPrefix(v, "${"):
		name := v[2 : len(v)-1]
		if s, ok := props.Get(name); ok {
			return s
		}
		return v
	}
	return v
}

// ResolveString is [Resolve] for a present value.
func ResolveString(value string, props Properties, doc *Document) string {
	return Resolve(&value, props, doc)
}

// resolveAll re-resolves every value of p against doc. Each value is looked
// up against p as it was before this pass.
func resolveAll(p Properties, doc *Document) Properties {
	m := make(map[string]string, p.Len())
	for k, v := range p.m {
		m[k] = ResolveString(v, p, doc)
	}
	return Properties{m: m}
}
