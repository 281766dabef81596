package pom

import (
	"maps"
	"slices"
)

// Properties is an immutable property set. Every operation that changes
// content returns a new value; the receiver is never modified, so a set can
// be shared across recursion levels and goroutines.
//
// The zero value is an empty set.
type Properties struct {
	m map[string]string
}

// NewProperties copies kv into a new set.
func NewProperties(kv map[string]string) Properties {
	return Properties{m: maps.Clone(kv)}
}

// Get returns the value for key.
func (p Properties) Get(key string) (string, bool) {
	v, ok := p.m[key]
	return v, ok
}

// Len returns the number of properties.
func (p Properties) Len() int { return len(p.m) }

// Keys returns all keys in sorted order.
func (p Properties) Keys() []string {
	return slices.Sorted(maps.Keys(p.m))
}

// Map returns a copy of the underlying mapping.
func (p Properties) Map() map[string]string {
	if p.m == nil {
		return map[string]string{}
	}
	return maps.Clone(p.m)
}

// With returns a copy of p with key set to value.
func (p Properties) With(key, value string) Properties {
	m := make(map[string]string, len(p.m)+1)
	maps.Copy(m, p.m)
	m[key] = value
	return Properties{m: m}
}

// Merge returns a new set holding every key of p plus the keys of lower that
// p does not define. Values already in p win, which is how a child POM
// overrides its ancestors.
func (p Properties) Merge(lower Properties) Properties {
	m := make(map[string]string, len(p.m)+len(lower.m))
	maps.Copy(m, lower.m)
	maps.Copy(m, p.m)
	return Properties{m: m}
}

// mergeList is Merge for a document's declared properties. The first
// declaration of a duplicated key wins.
func (p Properties) mergeList(list PropertyList) Properties {
	m := make(map[string]string, len(p.m)+len(list))
	maps.Copy(m, p.m)
	for _, prop := range list {
		if _, ok := m[prop.Name]; !ok {
			m[prop.Name] = prop.Value
		}
	}
	return Properties{m: m}
}
