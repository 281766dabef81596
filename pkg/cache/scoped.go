package cache

// ScopedKeyer prefixes every key of an inner Keyer. Each configured
// repository gets its own scope so identical paths on different hosts do not
// share entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey implements [Keyer].
func (k *ScopedKeyer) HTTPKey(kind, key string) string {
	return k.prefix + k.inner.HTTPKey(kind, key)
}
