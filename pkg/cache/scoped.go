package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tools can share one
// cache directory without reading each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "bench:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TableKey generates a prefixed key for count table caching.
func (k *ScopedKeyer) TableKey(n int) string {
	return k.prefix + k.inner.TableKey(n)
}
