package cache

// ScopedKeyer prefixes every key from an inner Keyer. The CLI scopes keys
// by CMR host so that operational and UAT responses never collide in a
// shared backend such as Redis:
//
//	keyer := NewScopedKeyer(nil, "cmr.uat.earthdata.nasa.gov:")
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer wraps inner with scope. A nil inner uses DefaultKeyer;
// an empty scope returns inner unwrapped.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if scope == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, scope: scope}
}

// Scope returns the prefix.
func (k *ScopedKeyer) Scope() string { return k.scope }

// HTTPKey implements Keyer.
func (k *ScopedKeyer) HTTPKey(namespace, url string) string {
	return k.scope + k.inner.HTTPKey(namespace, url)
}
