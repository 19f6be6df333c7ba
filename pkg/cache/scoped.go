package cache

// Keyer produces cache keys.
type Keyer interface {
	// HTTPKey is the key of a cached API response.
	HTTPKey(namespace, key string) string

	// ProjectKey identifies a forge project; it keys the run memo for
	// source references and tag lists.
	ProjectKey(kind, baseURL, project string) string
}

// DefaultKeyer is the unscoped [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unscoped keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace><key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + key
}

// ProjectKey hashes the project identity, so long self-hosted paths never
// produce oversized keys.
func (DefaultKeyer) ProjectKey(kind, baseURL, project string) string {
	return hashKey("project", kind, baseURL, project)
}

// ScopedKeyer prefixes every key of an inner [Keyer].
//
// The CLI scopes keys by credential so that responses fetched with a token
// (which may include private repositories) never leak into anonymous runs
// sharing the same backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "auth:"+Hash([]byte(token))[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ProjectKey generates a prefixed project key.
func (k *ScopedKeyer) ProjectKey(kind, baseURL, project string) string {
	return k.prefix + k.inner.ProjectKey(kind, baseURL, project)
}
