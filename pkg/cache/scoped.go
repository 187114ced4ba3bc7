package cache

// ScopedKeyer prefixes every key of an inner Keyer. Server replicas that
// share a Redis or Mongo backend with other applications use it to keep
// their entries apart.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "cancerflow:")
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

// GroupKey returns the prefixed group key.
func (k *ScopedKeyer) GroupKey(datasetHash string, opts GroupKeyOpts) string {
	return k.prefix + k.inner.GroupKey(datasetHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(groupHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(groupHash, opts)
}

// SummaryKey returns the prefixed summary key.
func (k *ScopedKeyer) SummaryKey(datasetHash string) string {
	return k.prefix + k.inner.SummaryKey(datasetHash)
}
