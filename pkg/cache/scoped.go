package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. The
// server uses it to keep per-deployment caches apart when several
// instances share one Redis, and tests use it to avoid cross-talk.
//
// Example usage:
//
//	// Keys scoped to one deployment
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "site:cern:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated
// key. A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LineKey generates a prefixed key for a loaded beamline.
func (k *ScopedKeyer) LineKey(manifest []byte, sequence string) string {
	return k.prefix + k.inner.LineKey(manifest, sequence)
}

// SurveyKey generates a prefixed key for a survey document.
func (k *ScopedKeyer) SurveyKey(lineKey string, opts SurveyKeyOpts) string {
	return k.prefix + k.inner.SurveyKey(lineKey, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(surveyKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(surveyKey, opts)
}
