package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beamforge/pkg/cache"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/httputil"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/manifest"
	"github.com/matzehuels/beamforge/pkg/observability"
	"github.com/matzehuels/beamforge/pkg/render"
	"github.com/matzehuels/beamforge/pkg/survey"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetcher and logger;
// multiple goroutines can safely share one Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher *httputil.Client
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer falls back to the DefaultKeyer; a nil cache disables caching.
// Remote manifests are fetched through the default on-disk HTTP cache;
// assign Fetcher to change that.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: defaultFetcher(),
		Logger:  logger,
	}
}

// defaultFetcher builds a manifest fetcher with the standard on-disk HTTP
// cache. When the cache directory is unavailable the fetcher runs uncached.
func defaultFetcher() *httputil.Client {
	hc, err := httputil.NewCache("", httputil.DefaultTTL)
	if err != nil {
		return httputil.NewClient(nil)
	}
	return httputil.NewClient(hc.Namespace("manifest:"))
}

func (r *Runner) fetcher() *httputil.Client {
	if r.Fetcher == nil {
		return httputil.NewClient(nil)
	}
	return r.Fetcher
}

// Execute runs the complete load → survey → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	l, data, err := r.loadInstrumented(ctx, opts)
	if err != nil {
		return nil, err
	}
	opts.Manifest = data
	opts.Sequence = l.Name() // canonical for cache keys
	result.Line = l
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ElementCount = l.Len()

	r.Logger.Info("loaded beamline",
		"line", l.Name(),
		"elements", l.Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Survey
	surveyStart := time.Now()
	doc, surveyHit, err := r.SurveyWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Survey = doc
	result.Stats.SurveyTime = time.Since(surveyStart)
	result.Stats.TotalLength = doc.TotalLength
	result.CacheInfo.SurveyHit = surveyHit

	// Content hash for cache keys and API responses
	if docData, err := json.Marshal(doc); err == nil {
		result.SurveyHash = cache.Hash(docData)
	}

	r.Logger.Info("surveyed beamline",
		"line", l.Name(),
		"rows", len(doc.Rows),
		"length", doc.TotalLength,
		"duration", result.Stats.SurveyTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load parses the manifest and expands the requested sequence into a line.
func (r *Runner) Load(ctx context.Context, opts Options) (*line.Line, error) {
	l, _, err := r.loadInstrumented(ctx, opts)
	return l, err
}

// loadInstrumented performs the load stage and returns the manifest bytes
// alongside the line so Execute can derive cache keys from them.
func (r *Runner) loadInstrumented(ctx context.Context, opts Options) (*line.Line, []byte, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}
	r.applyLogger(&opts)

	name := opts.ManifestPath
	if name == "" {
		name = "inline"
	}
	observability.Pipeline().OnLoadStart(ctx, name)
	start := time.Now()

	l, data, err := r.load(ctx, opts)
	count := 0
	if l != nil {
		count = l.Len()
	}
	observability.Pipeline().OnLoadComplete(ctx, name, count, time.Since(start), err)
	return l, data, err
}

func (r *Runner) load(ctx context.Context, opts Options) (*line.Line, []byte, error) {
	data := opts.Manifest
	if len(data) == 0 {
		var err error
		if httputil.IsURL(opts.ManifestPath) {
			data, err = r.fetcher().Fetch(ctx, opts.ManifestPath, opts.Refresh)
			if err != nil {
				return nil, nil, err
			}
		} else {
			data, err = os.ReadFile(opts.ManifestPath)
			if os.IsNotExist(err) {
				return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", opts.ManifestPath)
			}
			if err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "reading manifest %s", opts.ManifestPath)
			}
		}
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	seq := opts.Sequence
	if seq == "" {
		names := m.SequenceNames()
		if len(names) != 1 {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput,
				"sequence is required: manifest defines %d sequences", len(names))
		}
		seq = names[0]
	}

	l, err := m.Expand(seq)
	if err != nil {
		return nil, nil, err
	}
	return l, data, nil
}

// SurveyWithCacheInfo surveys a line with caching and reports whether the
// document came from cache. Caching needs the manifest bytes in opts; when
// they are absent the survey is computed directly.
func (r *Runner) SurveyWithCacheInfo(ctx context.Context, l *line.Line, opts Options) (*survey.Document, bool, error) {
	r.applyLogger(&opts)

	observability.Pipeline().OnSurveyStart(ctx, l.Name(), l.Len())
	start := time.Now()
	doc, hit, err := r.surveyCached(ctx, l, opts)
	observability.Pipeline().OnSurveyComplete(ctx, l.Name(), time.Since(start), err)
	return doc, hit, err
}

func (r *Runner) surveyCached(ctx context.Context, l *line.Line, opts Options) (*survey.Document, bool, error) {
	var key string
	if len(opts.Manifest) > 0 {
		lineKey := r.Keyer.LineKey(opts.Manifest, opts.Sequence)
		key = r.Keyer.SurveyKey(lineKey, opts.SurveyKeyOpts())
	}

	if key != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var doc survey.Document
			if err := json.Unmarshal(data, &doc); err == nil {
				observability.Cache().OnCacheHit(ctx, "survey")
				return &doc, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "survey")
	}

	doc, err := survey.Compute(l, opts.Origin())
	if err != nil {
		return nil, false, err
	}

	if key != "" {
		if data, err := json.Marshal(doc); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLSurvey)
			observability.Cache().OnCacheSet(ctx, "survey", len(data))
		}
	}
	return doc, false, nil
}

// Survey is a convenience wrapper that discards the cache hit info.
func (r *Runner) Survey(ctx context.Context, l *line.Line, opts Options) (*survey.Document, error) {
	doc, _, err := r.SurveyWithCacheInfo(ctx, l, opts)
	return doc, err
}

// RenderWithCacheInfo renders all requested formats with caching and
// reports whether every artifact came from cache. Artifact keys derive from
// the survey document content, so stage-level callers get caching without
// manifest bytes.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *line.Line, doc *survey.Document, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	docData, err := json.Marshal(doc)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serializing survey for cache key")
	}
	docHash := cache.Hash(docData)

	// Try to serve every format from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		allCached := true
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered := make(map[string][]byte)
	for _, format := range opts.Formats {
		observability.Pipeline().OnRenderStart(ctx, format)
		start := time.Now()
		data, err := render.Render(render.Format(format), l, doc)
		observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, err
		}
		rendered[format] = data

		key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *line.Line, doc *survey.Document, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, doc, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
