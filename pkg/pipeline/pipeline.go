// Package pipeline provides the manifest-to-artifact pipeline for beamforge.
//
// This package implements the complete load → survey → render flow that the
// CLI and the HTTP server both use. Centralizing it here keeps caching,
// logging, and stage instrumentation identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse a TOML manifest and expand a sequence into a placed-ready line
//  2. Survey: Place every element and collect the geometry document
//  3. Render: Generate output in various formats (SVG, DOT, HTML, JSON, PDF, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
// Survey documents and artifacts are cached under keys derived from the
// manifest content, so repeated requests for the same beamline are served
// without recomputation.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ManifestPath: "examples/ring.toml",
//	    Formats:      []string{"svg", "json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	l, err := runner.Load(ctx, opts)
//
//	// Survey an existing line
//	doc, err := runner.Survey(ctx, l, opts)
//
//	// Render an existing survey
//	artifacts, err := runner.Render(ctx, l, doc, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beamforge/pkg/cache"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/render"
	"github.com/matzehuels/beamforge/pkg/survey"
	"github.com/matzehuels/beamforge/pkg/units"
)

// DefaultFormat is rendered when no formats are requested.
const DefaultFormat = string(render.FormatSVG)

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	ManifestPath string `json:"manifest_path,omitempty"` // local file or http(s) URL
	Manifest     []byte `json:"manifest,omitempty"`      // inline TOML, takes precedence over ManifestPath
	Sequence     string `json:"sequence,omitempty"` // required when the manifest defines several sequences

	// Survey options
	OriginX       float64 `json:"origin_x,omitempty"`           // meters
	OriginY       float64 `json:"origin_y,omitempty"`           // meters
	OriginHeading float64 `json:"origin_heading_deg,omitempty"` // degrees
	Refresh       bool    `json:"refresh,omitempty"`            // bypass cached results

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Line is the expanded beamline.
	Line *line.Line

	// Survey is the placement document.
	Survey *survey.Document

	// SurveyHash is the content hash of the survey document.
	SurveyHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount int
	TotalLength  float64 // meters
	LoadTime     time.Duration
	SurveyTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage. The load stage is a
// local TOML decode and is never cached.
type CacheInfo struct {
	SurveyHit bool // Whether the survey document came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for the load stage.
func (o *Options) ValidateForLoad() error {
	if o.ManifestPath == "" && len(o.Manifest) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "manifest path or content is required")
	}
	o.setLogger()
	return nil
}

// ValidateForRender normalizes the requested formats, defaulting to SVG.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for i, f := range o.Formats {
		parsed, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		o.Formats[i] = string(parsed)
	}
	o.setLogger()
	return nil
}

// Origin returns the placement frame for the survey stage.
func (o *Options) Origin() frame.Frame {
	return frame.At(units.Meters(o.OriginX), units.Meters(o.OriginY), units.Degrees(o.OriginHeading))
}

// SurveyKeyOpts returns cache key options for the survey stage.
func (o *Options) SurveyKeyOpts() cache.SurveyKeyOpts {
	return cache.SurveyKeyOpts{
		OriginX:       o.OriginX,
		OriginY:       o.OriginY,
		OriginHeading: o.OriginHeading,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
