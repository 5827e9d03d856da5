package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beamforge/pkg/httputil"
	"github.com/matzehuels/beamforge/pkg/pipeline"
	"github.com/matzehuels/beamforge/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output        string   // output file (single format) or base path (multiple)
	formats       []string // output formats: svg, png, pdf, html, dot, json
	sequence      string   // sequence to expand when the manifest defines several
	originX       float64  // origin X in meters
	originY       float64  // origin Y in meters
	originHeading float64  // origin heading in degrees
	refresh       bool     // recompute even when cached artifacts exist
	noCache       bool     // disable the on-disk cache entirely
}

// renderCommand creates the render command for generating beamline artifacts.
// It runs the full pipeline (load, survey, render) with caching, so repeated
// invocations on an unchanged manifest serve artifacts from disk.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render beamline schematics and charts",
		Long: `Render surveys a beamline and writes the requested artifacts. SVG, PNG
and PDF hold the top-down schematic, HTML holds an interactive floor
plan chart, DOT holds the sequence graph, and JSON holds the survey
document itself.

The manifest argument is a local file or an http(s) URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, html, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.sequence, "sequence", "s", "", "sequence to expand (required for multi-sequence manifests)")
	cmd.Flags().Float64Var(&opts.originX, "origin-x", 0, "origin X coordinate in meters")
	cmd.Flags().Float64Var(&opts.originY, "origin-y", 0, "origin Y coordinate in meters")
	cmd.Flags().Float64Var(&opts.originHeading, "origin-heading", 0, "origin heading in degrees")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the on-disk cache")

	return cmd
}

// validFormats is the set of supported output formats, used to strip known
// extensions from output paths.
var validFormats = map[string]bool{
	"svg": true, "png": true, "pdf": true, "html": true, "dot": true, "json": true,
}

// validateFormats checks that all requested formats are renderable.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, the base is the input file name with its extension
// stripped, so remote manifests render into the working directory. If output
// ends in a known format extension, that extension is stripped. This is used
// when generating multiple files (e.g., ring.svg, ring.html).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender executes the pipeline and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, manifestPath string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var sp *Spinner
	if httputil.IsURL(manifestPath) {
		sp = newSpinnerWithContext(ctx, "Fetching manifest...")
		sp.Start()
	}
	result, err := runner.Execute(ctx, pipeline.Options{
		ManifestPath:  manifestPath,
		Sequence:      opts.sequence,
		OriginX:       opts.originX,
		OriginY:       opts.originY,
		OriginHeading: opts.originHeading,
		Refresh:       opts.refresh,
		Formats:       opts.formats,
		Logger:        logger,
	})
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, manifestPath, opts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", result.Survey.Name)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.ElementCount, result.Stats.TotalLength, result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each rendered format to its own file and returns the
// paths in format order. A single format with an explicit --output goes to
// that exact path; everything else derives from the base path.
func writeArtifacts(artifacts map[string][]byte, input string, opts renderOpts) ([]string, error) {
	single := len(opts.formats) == 1
	base := basePath(opts.output, input)

	paths := make([]string, 0, len(opts.formats))
	for _, format := range opts.formats {
		path := base + "." + format
		if single && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
