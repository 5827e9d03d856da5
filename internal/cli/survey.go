package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beamforge/pkg/archive"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/httputil"
	"github.com/matzehuels/beamforge/pkg/pipeline"
	"github.com/matzehuels/beamforge/pkg/survey"
)

// surveyOpts holds the command-line flags for the survey command.
type surveyOpts struct {
	sequence      string  // sequence to expand when the manifest defines several
	output        string  // output file path; empty writes to stdout
	format        string  // output format: table, json, csv
	originX       float64 // origin X in meters
	originY       float64 // origin Y in meters
	originHeading float64 // origin heading in degrees
	refresh       bool    // recompute even when a cached survey exists
	noCache       bool    // disable the on-disk cache entirely
	archive       string  // MongoDB URI; empty disables archiving
}

// surveyCommand creates the survey command. It places every element of a
// beamline and writes the survey document in the requested format.
func (c *CLI) surveyCommand() *cobra.Command {
	var opts surveyOpts

	cmd := &cobra.Command{
		Use:   "survey <manifest>",
		Short: "Place a beamline and write its survey table",
		Long: `Survey expands a sequence from a TOML manifest, places every element in
the global frame starting at the origin, and writes one row per element
with entry, center and exit coordinates.

The manifest argument is a local file or an http(s) URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSurvey(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sequence, "sequence", "s", "", "sequence to expand (required for multi-sequence manifests)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (defaults to stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, json, csv")
	cmd.Flags().Float64Var(&opts.originX, "origin-x", 0, "origin X coordinate in meters")
	cmd.Flags().Float64Var(&opts.originY, "origin-y", 0, "origin Y coordinate in meters")
	cmd.Flags().Float64Var(&opts.originHeading, "origin-heading", 0, "origin heading in degrees")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the on-disk cache")
	cmd.Flags().StringVar(&opts.archive, "archive", "", "MongoDB URI to archive the survey (e.g. mongodb://localhost:27017)")

	return cmd
}

func (c *CLI) runSurvey(ctx context.Context, manifestPath string, opts surveyOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		ManifestPath:  manifestPath,
		Sequence:      opts.sequence,
		OriginX:       opts.originX,
		OriginY:       opts.originY,
		OriginHeading: opts.originHeading,
		Refresh:       opts.refresh,
		Logger:        logger,
	}

	var sp *Spinner
	if httputil.IsURL(manifestPath) {
		sp = newSpinnerWithContext(ctx, "Fetching manifest...")
		sp.Start()
	}
	l, err := runner.Load(ctx, popts)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	doc, cached, err := runner.SurveyWithCacheInfo(ctx, l, popts)
	if err != nil {
		return err
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := writeSurvey(out, doc, opts.format); err != nil {
		return err
	}

	if opts.archive != "" {
		if err := archiveSurvey(ctx, opts.archive, doc); err != nil {
			return err
		}
		logger.Info("archived survey", "line", doc.Name)
	}

	// Decorations would corrupt piped output, so they only appear when the
	// document went to a file.
	if opts.output != "" {
		printSuccess("Surveyed %s", doc.Name)
		printFile(opts.output)
		printStats(len(doc.Rows), doc.TotalLength, cached)
		printNextStep("Render a schematic", fmt.Sprintf("beamforge render %s", manifestPath))
	}
	return nil
}

// writeSurvey serializes the document in the requested format.
func writeSurvey(w io.Writer, doc *survey.Document, format string) error {
	switch format {
	case "table":
		return doc.WriteTable(w)
	case "json":
		return doc.WriteJSON(w)
	case "csv":
		return doc.WriteCSV(w)
	default:
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid output format %q (must be 'table', 'json', or 'csv')", format)
	}
}

// archiveSurvey stores the document in a MongoDB archive.
func archiveSurvey(ctx context.Context, uri string, doc *survey.Document) error {
	arch, err := archive.Connect(ctx, archive.Options{URI: uri})
	if err != nil {
		return err
	}
	defer arch.Close(ctx)
	return arch.PutSurvey(ctx, doc)
}

// nopCloser wraps an io.Writer with a no-op Close method.
// Used to wrap os.Stdout, which should not be closed.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates (or truncates) the file at path.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
