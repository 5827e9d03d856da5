package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/beamforge/internal/server"
)

// serveCommand creates the serve command. It exposes the survey pipeline
// over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve surveys and schematics over HTTP",
		Long: `Serve starts an HTTP server exposing the survey pipeline: POST a
manifest to /api/survey, or GET /api/survey and /api/schematic.svg
with a manifest query parameter. The server shares the CLI's on-disk
cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			c.Logger.Info("starting server", "addr", addr)
			return server.New(runner, c.Logger).Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the on-disk cache")

	return cmd
}
