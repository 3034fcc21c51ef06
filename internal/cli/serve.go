package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/simplecmr/internal/server"
	"github.com/matzehuels/simplecmr/pkg/integrations/cmr"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		baseURL string
		uat     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve CMR searches as a JSON HTTP proxy",
		Long: `Serve CMR searches over HTTP.

Routes:
  GET /collections   projected collection records
  GET /granules      projected granule records
  GET /healthz       liveness
  GET /metrics       Prometheus metrics

Search routes accept bbox, start, end, level, concept_id, short_name,
topic, term, variable and page_size as query parameters, plus raw=true,
flat=true and refresh=true.`,
		Example: `  simplecmr serve --addr :9090
  curl 'localhost:9090/granules?concept_id=C1234-PODAAC&page_size=5'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg := c.config().Server
			if addr != "" {
				cfg.Addr = addr
			}
			if uat && baseURL == "" {
				baseURL = cmr.UATBaseURL
			}

			client, closeCache, err := c.newClient(ctx, baseURL, false)
			if err != nil {
				return err
			}
			defer closeCache()

			srv := server.New(client, cfg, logger, c.registry)
			return srv.Run(ctx)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	fs.StringVar(&baseURL, "base-url", "", "CMR search base URL (default from config)")
	fs.BoolVar(&uat, "uat", false, "use the CMR user acceptance test environment")
	return cmd
}
