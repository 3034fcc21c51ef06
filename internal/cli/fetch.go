package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simplecmr/pkg/integrations/cmr"
	pkgio "github.com/matzehuels/simplecmr/pkg/io"
)

type fetchFlags struct {
	limit    int
	workers  int
	dir      string
	from     string
	username string
}

func (c *CLI) fetchCommand() *cobra.Command {
	var (
		sf searchFlags
		cf clientFlags
		ff fetchFlags
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download granule data files",
		Long: `Search CMR granules and download the data file of each result.

Each granule's first "GET DATA" link is downloaded with Earthdata Login
credentials into --dir, which must already exist. Credentials come from
the config file or EARTHDATA_USERNAME and EARTHDATA_PASSWORD.

Instead of searching, --from reads granule records previously written with
"simplecmr granules -o granules.json".`,
		Example: `  simplecmr fetch --concept-id C1234-PODAAC --bbox -180,-10,180,10 -n 5 --dir ./data
  simplecmr fetch --from granules.json --limit 2 --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, sf, cf, ff)
		},
	}
	sf.register(cmd)
	cf.register(cmd)
	fs := cmd.Flags()
	fs.IntVar(&ff.limit, "limit", 0, "download at most this many granules (0 for all)")
	fs.IntVarP(&ff.workers, "workers", "w", cmr.DefaultMaxWorkers, "number of parallel downloads")
	fs.StringVarP(&ff.dir, "dir", "d", "", "existing destination directory (default from config)")
	fs.StringVar(&ff.from, "from", "", "read granule records from a JSON file instead of searching")
	fs.StringVarP(&ff.username, "username", "u", "", "Earthdata Login username (default from config)")
	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, sf searchFlags, cf clientFlags, ff fetchFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := c.config()

	creds := cmr.Credentials{Username: cfg.Earthdata.Username, Password: cfg.Earthdata.Password}
	if ff.username != "" {
		creds.Username = ff.username
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("earthdata credentials are required: set EARTHDATA_USERNAME and EARTHDATA_PASSWORD or the [earthdata] config section")
	}

	opts := cmr.FetchOptions{Dir: cfg.Fetch.Dir, Limit: ff.limit, MaxWorkers: cfg.Fetch.MaxWorkers}
	if ff.dir != "" {
		opts.Dir = ff.dir
	}
	if cmd.Flags().Changed("workers") {
		opts.MaxWorkers = ff.workers
	}

	records, err := c.fetchRecords(cmd, sf, cf, ff)
	if err != nil {
		return err
	}

	fetcher := cmr.NewFetcher(
		cmr.WithAuthHost(cfg.Earthdata.AuthHost),
		cmr.WithFetchLogger(logger),
	)

	prog := newProgress(logger)
	total := selected(records.Len(), opts.Limit)
	spinner := newSpinner(ctx, fmt.Sprintf("Downloading %d granules...", total))
	c.watchFetches(func(done int64) {
		spinner.SetMessage(fmt.Sprintf("Downloaded %d/%d granules...", done, total))
	})
	spinner.Start()
	report, err := fetcher.Fetch(ctx, records, creds, opts)
	spinner.Stop()
	c.watchFetches(nil)
	if err != nil {
		return err
	}

	for _, w := range report.Warnings {
		printWarning("%s", w)
	}
	printFetchReport(report)
	prog.done(fmt.Sprintf("Downloaded %d of %d granules", len(report.Results)-report.Failed(), len(report.Results)),
		"workers", report.Workers)

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d downloads failed", n, len(report.Results))
	}
	return nil
}

// fetchRecords returns the granules to download, read from --from or
// found by a granule search.
func (c *CLI) fetchRecords(cmd *cobra.Command, sf searchFlags, cf clientFlags, ff fetchFlags) (cmr.Records, error) {
	ctx := cmd.Context()
	if ff.from != "" {
		ms, err := pkgio.ImportJSON(ff.from)
		if err != nil {
			return nil, err
		}
		records := cmr.FromMaps(ms, cmr.GranuleFields)
		loggerFromContext(ctx).Debug("records loaded", "file", ff.from, "count", records.Len())
		return records, nil
	}

	q, err := c.buildQuery(ctx, sf)
	if err != nil {
		return nil, err
	}
	client, closeCache, err := c.newClient(ctx, cf.resolveBaseURL(), cf.noCache)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	spinner := newSpinner(ctx, "Searching granules...")
	spinner.Start()
	records, err := client.Granules(ctx, q, cf.refresh)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	printInfo("Found %d granules", records.Len())
	return records, nil
}

func selected(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}

func printFetchReport(r *cmr.FetchReport) {
	for _, res := range r.Results {
		name := res.ConceptID
		if name == "" {
			name = fmt.Sprintf("#%d", res.Index)
		}
		if res.Err != nil {
			printError("%s: %v", name, res.Err)
			continue
		}
		printSuccess("%s %s", name, StyleDim.Render(fmt.Sprintf("(%d bytes)", res.Bytes)))
		printFile(filepath.Clean(res.Path))
	}
	printKeyValue("Workers", fmt.Sprint(r.Workers))
	printKeyValue("Failed", fmt.Sprint(r.Failed()))
}
