package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simplecmr/pkg/integrations/cmr"
	pkgio "github.com/matzehuels/simplecmr/pkg/io"
	"github.com/matzehuels/simplecmr/pkg/metadata"
)

// =============================================================================
// Flags
// =============================================================================

// searchFlags holds the filter flags shared by collections, granules and fetch.
type searchFlags struct {
	bbox       string
	start      string
	end        string
	levels     []string
	conceptID  string
	shortName  string
	topic      string
	term       string
	variable   string
	maxResults int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.bbox, "bbox", "", "bounding box as west,south,east,north")
	fs.StringVar(&f.start, "start", "", "temporal start (YYYYMMDD, YYYY-MM-DD, ISO 8601 or epoch seconds)")
	fs.StringVar(&f.end, "end", "", "temporal end (same formats as --start)")
	fs.StringSliceVar(&f.levels, "level", nil, "processing level: 1A, 1B, 2, 3, 4 (repeatable)")
	fs.StringVar(&f.conceptID, "concept-id", "", "CMR concept id (wins over --short-name)")
	fs.StringVar(&f.shortName, "short-name", "", "collection short name")
	fs.StringVar(&f.topic, "topic", "", "science keyword topic")
	fs.StringVar(&f.term, "term", "", "science keyword term")
	fs.StringVar(&f.variable, "variable", "", "science keyword variable level 1")
	fs.IntVarP(&f.maxResults, "max-results", "n", cmr.DefaultMaxResults,
		fmt.Sprintf("maximum number of results (%d-%d)", cmr.MinResults, cmr.MaxResults))
}

func (f *searchFlags) filter() cmr.Filter {
	return cmr.Filter{
		BoundingBox:      cmr.SplitBoundingBox(f.bbox),
		StartTime:        f.start,
		EndTime:          f.end,
		ProcessingLevels: f.levels,
		ConceptID:        f.conceptID,
		ShortName:        f.shortName,
		Topic:            f.topic,
		Term:             f.term,
		Variable:         f.variable,
		MaxResults:       f.maxResults,
	}
}

// clientFlags selects the CMR endpoint and cache behavior.
type clientFlags struct {
	baseURL string
	uat     bool
	refresh bool
	noCache bool
}

func (f *clientFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.baseURL, "base-url", "", "CMR search base URL (default from config)")
	fs.BoolVar(&f.uat, "uat", false, "use the CMR user acceptance test environment")
	fs.BoolVar(&f.refresh, "refresh", false, "bypass cached responses (still updates the cache)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the response cache")
}

func (f *clientFlags) resolveBaseURL() string {
	if f.baseURL != "" {
		return f.baseURL
	}
	if f.uat {
		return cmr.UATBaseURL
	}
	return ""
}

// outputFlags selects the result view and destination.
type outputFlags struct {
	raw    bool
	flat   bool
	save   bool
	output string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.raw, "raw", false, "print the CMR response unchanged")
	fs.BoolVar(&f.flat, "flat", false, "flatten whole items into tabular records")
	fs.BoolVar(&f.save, "save", false, "save results to query_result_<unix>.json (.csv with --flat)")
	fs.StringVarP(&f.output, "output", "o", "", "write results to file (.csv or .json)")
	cmd.MarkFlagsMutuallyExclusive("raw", "flat")
}

// =============================================================================
// Commands
// =============================================================================

func (c *CLI) collectionsCommand() *cobra.Command {
	return c.searchCommand(cmr.ResourceCollections, "Search CMR collections",
		`  simplecmr collections --short-name MOD09GA
  simplecmr collections --topic OCEANS --term "SEA SURFACE TEMPERATURE" -n 50
  simplecmr collections --level 2 --level 3 --start 2020-01-01 --end 2020-12-31 -o collections.csv`)
}

func (c *CLI) granulesCommand() *cobra.Command {
	return c.searchCommand(cmr.ResourceGranules, "Search CMR granules",
		`  simplecmr granules --concept-id C1234-PODAAC --bbox -180,-10,180,10 -n 5
  simplecmr granules --short-name MOD09GA --start 20200101 --end 20200102 --flat --save`)
}

func (c *CLI) searchCommand(res cmr.Resource, short, example string) *cobra.Command {
	var (
		sf searchFlags
		cf clientFlags
		of outputFlags
	)
	cmd := &cobra.Command{
		Use:     string(res),
		Short:   short,
		Example: example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd, res, sf, cf, of)
		},
	}
	sf.register(cmd)
	cf.register(cmd)
	of.register(cmd)
	return cmd
}

// =============================================================================
// Execution
// =============================================================================

// searchResult is one search with its projected or flattened view.
type searchResult struct {
	resp    *cmr.Response
	records cmr.Records
	flat    []metadata.Record
	cached  bool
}

func (c *CLI) runSearch(cmd *cobra.Command, res cmr.Resource, sf searchFlags, cf clientFlags, of outputFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	q, err := c.buildQuery(ctx, sf)
	if err != nil {
		return err
	}

	client, closeCache, err := c.newClient(ctx, cf.resolveBaseURL(), cf.noCache)
	if err != nil {
		return err
	}
	defer closeCache()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Searching %s...", res))
	spinner.Start()
	result, err := c.search(ctx, client, res, q, cf.refresh, of)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Found %d %s", result.resp.Len(), res), "hits", result.resp.Hits)

	return writeSearchResult(cmd, res, result, of)
}

// buildQuery builds the request payload and reports query warnings.
func (c *CLI) buildQuery(ctx context.Context, sf searchFlags) (*cmr.Query, error) {
	logger := loggerFromContext(ctx)
	q, err := sf.filter().Build()
	if err != nil {
		return nil, err
	}
	for _, w := range q.Warnings {
		logger.Warn(w)
		printWarning("%s", w)
	}
	logger.Debug("query built", "params", q.Encode())
	return q, nil
}

func (c *CLI) search(ctx context.Context, client *cmr.Client, res cmr.Resource, q *cmr.Query, refresh bool, of outputFlags) (*searchResult, error) {
	hitsBefore := c.cacheHits()
	resp, err := client.Search(ctx, res, q, refresh)
	if err != nil {
		return nil, err
	}
	result := &searchResult{resp: resp, cached: c.cacheHits() > hitsBefore}

	switch {
	case of.raw:
	case of.flat:
		if result.flat, err = resp.Flatten(); err != nil {
			return nil, err
		}
	default:
		if result.records, err = cmr.Project(resp, res.Fields()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// writeSearchResult prints the selected view to stdout, or to the files
// named by --output and --save.
func writeSearchResult(cmd *cobra.Command, res cmr.Resource, r *searchResult, of outputFlags) error {
	var (
		view  any
		table *pkgio.Table
	)
	switch {
	case of.raw:
		view = r.resp
	case of.flat:
		view = r.flat
		table = pkgio.NewTable(flatRows(r.flat), res.Fields())
	default:
		view = r.records
		table = pkgio.NewTable(recordRows(r.records), res.Fields())
	}

	count := r.resp.Len()
	if !of.raw && table != nil {
		count = len(table.Rows)
	}

	wrote := false
	if of.output != "" {
		if err := exportView(of.output, view, table); err != nil {
			return err
		}
		printSuccess("Wrote %d %s", count, res)
		printFile(of.output)
		wrote = true
	}
	if of.save {
		path, err := saveView(view, table, of.flat)
		if err != nil {
			return err
		}
		printSuccess("Saved %d %s", count, res)
		printFile(path)
		wrote = true
	}
	if !wrote {
		if err := pkgio.WriteJSON(view, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	printStats(count, r.resp.Hits, r.cached)
	return nil
}

func exportView(path string, view any, table *pkgio.Table) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if table == nil {
			return fmt.Errorf("csv output needs tabular results, drop --raw")
		}
		return table.ExportCSV(path)
	}
	return pkgio.ExportJSON(view, path)
}

// saveView writes the flattened view as CSV and every other view as JSON.
func saveView(view any, table *pkgio.Table, flat bool) (string, error) {
	now := time.Now()
	if flat && table != nil {
		return pkgio.SaveCSV(".", table, now)
	}
	return pkgio.SaveJSON(".", view, now)
}

func recordRows(rs cmr.Records) []map[string]any {
	rows := make([]map[string]any, len(rs))
	for i, r := range rs {
		rows[i] = r.Map()
	}
	return rows
}

func flatRows(rs []metadata.Record) []map[string]any {
	rows := make([]map[string]any, len(rs))
	for i, r := range rs {
		rows[i] = r
	}
	return rows
}
