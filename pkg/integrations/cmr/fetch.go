package cmr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simplecmr/pkg/errors"
	"github.com/matzehuels/simplecmr/pkg/integrations"
	"github.com/matzehuels/simplecmr/pkg/observability"
)

const (
	DefaultMaxWorkers = 2                        // Download pool width
	DefaultAuthHost   = "urs.earthdata.nasa.gov" // Earthdata Login
	maxRedirects      = 10

	// DataURLType marks the RelatedUrls entry pointing at the data file.
	DataURLType = "GET DATA"
)

// Credentials are the Earthdata Login username and password used for
// downloads. They are shared read-only by all workers.
type Credentials struct {
	Username string
	Password string
}

// FetchOptions controls a Fetch call.
type FetchOptions struct {
	Dir        string // Existing destination directory (default: ".")
	Limit      int    // Download at most the first Limit records; 0 means all
	MaxWorkers int    // Pool width; values below 1 are clamped to 1 with a warning
}

// DefaultFetchOptions returns options writing to the current directory
// with DefaultMaxWorkers workers and no limit.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{Dir: ".", MaxWorkers: DefaultMaxWorkers}
}

// FetchResult is the outcome of one record's download.
type FetchResult struct {
	Index     int    // Position in the input records
	ConceptID string // Granule concept id, if the record has one
	URL       string // Data URL that was requested
	Path      string // Written file, empty on failure
	Bytes     int64  // Bytes written
	Err       error  // Nil on success
}

// FetchReport summarizes a Fetch call.
type FetchReport struct {
	Workers  int           // Effective pool width
	Warnings []string      // Non-fatal diagnostics, e.g. a clamped worker count
	Results  []FetchResult // One per dispatched record, in input order
}

// Failed returns the number of downloads that did not succeed.
func (r *FetchReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Fetcher downloads granule data files.
type Fetcher struct {
	transport http.RoundTripper
	authHost  string
	logger    *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTransport replaces the download transport.
func WithTransport(rt http.RoundTripper) FetcherOption {
	return func(f *Fetcher) { f.transport = rt }
}

// WithAuthHost sets the login host that credentials may be sent to in
// addition to each download's own host.
func WithAuthHost(host string) FetcherOption {
	return func(f *Fetcher) { f.authHost = host }
}

// WithFetchLogger sets the logger for download diagnostics.
func WithFetchLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{authHost: DefaultAuthHost}
	for _, opt := range opts {
		opt(f)
	}
	if f.transport == nil {
		f.transport = integrations.NewTransport()
	}
	if f.logger == nil {
		f.logger = log.New(io.Discard)
	}
	return f
}

// Fetch downloads the data file of the first opts.Limit records (all of
// them if Limit is 0) into opts.Dir on a pool of opts.MaxWorkers workers.
//
// Each record's download is independent: a failure (no data URL, network
// error, bad status, write error) is reported in that record's FetchResult
// and never stops the others. Nothing is retried. Files are written under
// the final path segment of the data URL, replacing any existing file.
//
// The returned error is non-nil only when the destination directory is
// unusable. When ctx is cancelled, records not yet started report the
// context error.
func (f *Fetcher) Fetch(ctx context.Context, records Records, creds Credentials, opts FetchOptions) (*FetchReport, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if fi, err := os.Stat(dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "destination directory %q", dir)
	} else if !fi.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "destination %q is not a directory", dir)
	}

	report := &FetchReport{Workers: opts.MaxWorkers}
	if report.Workers < 1 {
		msg := fmt.Sprintf("max workers %d is less than the minimum (1), using 1 worker", opts.MaxWorkers)
		report.Warnings = append(report.Warnings, msg)
		f.logger.Warn(msg)
		report.Workers = 1
	}

	n := len(records)
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}
	selected := records[:n]
	report.Results = make([]FetchResult, n)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < report.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					report.Results[i] = FetchResult{Index: i, Err: err}
					continue
				}
				report.Results[i] = f.fetchOne(ctx, i, selected[i], creds, dir)
			}
		}()
	}

dispatch:
	for i := range selected {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < n; j++ {
				report.Results[j] = FetchResult{Index: j, Err: ctx.Err()}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	return report, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, i int, rec Record, creds Credentials, dir string) FetchResult {
	res := FetchResult{Index: i}
	if id, ok := rec.Get("concept-id"); ok {
		res.ConceptID, _ = id.(string)
	}

	src, err := DataURL(rec)
	if err != nil {
		res.Err = err
		f.logger.Warn("fetch skipped", "index", i, "concept_id", res.ConceptID, "err", err)
		return res
	}
	res.URL = src

	hooks := observability.Fetch()
	hooks.OnFetchStart(ctx, src)
	start := time.Now()

	res.Path, res.Bytes, res.Err = f.download(ctx, src, creds, dir)
	hooks.OnFetchComplete(ctx, src, res.Bytes, time.Since(start), res.Err)

	if res.Err != nil {
		f.logger.Warn("fetch failed", "url", src, "err", res.Err)
	} else {
		f.logger.Debug("fetched", "url", src, "path", res.Path, "bytes", res.Bytes)
	}
	return res
}

// download resolves the login redirect chain for src, then requests the
// resolved URL through the same session and writes the body to dir.
func (f *Fetcher) download(ctx context.Context, src string, creds Credentials, dir string) (string, int64, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", 0, errors.Wrap(errors.ErrCodeMissingURL, err, "invalid data url %q", src)
	}
	name := path.Base(u.Path)
	if err := errors.ValidateFilename(name); err != nil {
		return "", 0, err
	}

	client := f.session(u.Host, creds)

	resolved, err := f.get(ctx, client, src, creds)
	if err != nil {
		return "", 0, err
	}
	finalURL := resolved.Request.URL
	resolved.Body.Close()

	final, finalCreds := finalURL.String(), Credentials{}
	if finalURL.Host == u.Host || f.isAuthHost(finalURL) {
		finalCreds = creds
	}
	resp, err := f.get(ctx, client, final, finalCreds)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", 0, &errors.RequestError{URL: final, StatusCode: resp.StatusCode}
	}

	dst := filepath.Join(dir, name)
	n, err := writeFile(dst, resp.Body)
	if err != nil {
		return "", n, err
	}
	return dst, n, nil
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, rawURL string, creds Credentials) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &errors.RequestError{URL: rawURL, Cause: err}
	}
	if creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &errors.RequestError{URL: rawURL, Cause: fmt.Errorf("%w: %v", integrations.ErrNetwork, err)}
	}
	return resp, nil
}

// session returns a client with its own cookie jar. Credentials follow
// redirects only to the origin host or the login host.
func (f *Fetcher) session(origin string, creds Credentials) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Transport: f.transport,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if creds.Username != "" && (req.URL.Host == origin || f.isAuthHost(req.URL)) {
				req.SetBasicAuth(creds.Username, creds.Password)
			} else {
				req.Header.Del("Authorization")
			}
			return nil
		},
	}
}

// isAuthHost reports whether u points at the login host. The configured
// host may carry a port.
func (f *Fetcher) isAuthHost(u *url.URL) bool {
	return strings.EqualFold(u.Host, f.authHost) || strings.EqualFold(u.Hostname(), f.authHost)
}

// writeFile streams r into dst through a temporary file in the same
// directory, replacing dst on success.
func writeFile(dst string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return n, err
	}
	return n, nil
}

// DataURL returns the URL of the first RelatedUrls entry of type
// "GET DATA". Returns a MISSING_URL error when there is none and an
// INVALID_URL error when that URL is not http or https.
func DataURL(rec Record) (string, error) {
	v, _ := rec.Get("RelatedUrls")
	urls, _ := v.([]any)
	for _, u := range urls {
		m, ok := u.(map[string]any)
		if !ok || m["Type"] != DataURLType {
			continue
		}
		if s, ok := m["URL"].(string); ok && s != "" {
			if err := errors.ValidateURL(s); err != nil {
				return "", err
			}
			return s, nil
		}
	}
	return "", errors.New(errors.ErrCodeMissingURL, "no %q url in record", DataURLType)
}
