package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"lectern/internal/faults"
	"lectern/internal/logging"
)

const (
	defaultUserAgent  = "bbb-video-downloader/1.0"
	defaultTimeout    = 10 * time.Minute
	defaultMaxResumes = 20
	copyBufferSize    = 64 * 1024
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// NotFound reports whether the server answered 404 or 410.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound || e.Code == http.StatusGone
}

// Client downloads files below a base URL into a local directory.
type Client struct {
	base       *url.URL
	outDir     string
	userAgent  string
	maxResumes int
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithTimeout bounds each HTTP request, including reading the body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithMaxResumes caps how many range requests continue one file.
func WithMaxResumes(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxResumes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a client that mirrors files from base into outDir.
func NewClient(base *url.URL, outDir string, opts ...Option) *Client {
	client := &Client{
		base:       base,
		outDir:     outDir,
		userAgent:  defaultUserAgent,
		maxResumes: defaultMaxResumes,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "fetch")
	return client
}

// Get downloads rel into the output directory and returns the local path and
// the number of bytes written. Interrupted transfers are resumed with a Range
// request until the advertised Content-Length is reached.
func (c *Client) Get(ctx context.Context, rel string) (string, int64, error) {
	clean, err := cleanRelative(rel)
	if err != nil {
		return "", 0, faults.Wrap(faults.ErrTransport, "fetch", "get", rel, err)
	}
	target := c.base.ResolveReference(&url.URL{Path: clean})
	outPath := filepath.Join(c.outDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", 0, faults.Wrap(faults.ErrTransport, "fetch", "get", "create "+filepath.Dir(outPath), err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", 0, faults.Wrap(faults.ErrTransport, "fetch", "get", "create "+outPath, err)
	}
	written, err := c.copyWithResume(ctx, target.String(), f)
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = faults.Wrap(faults.ErrTransport, "fetch", "get", "close "+outPath, closeErr)
	}
	if err != nil {
		_ = os.Remove(outPath)
		return "", 0, err
	}
	return outPath, written, nil
}

func (c *Client) copyWithResume(ctx context.Context, target string, f *os.File) (int64, error) {
	logger := logging.WithContext(ctx, c.logger)
	var (
		written int64
		total   int64 = -1
		resumes int
	)
	buf := make([]byte, copyBufferSize)

	for {
		resp, err := c.request(ctx, target, written)
		if err != nil {
			return written, err
		}

		switch {
		case written == 0:
			total = resp.ContentLength
			logger.Info("downloading",
				logging.String(logging.FieldEventType, "download_started"),
				logging.String("url", target),
				logging.Int64("bytes", total))
		case resp.StatusCode == http.StatusOK:
			// Range ignored; start over.
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				resp.Body.Close()
				return written, faults.Wrap(faults.ErrTransport, "fetch", "resume", f.Name(), err)
			}
			if err := f.Truncate(0); err != nil {
				resp.Body.Close()
				return written, faults.Wrap(faults.ErrTransport, "fetch", "resume", f.Name(), err)
			}
			written = 0
			total = resp.ContentLength
		}

		n, copyErr := io.CopyBuffer(f, resp.Body, buf)
		resp.Body.Close()
		written += n
		if ctxErr := ctx.Err(); ctxErr != nil {
			return written, faults.Wrap(faults.ErrTransport, "fetch", "get", target, ctxErr)
		}
		var writeErr *os.PathError
		if errors.As(copyErr, &writeErr) {
			return written, faults.Wrap(faults.ErrTransport, "fetch", "write", f.Name(), copyErr)
		}

		if total < 0 {
			if copyErr != nil {
				return written, faults.Wrap(faults.ErrTransport, "fetch", "get", target, copyErr)
			}
			return written, nil
		}
		if written >= total {
			return written, nil
		}

		resumes++
		if resumes > c.maxResumes {
			return written, faults.Wrap(faults.ErrTransport, "fetch", "get",
				fmt.Sprintf("%s incomplete after %d resumes (%d of %d bytes)", target, c.maxResumes, written, total), copyErr)
		}
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "download_resumed"),
			logging.String("url", target),
			logging.Int64("offset", written),
			logging.Int64("total", total),
			logging.Int("attempt", resumes),
		}
		if copyErr != nil {
			attrs = append(attrs, logging.Error(copyErr))
		}
		logger.Info("continuing download", logging.Args(attrs...)...)
	}
}

func (c *Client) request(ctx context.Context, target string, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, faults.Wrap(faults.ErrTransport, "fetch", "request", target, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, faults.Wrap(faults.ErrTransport, "fetch", "request", target, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, faults.Wrap(faults.ErrTransport, "fetch", "request", "", &StatusError{URL: target, Code: resp.StatusCode})
	}
	return resp, nil
}

func cleanRelative(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", errors.New("empty path")
	}
	if strings.Contains(rel, "://") || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("path %q is not relative", rel)
	}
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q escapes the recording", rel)
	}
	return clean, nil
}
