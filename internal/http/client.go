package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies dmx to the catalog API.
const DefaultUserAgent = "dmx/1.0 (Music Search Client)"

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	// Timeout bounds a single request. Default 30s.
	Timeout time.Duration

	// UserAgent is sent with every request. Default DefaultUserAgent.
	UserAgent string

	// RequestsPerSecond and Burst configure the request limiter.
	// Default 5 requests per second with a burst of 10.
	RequestsPerSecond float64
	Burst             int

	// MaxRetries is the number of retries after the first attempt for
	// 429, 5xx and transport errors. Default 3; negative disables retries.
	MaxRetries int

	// InitialBackoff is the first retry delay. Default 500ms.
	InitialBackoff time.Duration

	// Logger receives retry diagnostics. Default no-op.
	Logger *zap.Logger
}

// Client wraps HTTP operations with dmx-specific configuration.
//
// Client provides:
//   - Configured User-Agent header
//   - Client-side rate limiting shared by every request
//   - Retries with exponential backoff for 429, 5xx and transport errors
//   - File download with progress tracking
//   - File size retrieval via HEAD requests
//
// Example usage:
//
//	client := NewClient(Options{RequestsPerSecond: 5, Burst: 10})
//
//	// Fetch JSON from the catalog API
//	body, err := client.Get(ctx, "https://api.deezer.com/search/track?q=daft+punk")
//
//	// Download a preview with progress
//	err = client.DownloadFile(ctx, previewURL, "/tmp/preview.mp3", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	initial    time.Duration
	logger     *zap.Logger
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		maxRetries: opts.MaxRetries,
		initial:    opts.InitialBackoff,
		logger:     opts.Logger,
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The context is cancelled while waiting for the limiter or a retry
//   - Every attempt fails at the transport level
//   - The response status is not 200 OK (*StatusError)
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.retry(ctx, url, func() ([]byte, error) {
		resp, err := c.do(ctx, http.MethodGet, url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	})
}

// GetString performs a GET request and returns the response body as a string.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// Returns an error if the server doesn't return a Content-Length header.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}
	return resp.ContentLength, nil
}

// DownloadFile downloads a file to destPath with an optional progress callback.
//
// The content is streamed to a temporary file next to destPath and renamed
// into place once complete, so an interrupted download never leaves a
// truncated file at destPath. Pass a nil onProgress to disable tracking.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmpPath := destPath + ".part"
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, destPath)
}

// DownloadBytes downloads a small file (cover art) into memory.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// do waits for the limiter and sends one request. Non-200 responses are
// closed and reported as *StatusError.
func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
	}
	return resp, nil
}

func (c *Client) retry(ctx context.Context, url string, op func() ([]byte, error)) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initial
	policy.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryWithData(func() ([]byte, error) {
		attempt++
		data, err := op()
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, backoff.Permanent(err)
		}
		c.logger.Debug("request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return nil, err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx))
}
