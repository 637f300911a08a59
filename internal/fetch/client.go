package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/airslate-oss/setup-specmatic/pkg/release"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const (
	MaxRedirects     = 3
	defaultUserAgent = "setup-specmatic"
)

type Client struct {
	http      *retryablehttp.Client
	userAgent string
}

type Option func(*Client)

// WithRetries enables retries of failed requests. Requests are not retried by default.
func WithRetries(retries int, waitMin time.Duration) Option {
	return func(c *Client) {
		if retries > 0 {
			c.http.RetryMax = retries
		}
		if waitMin > 0 {
			c.http.RetryWaitMin = waitMin
			if c.http.RetryWaitMax < waitMin {
				c.http.RetryWaitMax = waitMin
			}
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.http.Logger = &leveledLogger{log: log}
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

func New(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 0
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.CheckRedirect = checkRedirect
	c := &Client{
		http:      rc,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) > MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", MaxRedirects)
	}
	return nil
}

// StandardClient returns a plain *http.Client backed by the retryable transport.
func (c *Client) StandardClient() *http.Client {
	return c.http.StandardClient()
}

func (c *Client) get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &release.NetworkError{Kind: release.Transport, URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, release.NewStatusError(url, resp.StatusCode)
	}
	return resp, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url, token string, v any) error {
	headers := map[string]string{"Accept": "application/json"}
	if token != "" {
		headers["Authorization"] = "token " + token
	}
	resp, err := c.get(ctx, url, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// Download stores the body of url in a new file inside dir and returns its path.
func (c *Client) Download(ctx context.Context, url, dir string) (string, error) {
	resp, err := c.get(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create download directory: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, "download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if err == nil && resp.ContentLength >= 0 && n != resp.ContentLength {
		err = fmt.Errorf("unexpected content length: %d (should be %d)", n, resp.ContentLength)
	} else if err != nil {
		err = fmt.Errorf("failed to write %s: %w", f.Name(), err)
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write %s: %w", f.Name(), closeErr)
	}
	if err != nil {
		// partial downloads are never handed out
		_ = os.Remove(f.Name())
		return "", &release.NetworkError{Kind: release.Transport, URL: url, Err: err}
	}
	return f.Name(), nil
}

type leveledLogger struct {
	log logrus.FieldLogger
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).Error(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).Warn(msg)
}
