package qbittorrent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// successBody is the literal body qBittorrent returns when a torrent
// was accepted. Anything else is a rejection, even on a 200.
const successBody = "Ok."

// Client speaks the qBittorrent Web API (v2).
//
// A Client holds the session cookie issued at login in its transport,
// so Login must succeed on a given instance before AddTorrent can.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new qBittorrent client against the given base URL.
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidEndpoint, baseURL)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// endpoint builds the absolute URL for an API path.
func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// Login authenticates against the daemon. On success the server-issued
// session cookie is stored in the client's transport and rides along on
// every later request from this instance.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := fmt.Sprintf("username=%s&password=%s",
		url.QueryEscape(username), url.QueryEscape(password))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/v2/auth/login"), strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// qBittorrent refuses logins whose Referer does not match the host.
	req.Header.Set("Referer", c.baseURL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	c.logger.Debug().Str("url", c.baseURL.String()).Msg("Logged in to qBittorrent")
	return nil
}

// AddTorrent submits one torrent source to the daemon. Both source
// variants flow through the same multipart POST and the same success
// check: HTTP success AND the literal "Ok." body. An unauthenticated
// client gets rejected by the daemon and surfaces as a SubmissionError.
func (c *Client) AddTorrent(ctx context.Context, source TorrentSource) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := source.writePart(mw); err != nil {
		return fmt.Errorf("failed to encode torrent source: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/v2/torrents/add"), &buf)
	if err != nil {
		return fmt.Errorf("failed to create add request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit torrent: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read add response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || string(respBody) != successBody {
		return &SubmissionError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	c.logger.Debug().Str("source", source.Describe()).Msg("Torrent submitted to qBittorrent")
	return nil
}

// Version returns the daemon's application version as plain text.
// Diagnostic only, never gates submission.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint("/api/v2/app/version"), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create version request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("version request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("version request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read version response: %w", err)
	}

	return string(body), nil
}
