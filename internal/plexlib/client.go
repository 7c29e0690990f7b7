package plexlib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	productName    = "plex-rating-utils"
	productVersion = "dev"
)

// ErrUnauthorized indicates the token was rejected by the server.
var ErrUnauthorized = errors.New("plex rejected the token")

// ErrSectionNotFound indicates the configured library does not exist
// on the server.
var ErrSectionNotFound = errors.New("library section not found")

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to one Plex server. Zero-value retry fields fall back
// to sane defaults; writes retry transient failures a bounded number
// of times before giving up.
type Client struct {
	baseURL  string
	token    string
	clientID string
	http     HTTPDoer
	section  Section

	RetryAttempts int
	RetryDelay    time.Duration
}

// NewClient constructs a client for the given server URL and token.
// Passing a nil doer uses a default http.Client with a timeout.
func NewClient(baseURL, token string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		clientID:      uuid.NewString(),
		http:          doer,
		RetryAttempts: 3,
		RetryDelay:    2 * time.Second,
	}
}

// statusError carries an HTTP failure so callers can tell transient
// server trouble from permanent rejections.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("plex returned %d: %s", e.code, e.body)
}

// retryable reports whether a write should be attempted again. Network
// failures and 5xx responses are transient; everything else is not.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return !errors.Is(err, ErrUnauthorized) && err != nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(bodyBytes))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := jsonDecode(resp.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doWrite issues a state-changing request with bounded retry. Plex
// rating writes are idempotent under retry of the same value, so
// repeating after an ambiguous failure is safe.
func (c *Client) doWrite(ctx context.Context, method, path string) error {
	attempts := c.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = c.doJSON(ctx, method, path, nil)
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("write failed after %d attempts: %w", attempts, err)
}
