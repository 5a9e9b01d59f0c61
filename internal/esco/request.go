package esco

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spigell/talentbridge/internal/utils"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"

	retryDelay = time.Second
)

var wait = utils.WaitFor

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("esco api error: %s (%s)", e.Status, e.URL)
}

// Temporary reports whether the request may succeed when repeated.
func (e *StatusError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError
}

// getJSON requests path and decodes the body into a generic document.
// Server errors are retried with a linear backoff; anything else fails at once.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values) (map[string]any, error) {
	endpoint := c.APIURL + path

	for attempt := 1; ; attempt++ {
		doc, err := c.fetch(ctx, endpoint, q)
		if err == nil {
			return doc, nil
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || !statusErr.Temporary() || attempt >= c.maxRetries {
			return nil, err
		}

		delay := time.Duration(attempt) * retryDelay
		c.logger.Warn("retrying esco request",
			zap.String("url", statusErr.URL),
			zap.Int("status", statusErr.Code),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) fetch(ctx context.Context, endpoint string, q url.Values) (map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: req.URL.String()}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	var doc map[string]any
	if err := json.NewDecoder(reader).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding esco response: %w", err)
	}

	return doc, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// dig walks nested objects and returns the value at the end of the path.
func dig(doc map[string]any, path ...string) any {
	var current any = doc
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[key]
	}
	return current
}
