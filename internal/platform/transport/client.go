// Package transport turns every HTTP exchange with the analysis backend into
// either a decoded payload or a *Error of a known Kind, whatever the backend
// or an intermediary proxy sends back.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"medibill/internal/platform/id"
	"medibill/internal/platform/logging"
)

const defaultMaxResponseBytes = 16 << 20

// Doer is the consumer-side view of Client.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

type Options struct {
	BaseURL string
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	// Timeout of zero leaves requests unbounded.
	Timeout          time.Duration
	MaxResponseBytes int64
	IDs              id.Generator
	Logger           hclog.Logger
}

type Client struct {
	baseURL          string
	http             *http.Client
	maxResponseBytes int64
	ids              id.Generator
	log              hclog.Logger
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	maxBytes := opts.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}
	ids := opts.IDs
	if ids == nil {
		ids = id.UUID{}
	}
	return &Client{
		baseURL:          strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		http:             httpClient,
		maxResponseBytes: maxBytes,
		ids:              ids,
		log:              logging.OrDiscard(opts.Logger).Named("transport"),
	}
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	// Authenticated marks protected endpoints: without Token the call fails
	// with KindAuthRequired and never reaches the network.
	Authenticated bool
	Token         string
	Body          io.Reader
	ContentType   string
	Headers       map[string]string
}

// JSONBody encodes v for Request.Body.
func JSONBody(v any) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(raw), nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req and decodes a successful JSON body into out (which may be
// nil). Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	token := strings.TrimSpace(req.Token)
	if req.Authenticated && token == "" {
		return AuthRequired()
	}

	url := c.baseURL + normalizePath(req.Path)
	requestID := c.ids.New()
	log := c.log.With("method", method, "url", url, "request_id", requestID)

	httpReq, err := http.NewRequestWithContext(ctx, method, url, req.Body)
	if err != nil {
		return failWrap(KindUnknown, 0, fmt.Sprintf("build request: %v", err), err)
	}
	httpReq.Header.Set("Accept", "application/json")
	// Tunnel providers serve a warning page instead of forwarding unless told otherwise.
	httpReq.Header.Set("ngrok-skip-browser-warning", "true")
	httpReq.Header.Set("Bypass-Tunnel-Reminder", "true")
	httpReq.Header.Set("X-Request-ID", requestID)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	log.Debug("requesting")
	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug("request abandoned", "error", ctxErr)
			return failWrap(KindUnknown, 0, ctxErr.Error(), ctxErr)
		}
		log.Warn("transport failure", "error", err)
		return failWrap(KindNetworkUnreachable, 0, msgNetwork, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	x := exchange{
		status:      resp.StatusCode,
		statusText:  http.StatusText(resp.StatusCode),
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}
	log = log.With("status", resp.StatusCode, "elapsed", time.Since(start))

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if readErr != nil {
		if !ok {
			// Unreadable error body: the status line is all there is.
			x.body = nil
			terr := classifyFailure(x)
			log.Debug("request failed", "kind", terr.Kind, "read_error", readErr)
			return terr
		}
		log.Warn("read response body", "error", readErr)
		return failWrap(KindUnknown, resp.StatusCode, fmt.Sprintf("read response body: %v", readErr), readErr)
	}
	if int64(len(body)) > c.maxResponseBytes {
		log.Warn("response exceeded limit", "limit", c.maxResponseBytes)
		return fail(KindMalformedResponse, resp.StatusCode, fmt.Sprintf("response exceeded limit (%d bytes)", c.maxResponseBytes))
	}

	if !ok {
		terr := classifyFailure(x)
		log.Debug("request failed", "kind", terr.Kind, "message", terr.Message)
		return terr
	}
	if err := classifySuccess(x, out); err != nil {
		log.Warn("unusable success response", "kind", KindOf(err), "content_type", x.contentType)
		return err
	}
	log.Debug("request succeeded")
	return nil
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
