package remoteconfig

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/tidwall/gjson"
)

// Client reads a JSON document from a Realtime-Database style REST endpoint.
type Client struct {
	baseURL string
	path    string
	auth    string

	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a remote config client. An empty path reads the root node.
func NewClient(baseURL, path, auth string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		path:    path,
		auth:    auth,
		http:    httpClient,
		logger:  logger,
	}
}

// Fetch performs one read of the document and returns its top-level fields.
func (c *Client) Fetch(ctx context.Context) (map[string]any, error) {
	endpoint, err := c.endpoint()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.ErrMalformedURL{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.ErrTransport{Op: "GET remote config", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrTransport{Op: "read remote config", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("remote config error", "status", resp.StatusCode, "body", string(body))
		return nil, domain.ErrInvalidResponse{Status: resp.StatusCode}
	}

	if !gjson.ValidBytes(body) {
		return nil, domain.ErrInvalidPayload{}
	}
	doc, ok := gjson.ParseBytes(body).Value().(map[string]any)
	if !ok {
		return nil, domain.ErrInvalidPayload{}
	}
	return doc, nil
}

// Candidate extracts the host and path stored under hostKey and pathKey.
// It reports false when either is missing, not a string, or empty.
func Candidate(doc map[string]any, hostKey, pathKey string) (domain.RemoteConfigResult, bool) {
	host, _ := doc[hostKey].(string)
	path, _ := doc[pathKey].(string)
	result := domain.RemoteConfigResult{Host: host, Path: path}
	return result, result.Usable()
}

func (c *Client) endpoint() (string, error) {
	raw := c.baseURL + "/" + c.path + ".json"
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("missing scheme or host")
		}
		return "", domain.ErrMalformedURL{URL: raw, Err: err}
	}
	if c.auth != "" {
		q := u.Query()
		q.Set("auth", c.auth)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
