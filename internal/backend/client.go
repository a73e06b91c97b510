package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/tidwall/gjson"
)

// Param is one key/value pair of the identity payload.
type Param struct {
	Key   string
	Value string
}

// Params flattens a snapshot into the ordered identity payload.
// Absent fields are omitted.
func Params(s domain.IdentitySnapshot) []Param {
	var params []Param
	add := func(key string, value *string) {
		if value != nil {
			params = append(params, Param{Key: key, Value: *value})
		}
	}

	add("att_token", s.AttToken)
	add("appsflyer_id", s.AdvertisingID)
	add("app_instance_id", s.AppInstanceID)
	add("uuid", domain.Some(strings.ToLower(s.DeviceUUID)))
	add("osVersion", domain.Some(s.OSVersion))
	add("devModel", domain.Some(s.DeviceModel))
	add("bundle", s.BundleID)
	add("fcm_token", s.PushToken)
	return params
}

// Encode joins params as key=value pairs separated by '&'. Values are not escaped.
func Encode(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// RequestURL builds baseURL?data=<base64 payload>.
// The encoding obscures the payload; it does not protect it.
func RequestURL(baseURL string, s domain.IdentitySnapshot) (string, error) {
	encoded := base64.StdEncoding.EncodeToString([]byte(Encode(Params(s))))
	raw := baseURL + "?data=" + encoded

	u, err := url.Parse(raw)
	if err != nil {
		return "", domain.ErrMalformedURL{URL: raw, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", domain.ErrMalformedURL{URL: raw, Err: fmt.Errorf("missing scheme or host")}
	}
	return raw, nil
}

// Client posts the identity payload to the backend and reads back the destination.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a backend client.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{http: httpClient, logger: logger}
}

// Resolve sends the snapshot to baseURL and returns "https://" + host + endpoint,
// where host and endpoint are read from the response fields urlKey and endpointKey.
func (c *Client) Resolve(ctx context.Context, baseURL string, s domain.IdentitySnapshot, urlKey, endpointKey string) (string, error) {
	endpoint, err := RequestURL(baseURL, s)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", domain.ErrMalformedURL{URL: endpoint, Err: err}
	}

	c.logger.Debug("resolving destination", "url", baseURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", domain.ErrTransport{Op: "POST resolve", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.ErrTransport{Op: "read resolve response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(body) == 0 {
		c.logger.Warn("backend error", "status", resp.StatusCode, "body", string(body))
		return "", domain.ErrInvalidResponse{Status: resp.StatusCode}
	}

	return destination(body, urlKey, endpointKey)
}

func destination(body []byte, urlKey, endpointKey string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", domain.ErrInvalidJSON{Reason: "body is not valid json"}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return "", domain.ErrInvalidJSON{Reason: "body is not an object"}
	}

	fields := doc.Map()
	host, endpoint := fields[urlKey], fields[endpointKey]
	if host.Type != gjson.String || host.Str == "" {
		return "", domain.ErrInvalidJSON{Reason: fmt.Sprintf("field %q missing or empty", urlKey)}
	}
	if endpoint.Type != gjson.String || endpoint.Str == "" {
		return "", domain.ErrInvalidJSON{Reason: fmt.Sprintf("field %q missing or empty", endpointKey)}
	}
	return "https://" + host.Str + endpoint.Str, nil
}
