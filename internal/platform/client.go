package platform

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	apiKeyHeader = "x-goog-api-key"
	authVersion  = "FIS_v2"
)

// Config describes the platform token services.
type Config struct {
	MessagingURL     string
	InstallationsURL string
	APIKey           string
	AppID            string
	BundleID         string
	SDKVersion       string
	Sandbox          bool
}

// InstallationStore hands out the locally persisted installation identifier.
type InstallationStore interface {
	InstallationID() (string, error)
}

// Client talks to the push-token exchange and the installation service.
type Client struct {
	cfg    Config
	ids    InstallationStore
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a platform client.
func NewClient(cfg Config, ids InstallationStore, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		ids:    ids,
		http:   httpClient,
		logger: logger,
	}
}

type importRequest struct {
	Application string   `json:"application"`
	Sandbox     bool     `json:"sandbox"`
	APNSTokens  []string `json:"apns_tokens"`
}

// PushToken exchanges the device push credential for a messaging token.
func (c *Client) PushToken(ctx context.Context, credential []byte) (string, error) {
	if len(credential) == 0 {
		return "", domain.ErrNoCredential
	}
	if c.cfg.MessagingURL == "" {
		return "", errors.New("messaging service not configured")
	}

	body, err := json.Marshal(importRequest{
		Application: c.cfg.BundleID,
		Sandbox:     c.cfg.Sandbox,
		APNSTokens:  []string{hex.EncodeToString(credential)},
	})
	if err != nil {
		return "", fmt.Errorf("marshal token import: %w", err)
	}

	data, err := c.doRequest(ctx, c.cfg.MessagingURL, body)
	if err != nil {
		return "", fmt.Errorf("push token: %w", err)
	}

	result := gjson.GetBytes(data, "results.0")
	if status := result.Get("status").String(); status != "OK" {
		return "", fmt.Errorf("push token: import status %q", status)
	}
	token := result.Get("registration_token").String()
	if token == "" {
		return "", domain.ErrInvalidJSON{Reason: "registration_token missing"}
	}
	return token, nil
}

type installationRequest struct {
	FID         string `json:"fid"`
	AppID       string `json:"appId"`
	AuthVersion string `json:"authVersion"`
	SDKVersion  string `json:"sdkVersion"`
}

// InstallationID registers the local installation and returns the id the service assigned.
func (c *Client) InstallationID(ctx context.Context) (string, error) {
	if c.cfg.InstallationsURL == "" {
		return "", errors.New("installation service not configured")
	}

	fid, err := c.ids.InstallationID()
	if err != nil {
		return "", fmt.Errorf("local installation id: %w", err)
	}

	body, err := json.Marshal(installationRequest{
		FID:         fid,
		AppID:       c.cfg.AppID,
		AuthVersion: authVersion,
		SDKVersion:  c.cfg.SDKVersion,
	})
	if err != nil {
		return "", fmt.Errorf("marshal installation: %w", err)
	}

	data, err := c.doRequest(ctx, c.cfg.InstallationsURL, body)
	if err != nil {
		return "", fmt.Errorf("installation id: %w", err)
	}

	id := gjson.GetBytes(data, "fid").String()
	if id == "" {
		return "", domain.ErrInvalidJSON{Reason: "fid missing"}
	}
	return id, nil
}

// --- internal ---

func (c *Client) doRequest(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrMalformedURL{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.ErrTransport{Op: "POST " + url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrTransport{Op: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("platform service error",
			"url", url,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, domain.ErrInvalidResponse{Status: resp.StatusCode}
	}
	return respBody, nil
}
