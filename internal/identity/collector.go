package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TokenSource resolves the two identifiers that need a remote round trip.
type TokenSource interface {
	PushToken(ctx context.Context, credential []byte) (string, error)
	InstallationID(ctx context.Context) (string, error)
}

// DeviceInfo exposes identifiers that are read synchronously from the device.
type DeviceInfo interface {
	AttributionToken() (string, bool)
	AdvertisingID() (string, bool)
	VendorID() (string, bool)
	OSVersion() string
	DeviceModel() string
	BundleID() (string, bool)
}

// Collector builds the identity snapshot.
type Collector struct {
	tokens TokenSource
	device DeviceInfo
	logger *slog.Logger
}

// NewCollector creates a collector over the given capabilities.
func NewCollector(tokens TokenSource, device DeviceInfo, logger *slog.Logger) *Collector {
	return &Collector{tokens: tokens, device: device, logger: logger}
}

// Collect fetches the push token and the installation id concurrently, waits
// for both, then reads the remaining device fields. A failed sub-fetch leaves
// its field present but empty; Collect itself never fails.
func (c *Collector) Collect(ctx context.Context, pushCredential []byte) domain.IdentitySnapshot {
	var pushToken, installID string

	var g errgroup.Group
	g.Go(func() error {
		token, err := c.tokens.PushToken(ctx, pushCredential)
		if err != nil {
			c.logger.Warn("push token unavailable", "err", err)
			return nil
		}
		pushToken = token
		return nil
	})
	g.Go(func() error {
		id, err := c.tokens.InstallationID(ctx)
		if err != nil {
			c.logger.Warn("installation id unavailable", "err", err)
			return nil
		}
		installID = id
		return nil
	})
	_ = g.Wait()

	snapshot := domain.IdentitySnapshot{
		AppInstanceID: domain.Some(installID),
		PushToken:     domain.Some(pushToken),
		DeviceUUID:    c.deviceUUID(),
		OSVersion:     c.device.OSVersion(),
		DeviceModel:   c.device.DeviceModel(),
	}
	if v, ok := c.device.AttributionToken(); ok {
		snapshot.AttToken = domain.Some(v)
	}
	if v, ok := c.device.AdvertisingID(); ok {
		snapshot.AdvertisingID = domain.Some(v)
	}
	if v, ok := c.device.BundleID(); ok {
		snapshot.BundleID = domain.Some(v)
	}

	c.logger.Debug("identity collected",
		"device_uuid", snapshot.DeviceUUID,
		"has_push_token", pushToken != "",
		"has_install_id", installID != "",
	)
	return snapshot
}

func (c *Collector) deviceUUID() string {
	if id, ok := c.device.VendorID(); ok && id != "" {
		return strings.ToLower(id)
	}
	return uuid.NewString()
}
