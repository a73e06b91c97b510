package system

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// Identity carries device fields that come from configuration rather than the host.
type Identity struct {
	BundleID         string
	AttributionToken string
	AdvertisingID    string
}

// Probe collects static device information for the identity snapshot.
type Probe struct {
	ident Identity
	info  func(ctx context.Context) (*host.InfoStat, error)

	once sync.Once
	stat host.InfoStat
}

// NewProbe creates a probe reading host details through gopsutil.
func NewProbe(ident Identity) *Probe {
	return &Probe{ident: ident, info: host.InfoWithContext}
}

// AttributionToken returns the platform attribution token when one is configured.
func (p *Probe) AttributionToken() (string, bool) {
	return optional(p.ident.AttributionToken)
}

// AdvertisingID returns the attribution SDK identifier when one is configured.
func (p *Probe) AdvertisingID() (string, bool) {
	return optional(p.ident.AdvertisingID)
}

// BundleID returns the application bundle identifier when one is configured.
func (p *Probe) BundleID() (string, bool) {
	return optional(p.ident.BundleID)
}

// VendorID returns the stable host identifier, if the host exposes one.
func (p *Probe) VendorID() (string, bool) {
	return optional(p.host().HostID)
}

// OSVersion returns the platform version, falling back to the kernel version.
func (p *Probe) OSVersion() string {
	h := p.host()
	switch {
	case h.PlatformVersion != "":
		return h.PlatformVersion
	case h.KernelVersion != "":
		return h.KernelVersion
	default:
		return runtime.GOOS
	}
}

// DeviceModel returns the machine hardware name, as uname reports it.
func (p *Probe) DeviceModel() string {
	if arch := p.host().KernelArch; arch != "" {
		return arch
	}
	return runtime.GOARCH
}

// --- internal helpers ---

func (p *Probe) host() host.InfoStat {
	p.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stat, err := p.info(ctx); err == nil && stat != nil {
			p.stat = *stat
		}
	})
	return p.stat
}

func optional(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
