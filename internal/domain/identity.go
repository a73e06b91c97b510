package domain

// IdentitySnapshot is the immutable bundle of device identifiers gathered once per run.
// A nil pointer marks a field as absent; it is left out of the identity payload.
type IdentitySnapshot struct {
	AttToken      *string
	AdvertisingID *string
	AppInstanceID *string
	DeviceUUID    string
	OSVersion     string
	DeviceModel   string
	BundleID      *string
	PushToken     *string
}

// Some returns a pointer to s for use in optional snapshot fields.
func Some(s string) *string {
	return &s
}

// RemoteConfigResult is the host and path pair read from the remote config document.
type RemoteConfigResult struct {
	Host string
	Path string
}

// Usable reports whether both parts are present.
func (r RemoteConfigResult) Usable() bool {
	return r.Host != "" && r.Path != ""
}

// URL returns the candidate URL built from the pair.
func (r RemoteConfigResult) URL() string {
	return "https://" + r.Host + r.Path
}
