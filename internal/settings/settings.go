package settings

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ResourceName is the file name of the bundled settings resource.
const ResourceName = "AppSettings.yaml"

// Keys understood by the shell.
const (
	KeyRemoteURLField       = "FBRDUrl"
	KeyRemoteEndpointField  = "FBRDEndpoint"
	KeyBackendURLField      = "BackendURL"
	KeyBackendEndpointField = "BackendEndpoint"
	KeyHardcodedURL         = "HardcodedUrl"
)

var requiredKeys = []string{
	KeyRemoteURLField,
	KeyRemoteEndpointField,
	KeyBackendURLField,
	KeyBackendEndpointField,
}

//go:embed AppSettings.yaml
var bundled embed.FS

// Source resolves named settings from a static key/value resource.
// The resource is read on first use and cached for the lifetime of the Source.
type Source struct {
	fsys fs.FS
	name string

	once    sync.Once
	values  map[string]string
	loadErr error
}

// New creates a Source reading name from fsys.
func New(fsys fs.FS, name string) *Source {
	return &Source{fsys: fsys, name: name}
}

// Bundled returns a Source over the resource embedded in the binary.
func Bundled() *Source {
	return New(bundled, ResourceName)
}

// FromFile returns a Source over a resource on disk.
func FromFile(path string) *Source {
	return New(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// Get returns the value for key, or "" when the resource is missing,
// malformed, or has no string value for the key.
func (s *Source) Get(key string) string {
	s.once.Do(s.load)
	return s.values[key]
}

// RemoteURLField is the remote config field holding the candidate host.
func (s *Source) RemoteURLField() string { return s.Get(KeyRemoteURLField) }

// RemoteEndpointField is the remote config field holding the candidate path.
func (s *Source) RemoteEndpointField() string { return s.Get(KeyRemoteEndpointField) }

// BackendURLField is the backend response field holding the destination host.
func (s *Source) BackendURLField() string { return s.Get(KeyBackendURLField) }

// BackendEndpointField is the backend response field holding the destination path.
func (s *Source) BackendEndpointField() string { return s.Get(KeyBackendEndpointField) }

// HardcodedURL is the optional override destination.
func (s *Source) HardcodedURL() string { return s.Get(KeyHardcodedURL) }

// Diagnose lists conditions that silently degrade settings to empty values.
func (s *Source) Diagnose() []string {
	s.once.Do(s.load)

	var problems []string
	if s.loadErr != nil {
		problems = append(problems, s.loadErr.Error())
	}
	for _, key := range requiredKeys {
		if s.values[key] == "" {
			problems = append(problems, fmt.Sprintf("setting %s is empty", key))
		}
	}
	return problems
}

func (s *Source) load() {
	s.values = map[string]string{}

	data, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loadErr = fmt.Errorf("settings resource %s not found", s.name)
		} else {
			s.loadErr = fmt.Errorf("read settings resource %s: %w", s.name, err)
		}
		return
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		s.loadErr = fmt.Errorf("parse settings resource %s: %w", s.name, err)
		return
	}

	for key, value := range raw {
		if str, ok := value.(string); ok {
			s.values[key] = str
		}
	}
}
