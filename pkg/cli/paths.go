package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths provides access to an app's configuration and data directories
type Paths struct {
	// AppName is the application name
	AppName string

	// BaseDir holds the app directory. It is os.UserConfigDir() unless
	// overridden through ConfigDirEnv.
	BaseDir string

	// override is set when BaseDir came from ConfigDirEnv, in which case
	// the app directory is BaseDir itself.
	override bool
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return &Paths{AppName: appName, BaseDir: dir, override: true}, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return &Paths{AppName: appName, BaseDir: base}, nil
}

// AppDir returns the app-specific directory (<config>/<app>)
func (p *Paths) AppDir() string {
	if p.override {
		return p.BaseDir
	}
	return filepath.Join(p.BaseDir, p.AppName)
}

// ConfigFile returns the config file path (<config>/<app>/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// DataDir returns the data directory (<config>/<app>/data), the default
// root for local stores.
func (p *Paths) DataDir() string {
	return filepath.Join(p.AppDir(), "data")
}

// DataPath returns a path within the data directory
func (p *Paths) DataPath(name string) string {
	return filepath.Join(p.DataDir(), name)
}

// EnsureDataDir creates the data directory if it doesn't exist
func (p *Paths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir(), 0755)
}
