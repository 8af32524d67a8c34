package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/jsonattach/pkg/storage"
)

const (
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"

	// ConfigDirEnv overrides the configuration directory when set.
	ConfigDirEnv = "JSONATTACH_CONFIG_DIR"
)

// Store backends a context can select.
const (
	StoreLocal  = "local"
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreS3     = "s3"
)

// Config represents the main configuration structure for a CLI app
type Config struct {
	// AppName is the application name
	AppName string `yaml:"-"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context names one entity directory: the store backend it lives in, the
// directory inside that store, and the record codec.
type Context struct {
	// Name is the context name
	Name string `yaml:"name"`

	// Store is the backend: local (default), memory, badger or s3.
	Store string `yaml:"store,omitempty"`

	// Dir is the local root for local stores and the database directory
	// for badger stores.
	Dir string `yaml:"dir,omitempty"`

	// Collection is the entity directory inside the store. Empty means
	// the store root.
	Collection string `yaml:"collection,omitempty"`

	// Codec is the record codec: json (default), lenient-json, yaml or
	// msgpack.
	Codec string `yaml:"codec,omitempty"`

	// S3 holds the bucket settings for s3 stores.
	S3 *S3Settings `yaml:"s3,omitempty"`

	// Extra stores free-form settings
	Extra map[string]string `yaml:"extra,omitempty"`
}

// S3Settings locates a bucket and the connection used to reach it.
type S3Settings struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix,omitempty"`

	storage.S3Config `yaml:",inline"`
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, err
		}
		configPath = paths.ConfigFile()
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			cfg.Contexts[name] = &Context{Name: name}
			continue
		}
		ctx.Name = name
	}

	cfg.AppName = appName
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds a new context, replacing any context with the same name.
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	if err := ctx.Validate(); err != nil {
		return fmt.Errorf("context %q: %w", name, err)
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the context by name, or current context if name is empty
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		return c.GetCurrentContext()
	}
	return c.GetContext(name)
}

// ListContexts returns all context names, sorted
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// StoreKind returns the context's store backend, defaulting to local.
func (ctx *Context) StoreKind() string {
	if ctx.Store == "" {
		return StoreLocal
	}
	return strings.ToLower(ctx.Store)
}

// Validate checks that the settings required by the store backend are
// present.
func (ctx *Context) Validate() error {
	switch ctx.StoreKind() {
	case StoreLocal, StoreMemory:
	case StoreBadger:
		if ctx.Dir == "" {
			return fmt.Errorf("badger store requires dir")
		}
	case StoreS3:
		if ctx.S3 == nil || ctx.S3.Bucket == "" {
			return fmt.Errorf("s3 store requires s3.bucket")
		}
	default:
		return fmt.Errorf("unknown store %q", ctx.Store)
	}
	return nil
}

// Set assigns a setting by its config key, e.g. "codec" or "s3.bucket".
// Unknown keys are stored in Extra.
func (ctx *Context) Set(key, value string) error {
	if rest, ok := strings.CutPrefix(key, "s3."); ok {
		return ctx.setS3(rest, value)
	}
	switch key {
	case "store":
		ctx.Store = value
	case "dir":
		ctx.Dir = value
	case "collection":
		ctx.Collection = value
	case "codec":
		ctx.Codec = value
	case "name":
		return fmt.Errorf("rename a context by adding it again under the new name")
	default:
		ctx.SetExtra(key, value)
	}
	return nil
}

func (ctx *Context) setS3(key, value string) error {
	if ctx.S3 == nil {
		ctx.S3 = &S3Settings{}
	}
	s := ctx.S3
	switch key {
	case "bucket":
		s.Bucket = value
	case "prefix":
		s.Prefix = value
	case "region":
		s.Region = value
	case "endpoint":
		s.Endpoint = value
	case "access_key_id":
		s.AccessKeyID = value
	case "secret_access_key":
		s.SecretAccessKey = value
	case "session_token":
		s.SessionToken = value
	case "path_style":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("s3.path_style: %w", err)
		}
		s.PathStyle = b
	default:
		return fmt.Errorf("unknown s3 setting %q", key)
	}
	return nil
}

// GetExtra returns an extra value for the context
func (ctx *Context) GetExtra(key string) string {
	if ctx.Extra == nil {
		return ""
	}
	return ctx.Extra[key]
}

// SetExtra sets an extra value for the context
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra[key] = value
}

// MaskSecret masks a credential for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
