package config

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/damianoneill/go-titlepage/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_config.go -package=mocks github.com/damianoneill/go-titlepage/pkg/domain/config Store,MaskedStore,Factory,RemoteProvider

// Store defines the core configuration operations
type Store interface {
	// Get methods return zero value and false if not found
	GetString(key string) (string, bool)
	GetInt(key string) (int, bool)
	GetBool(key string) (bool, bool)
	GetDuration(key string) (time.Duration, bool)
	GetFloat64(key string) (float64, bool)
	GetStringSlice(key string) ([]string, bool)

	// Set stores a runtime override, which wins over every other source
	Set(key string, value interface{}) error

	// IsSet checks if a key exists
	IsSet(key string) bool

	// Load configuration
	ReadConfig() error

	// Unmarshal into structs
	UnmarshalKey(key string, target interface{}) error
	Unmarshal(target interface{}) error
}

// RemoteProvider fetches flat key/value pairs from a remote configuration
// service. Keys use dotted paths, e.g. "database.host".
type RemoteProvider interface {
	Name() string
	Fetch(ctx context.Context) (map[string]string, error)
}

// StoreOptions holds configuration for stores
type StoreOptions struct {
	ConfigFile string
	EnvPrefix  string
	Defaults   map[string]interface{}

	// DotEnvFile is read without touching the process environment
	DotEnvFile string

	// KeyPerFileDir holds one file per key, "__" separating path segments
	KeyPerFileDir string

	// Flags contributes every flag that was explicitly set
	Flags *pflag.FlagSet

	// RemoteProviders are fetched in order, later ones winning
	RemoteProviders []RemoteProvider
}

// Option is a store option
type Option = options.Option[StoreOptions]

// WithConfigFile sets the config file path
func WithConfigFile(path string) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.ConfigFile = path
		return nil
	})
}

// WithEnvPrefix sets the environment variable prefix
func WithEnvPrefix(prefix string) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.EnvPrefix = prefix
		return nil
	})
}

// WithDefaults sets default configuration values
func WithDefaults(defaults map[string]interface{}) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.Defaults = defaults
		return nil
	})
}

// WithDotEnvFile adds a dotenv file layer
func WithDotEnvFile(path string) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.DotEnvFile = path
		return nil
	})
}

// WithKeyPerFileDir adds a key-per-file directory layer
func WithKeyPerFileDir(dir string) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.KeyPerFileDir = dir
		return nil
	})
}

// WithFlags adds a command line layer
func WithFlags(flags *pflag.FlagSet) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.Flags = flags
		return nil
	})
}

// WithRemoteProviders adds remote configuration layers
func WithRemoteProviders(providers ...RemoteProvider) Option {
	return options.OptionFunc[StoreOptions](func(o *StoreOptions) error {
		o.RemoteProviders = append(o.RemoteProviders, providers...)
		return nil
	})
}

// Factory creates new store instances
type Factory interface {
	NewStore(opts ...Option) (MaskedStore, error)
}
