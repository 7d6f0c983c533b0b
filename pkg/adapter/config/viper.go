// pkg/adapter/config/viper.go
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
	"github.com/damianoneill/go-titlepage/pkg/domain/options"
)

// Verify interface implementation
var _ domainconfig.MaskedStore = (*ViperStore)(nil)

// ViperStore implements the Store interface using Viper. Besides the merged
// viper instance it keeps every source as a separate layer so the origin of
// each value can be reported.
type ViperStore struct {
	opts domainconfig.StoreOptions

	v         *viper.Viper
	layers    []*layer
	overrides map[string]interface{}
	mu        sync.RWMutex
}

// Factory creates Viper-backed stores
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) NewStore(opts ...domainconfig.Option) (domainconfig.MaskedStore, error) {
	storeOpts := domainconfig.StoreOptions{}
	if err := options.Apply(&storeOpts, opts...); err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	store := &ViperStore{
		opts:      storeOpts,
		overrides: make(map[string]interface{}),
	}
	if err := store.ReadConfig(); err != nil {
		return nil, err
	}

	return store, nil
}

// ReadConfig (re)loads every configuration source. Runtime overrides made
// with Set are kept.
func (s *ViperStore) ReadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.opts
	layers := []*layer{defaultsLayer(o.Defaults)}
	settings := make(map[string]interface{})

	// overlays contribute string values on top of the file settings
	var overlays []*layer

	if o.ConfigFile != "" {
		l, fileSettings, err := readConfigFile(o.ConfigFile)
		if err != nil {
			return err
		}
		layers = append(layers, l)
		settings = fileSettings
	}

	if o.DotEnvFile != "" {
		l, err := readDotEnv(o.DotEnvFile, o.EnvPrefix, knownPaths(layers))
		if err != nil {
			return err
		}
		if l != nil {
			layers = append(layers, l)
			overlays = append(overlays, l)
		}
	}

	for _, p := range o.RemoteProviders {
		l, err := fetchRemote(p)
		if err != nil {
			return err
		}
		layers = append(layers, l)
		overlays = append(overlays, l)
	}

	if o.KeyPerFileDir != "" {
		l, err := readKeyPerFile(o.KeyPerFileDir)
		if err != nil {
			return err
		}
		if l != nil {
			layers = append(layers, l)
			overlays = append(overlays, l)
		}
	}

	if o.EnvPrefix != "" {
		l := envLayer(o.EnvPrefix)
		layers = append(layers, l)
		overlays = append(overlays, l)
	}

	if o.Flags != nil {
		layers = append(layers, flagsLayer(o.Flags))
	}

	for _, l := range overlays {
		for _, p := range l.paths() {
			setPath(settings, p, l.values[p])
		}
	}

	v := viper.New()
	v.SetConfigType("yaml") // Default to YAML
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range o.Defaults {
		v.SetDefault(key, value)
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("merging config: %w", err)
	}
	if o.EnvPrefix != "" {
		v.SetEnvPrefix(o.EnvPrefix)
		v.AutomaticEnv()
	}
	if o.Flags != nil {
		if err := v.BindPFlags(o.Flags); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}
	}
	for key, value := range s.overrides {
		v.Set(key, value)
	}

	s.v = v
	s.layers = layers
	return nil
}

func knownPaths(layers []*layer) []string {
	var paths []string
	for _, l := range layers {
		paths = append(paths, l.paths()...)
	}
	return paths
}

// Root implements domainconfig.Tree
func (s *ViperStore) Root() domainconfig.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return buildTree(s.allLayers())
}

// Sources implements domainconfig.Tree, lowest precedence first
func (s *ViperStore) Sources() []domainconfig.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sources()
}

func (s *ViperStore) sources() []domainconfig.Source {
	layers := s.allLayers()
	sources := make([]domainconfig.Source, len(layers))
	for i, l := range layers {
		sources[i] = l
	}
	return sources
}

// allLayers appends the runtime overrides to the loaded layers
func (s *ViperStore) allLayers() []*layer {
	layers := append([]*layer(nil), s.layers...)
	if len(s.overrides) > 0 {
		l := newLayer(domainconfig.MemorySource, "")
		for k, v := range s.overrides {
			flattenValues(k, v, l.values)
		}
		layers = append(layers, l)
	}
	return layers
}

// Get methods implement Store interface
func (s *ViperStore) GetString(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

func (s *ViperStore) GetInt(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetInt(key), true
}

func (s *ViperStore) GetBool(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return false, false
	}
	return s.v.GetBool(key), true
}

func (s *ViperStore) GetDuration(key string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetDuration(key), true
}

func (s *ViperStore) GetFloat64(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetFloat64(key), true
}

func (s *ViperStore) GetStringSlice(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return nil, false
	}
	return s.v.GetStringSlice(key), true
}

func (s *ViperStore) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.ToLower(key)
	s.overrides[key] = value
	s.v.Set(key, value)
	return nil
}

func (s *ViperStore) IsSet(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.IsSet(key)
}

func (s *ViperStore) UnmarshalKey(key string, target interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.UnmarshalKey(key, target)
}

func (s *ViperStore) Unmarshal(target interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.Unmarshal(target)
}
