// pkg/adapter/config/layers.go
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
)

const remoteFetchTimeout = 10 * time.Second

// layer is one precedence level of the store. Paths are lowercase and dotted,
// array elements use their index as a segment ("items.0.id").
type layer struct {
	kind     domainconfig.SourceKind
	location string
	values   map[string]string

	// lookup resolves paths that cannot be enumerated up front
	lookup func(path string) (string, bool)
}

var _ domainconfig.Source = (*layer)(nil)

func newLayer(kind domainconfig.SourceKind, location string) *layer {
	return &layer{kind: kind, location: location, values: make(map[string]string)}
}

func (l *layer) Kind() domainconfig.SourceKind { return l.kind }

func (l *layer) Location() string { return l.location }

func (l *layer) TryGet(path string) (string, bool) {
	path = strings.ToLower(path)
	if v, ok := l.values[path]; ok {
		return v, true
	}
	if l.lookup != nil {
		return l.lookup(path)
	}
	return "", false
}

func (l *layer) paths() []string {
	paths := make([]string, 0, len(l.values))
	for p := range l.values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// normalizeKey turns the key conventions of the different sources
// ("Logging__Level", "Logging:Level", "Logging/Level") into a dotted path.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "__", ".")
	key = strings.ReplaceAll(key, ":", ".")
	return strings.ReplaceAll(key, "/", ".")
}

func joinPath(prefix, key string) string {
	key = strings.ToLower(key)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// flattenValues converts nested settings into string leaves keyed by path.
func flattenValues(prefix string, value interface{}, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, child := range v {
			flattenValues(joinPath(prefix, k), child, out)
		}
	case map[interface{}]interface{}:
		for k, child := range v {
			flattenValues(joinPath(prefix, cast.ToString(k)), child, out)
		}
	case []interface{}:
		for i, child := range v {
			flattenValues(joinPath(prefix, strconv.Itoa(i)), child, out)
		}
	case []string:
		for i, child := range v {
			out[joinPath(prefix, strconv.Itoa(i))] = child
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix == "" {
			return
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			s = fmt.Sprint(v)
		}
		out[prefix] = s
	}
}

// envName is the variable viper looks up for path
func envName(prefix, path string) string {
	name := strings.ReplaceAll(path, ".", "_")
	if prefix != "" {
		name = prefix + "_" + name
	}
	return strings.ToUpper(name)
}

func defaultsLayer(defaults map[string]interface{}) *layer {
	l := newLayer(domainconfig.MemorySource, "")
	for k, v := range defaults {
		flattenValues(joinPath("", k), v, l.values)
	}
	return l
}

// readConfigFile decodes path with viper and returns its settings alongside
// the matching layer.
func readConfigFile(path string) (*layer, map[string]interface{}, error) {
	fv := viper.New()
	fv.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		fv.SetConfigType("yaml")
	}
	if err := fv.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	settings := fv.AllSettings()
	l := newLayer(domainconfig.FileSource, path)
	flattenValues("", settings, l.values)
	return l, settings, nil
}

// readDotEnv loads a dotenv file without exporting it to the process.
// Variables named after a known path (with or without the env prefix) map
// to that path, others use the "__" separator convention. A missing file
// yields no layer.
func readDotEnv(path, prefix string, known []string) (*layer, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading dotenv file: %w", err)
	}

	byEnvName := make(map[string]string, len(known)*2)
	for _, p := range known {
		byEnvName[envName("", p)] = p
		if prefix != "" {
			byEnvName[envName(prefix, p)] = p
		}
	}

	l := newLayer(domainconfig.FileSource, path)
	for name, value := range vars {
		if p, ok := byEnvName[strings.ToUpper(name)]; ok {
			l.values[p] = value
			continue
		}
		l.values[normalizeKey(trimEnvPrefix(name, prefix))] = value
	}
	return l, nil
}

func trimEnvPrefix(name, prefix string) string {
	if prefix == "" {
		return name
	}
	p := strings.ToUpper(prefix) + "_"
	if strings.HasPrefix(strings.ToUpper(name), p) {
		return name[len(p):]
	}
	return name
}

func fetchRemote(p domainconfig.RemoteProvider) (*layer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteFetchTimeout)
	defer cancel()

	values, err := p.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config %s: %w", p.Name(), err)
	}

	l := newLayer(domainconfig.AppConfigSource, p.Name())
	for k, v := range values {
		l.values[normalizeKey(k)] = v
	}
	return l, nil
}

// readKeyPerFile reads a directory where every regular file is one value,
// e.g. a mounted secrets volume. Hidden files are skipped and a missing
// directory yields no layer.
func readKeyPerFile(dir string) (*layer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading key-per-file directory: %w", err)
	}

	l := newLayer(domainconfig.KeyPerFileSource, dir)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading key file %s: %w", entry.Name(), err)
		}
		l.values[normalizeKey(entry.Name())] = strings.TrimRight(string(content), "\r\n")
	}
	return l, nil
}

// envLayer enumerates prefixed variables using the "__" separator and falls
// back to viper's naming for any other path.
func envLayer(prefix string) *layer {
	l := newLayer(domainconfig.EnvSource, "")
	p := strings.ToUpper(prefix) + "_"
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(strings.ToUpper(name), p) || len(name) == len(p) {
			continue
		}
		l.values[normalizeKey(name[len(p):])] = value
	}
	l.lookup = func(path string) (string, bool) {
		return os.LookupEnv(envName(prefix, path))
	}
	return l
}

// flagsLayer holds every flag that was explicitly set. Flag names are paths.
// Changed is checked per flag because flags shared with a cobra command are
// parsed through the command's own set.
func flagsLayer(flags *pflag.FlagSet) *layer {
	l := newLayer(domainconfig.CommandLineSource, "")
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		path := strings.ToLower(f.Name)
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			for i, item := range sv.GetSlice() {
				l.values[joinPath(path, strconv.Itoa(i))] = item
			}
			return
		}
		l.values[path] = f.Value.String()
	})
	return l
}

// setPath writes value into a nested settings map, creating or replacing
// intermediate maps as needed. Slices met on the way become index keyed maps.
func setPath(m map[string]interface{}, path string, value interface{}) {
	segments := strings.Split(path, ".")
	for _, seg := range segments[:len(segments)-1] {
		var next map[string]interface{}
		switch existing := m[seg].(type) {
		case map[string]interface{}:
			next = existing
		case map[interface{}]interface{}:
			next = cast.ToStringMap(existing)
		case []interface{}:
			next = make(map[string]interface{}, len(existing))
			for i, item := range existing {
				next[strconv.Itoa(i)] = item
			}
		default:
			next = make(map[string]interface{})
		}
		m[seg] = next
		m = next
	}
	m[segments[len(segments)-1]] = value
}
