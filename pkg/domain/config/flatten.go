package config

import (
	"strconv"
	"strings"
)

// FlatEntry is one emitted configuration value. Key carries the source
// annotation, e.g. "Logging/LogLevel/Default (ENV)".
type FlatEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Whitelist is a set of case-insensitive key prefixes. An empty whitelist
// accepts every key.
type Whitelist []string

// Allows reports whether key starts with any of the whitelisted prefixes.
func (w Whitelist) Allows(key string) bool {
	if len(w) == 0 {
		return true
	}
	lower := strings.ToLower(key)
	for _, prefix := range w {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// Flatten walks the tree under root depth-first and returns the resolved,
// whitelisted values in child enumeration order.
//
// A node that resolves to a value and passes the whitelist is emitted and its
// children are not visited. Any other node is descended into. Nodes no source
// can resolve are skipped silently.
func Flatten(root Node, sources []Source, whitelist Whitelist) []FlatEntry {
	if root == nil {
		return nil
	}
	var entries []FlatEntry
	flattenChildren(root.Children(), "", sources, whitelist, &entries)
	return entries
}

func flattenChildren(children []Node, parentKey string, sources []Source, whitelist Whitelist, entries *[]FlatEntry) {
	for _, child := range children {
		totalKey := BuildKey(parentKey, child.Key())
		value, source, ok := Resolve(sources, child.Path())
		if ok && whitelist.Allows(totalKey) {
			*entries = append(*entries, FlatEntry{
				Key:   totalKey + " (" + SourceTag(source) + ")",
				Value: value,
			})
			continue
		}
		flattenChildren(child.Children(), totalKey, sources, whitelist, entries)
	}
}

// UndecoratedKey strips the source annotation from a flattened key.
func UndecoratedKey(key string) string {
	if !strings.HasSuffix(key, ")") {
		return key
	}
	if i := strings.LastIndex(key, " ("); i >= 0 {
		return key[:i]
	}
	return key
}

// BuildKey joins a child segment onto its parent's display key. Array
// indexes are bracketed, members of an array element are dotted and all
// other nesting uses "/".
func BuildKey(parentKey, childKey string) string {
	if isIndex(childKey) {
		if parentKey == "" {
			return childKey
		}
		return parentKey + "[" + childKey + "]"
	}
	switch {
	case parentKey == "":
		return childKey
	case strings.HasSuffix(parentKey, "]"):
		return parentKey + "." + childKey
	default:
		return parentKey + "/" + childKey
	}
}

func isIndex(key string) bool {
	_, err := strconv.ParseUint(key, 10, 64)
	return err == nil
}

// SourceTag returns the provenance annotation shown for a source.
func SourceTag(source Source) string {
	if source == nil {
		return "SYS/MEM"
	}
	switch source.Kind() {
	case FileSource:
		return source.Location()
	case EnvSource:
		return "ENV"
	case CommandLineSource:
		return "CMD"
	case KeyPerFileSource:
		return "KeyFile"
	case AppConfigSource:
		return "Azure AppCfg"
	case KeyVaultSource:
		return "KeyVault"
	default:
		return "SYS/MEM"
	}
}
