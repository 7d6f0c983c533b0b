package config

// SourceKind classifies a configuration layer. It is only used to annotate
// flattened entries with where their effective value came from.
type SourceKind int

const (
	// MemorySource covers built-in defaults and runtime overrides
	MemorySource SourceKind = iota

	// FileSource is a layer backed by a file on disk (config file, dotenv file)
	FileSource

	// EnvSource is the process environment
	EnvSource

	// CommandLineSource holds flags explicitly set on the command line
	CommandLineSource

	// KeyPerFileSource is a directory where each file name is a key
	KeyPerFileSource

	// AppConfigSource is a remote configuration service
	AppConfigSource

	// KeyVaultSource is a remote secret vault
	KeyVaultSource
)

// String returns a lowercase name for the kind, used in logs.
func (k SourceKind) String() string {
	switch k {
	case FileSource:
		return "file"
	case EnvSource:
		return "env"
	case CommandLineSource:
		return "cmd"
	case KeyPerFileSource:
		return "keyfile"
	case AppConfigSource:
		return "appconfig"
	case KeyVaultSource:
		return "keyvault"
	default:
		return "memory"
	}
}

// Node is a read-only view of one node of the configuration tree.
type Node interface {
	// Key is the segment name. A decimal integer key denotes an array index.
	Key() string

	// Path is the full path used to resolve the node against sources.
	Path() string

	// Children returns the child nodes in a stable order.
	Children() []Node
}

// Source is one precedence-ranked provider of key/value pairs.
type Source interface {
	// Kind classifies the source for display
	Kind() SourceKind

	// Location identifies the backing resource, e.g. a file path.
	// It may be empty.
	Location() string

	// TryGet returns the value the source holds for path, if any.
	TryGet(path string) (string, bool)
}

// Tree exposes a merged configuration as a node tree plus the sources it was
// merged from, ordered from lowest to highest precedence.
type Tree interface {
	Root() Node
	Sources() []Source
}

// Resolve scans sources from highest to lowest precedence and returns the
// first value found for path along with its owning source.
func Resolve(sources []Source, path string) (string, Source, bool) {
	for i := len(sources) - 1; i >= 0; i-- {
		if value, ok := sources[i].TryGet(path); ok {
			return value, sources[i], true
		}
	}
	return "", nil, false
}
