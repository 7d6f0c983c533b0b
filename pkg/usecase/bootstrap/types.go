// pkg/usecase/bootstrap/types.go

package bootstrap

import (
	"time"

	"github.com/spf13/pflag"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
	domainhttp "github.com/damianoneill/go-titlepage/pkg/domain/http"
	domainlog "github.com/damianoneill/go-titlepage/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-titlepage/pkg/domain/metrics"
	domainpage "github.com/damianoneill/go-titlepage/pkg/domain/page"
	"github.com/damianoneill/go-titlepage/pkg/domain/redact"
	domaintracing "github.com/damianoneill/go-titlepage/pkg/domain/tracing"
)

// Dependencies contains all external dependencies required by the service.
type Dependencies struct {
	ConfigFactory  domainconfig.Factory
	LoggerFactory  domainlog.Factory
	RouterFactory  domainhttp.Factory
	TracerFactory  domaintracing.Factory
	MetricsFactory domainmetrics.Factory

	// PageRenderer is required unless the title page is disabled
	PageRenderer domainpage.Renderer
}

// TitlePageOptions configures the page served at "/". Every field can be
// overridden from configuration under the "titlepage" key.
type TitlePageOptions struct {
	Disabled bool

	// Whitelist selects the configuration keys shown; empty shows all
	Whitelist []string

	// Rules is the redaction policy; nil uses redact.DefaultRules
	Rules []redact.Rule

	// RevealLocalPassword shows passwords of connection strings that point
	// at a local server
	RevealLocalPassword bool

	Description string
	Environment string
	BuildMode   string
	BuiltTime   time.Time
	LinkButtons []domainpage.LinkButton
	IncludeFile string

	// RequestsPerSecond and Burst rate limit "/" per client; zero disables
	RequestsPerSecond float64
	Burst             int
}

// Options configures the bootstrap service.
type Options struct {
	// Service Identity
	ServiceName string
	Version     string

	// Configuration
	ConfigFile      string
	EnvPrefix       string
	ConfigDefaults  map[string]interface{}
	DotEnvFile      string
	KeyPerFileDir   string
	Flags           *pflag.FlagSet
	RemoteProviders []domainconfig.RemoteProvider

	// Logging
	LogLevel  domainlog.Level
	LogFields domainlog.Fields

	// HTTP Server
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Router/Observability
	ExcludeFromLogging []string
	ExcludeFromTracing []string
	ProbeHandlers      *domainhttp.ProbeHandlers

	// Tracing
	TracingEndpoint    string
	TracingSampleRate  float64
	TracingPropagators []string
	TracingHeaders     map[string]string // sent with every export, e.g. collector auth

	TitlePage TitlePageOptions
}
