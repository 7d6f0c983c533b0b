// cmd/titlepage/root.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	configadapter "github.com/damianoneill/go-titlepage/pkg/adapter/config"
	httpadapter "github.com/damianoneill/go-titlepage/pkg/adapter/http"
	"github.com/damianoneill/go-titlepage/pkg/adapter/logging"
	"github.com/damianoneill/go-titlepage/pkg/adapter/metrics"
	pageadapter "github.com/damianoneill/go-titlepage/pkg/adapter/page"
	"github.com/damianoneill/go-titlepage/pkg/adapter/tracing"
	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
	"github.com/damianoneill/go-titlepage/pkg/usecase/bootstrap"
)

// rootOptions are the persistent flags shared by serve and config.
type rootOptions struct {
	name          string
	configFile    string
	envPrefix     string
	dotEnvFile    string
	keyPerFileDir string
	whitelist     []string
	redisURL      string
	redisKey      string

	tracingEndpoint    string
	tracingPropagators []string
	tracingHeaders     map[string]string

	// configFlags are named after configuration paths and form the CMD layer
	configFlags *pflag.FlagSet

	newRemote func(url, key string) (domainconfig.RemoteProvider, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithOptions(&rootOptions{
		newRemote: func(url, key string) (domainconfig.RemoteProvider, error) {
			return configadapter.NewRedisProvider(url, key)
		},
	})
}

func newRootCmdWithOptions(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "titlepage",
		Short: "Serve an API title page with redacted configuration",
		Long: `titlepage merges configuration from defaults, a config file, a dotenv file,
a redis hash, a key-per-file directory, the environment and the command line,
and shows every value with the source it came from. Values are redacted by a
prefix based policy before they are displayed.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.name, "name", "titlepage", "service name shown as the page heading")
	pf.StringVarP(&o.configFile, "config", "c", "", "configuration file (yaml, json or toml)")
	pf.StringVar(&o.envPrefix, "env-prefix", "TITLEPAGE", "prefix of environment variables, e.g. TITLEPAGE_LOGGING__LEVEL")
	pf.StringVar(&o.dotEnvFile, "dotenv", "", "dotenv file read without exporting it")
	pf.StringVar(&o.keyPerFileDir, "key-per-file", "", "directory with one file per configuration key")
	pf.StringSliceVar(&o.whitelist, "whitelist", nil, "configuration key prefixes to show (default all)")
	pf.StringVar(&o.redisURL, "redis-url", "", "redis url of the remote configuration hash")
	pf.StringVar(&o.redisKey, "redis-key", "titlepage", "redis hash holding remote configuration")

	o.configFlags = newConfigFlags()
	pf.AddFlagSet(o.configFlags)

	cmd.AddCommand(
		newServeCmd(o),
		newConfigCmd(o),
		newMaskCmd(),
		newObfuscateCmd(),
	)

	return cmd
}

// newConfigFlags returns flags that override configuration paths. Only
// flags given on the command line are applied.
func newConfigFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.Int("server.http.port", 8080, "HTTP listen port")
	fs.String("logging.level", "info", "log level: debug, info, warn or error")
	fs.String("titlepage.environment", "Production", "hosting environment shown on the page")
	fs.String("titlepage.description", "", "description shown below the heading")
	fs.String("titlepage.include", "", "html or text file shown next to the configuration")
	fs.StringSlice("titlepage.whitelist", nil, "configuration key prefixes to show")
	return fs
}

// dependencies wires the production adapters. Logs go to stderr so command
// output on stdout stays clean.
func (o *rootOptions) dependencies(withMetrics bool) (bootstrap.Dependencies, error) {
	renderer, err := pageadapter.NewRenderer()
	if err != nil {
		return bootstrap.Dependencies{}, fmt.Errorf("creating page renderer: %w", err)
	}

	deps := bootstrap.Dependencies{
		ConfigFactory: configadapter.NewFactory(),
		LoggerFactory: logging.NewFactory(logging.WithOutputPaths("stderr")),
		RouterFactory: httpadapter.NewFactory(),
		TracerFactory: tracing.NewFactory(),
		PageRenderer:  renderer,
	}
	if withMetrics {
		deps.MetricsFactory = metrics.NewMetricsFactory()
	}
	return deps, nil
}

func (o *rootOptions) bootstrapOptions() (bootstrap.Options, error) {
	opts := bootstrap.Options{
		ServiceName:        o.name,
		Version:            version,
		ConfigFile:         o.configFile,
		EnvPrefix:          o.envPrefix,
		DotEnvFile:         o.dotEnvFile,
		KeyPerFileDir:      o.keyPerFileDir,
		Flags:              o.configFlags,
		TracingEndpoint:    o.tracingEndpoint,
		TracingPropagators: o.tracingPropagators,
		TracingHeaders:     o.tracingHeaders,
	}

	// --whitelist is shorthand for the titlepage.whitelist path, so it
	// outranks the configuration file like any other flag
	if len(o.whitelist) > 0 {
		if err := o.configFlags.Set("titlepage.whitelist", strings.Join(o.whitelist, ",")); err != nil {
			return opts, fmt.Errorf("setting whitelist: %w", err)
		}
	}

	if o.redisURL != "" {
		provider, err := o.newRemote(o.redisURL, o.redisKey)
		if err != nil {
			return opts, fmt.Errorf("creating redis provider: %w", err)
		}
		opts.RemoteProviders = append(opts.RemoteProviders, provider)
	}

	return opts, nil
}

func (o *rootOptions) newService(withMetrics bool) (*bootstrap.Service, error) {
	opts, err := o.bootstrapOptions()
	if err != nil {
		return nil, err
	}
	deps, err := o.dependencies(withMetrics)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewService(opts, deps, nil)
}
