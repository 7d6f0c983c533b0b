// pkg/usecase/bootstrap/init.go

package bootstrap

import (
	"errors"
	"fmt"
	"net/http"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
	domainhttp "github.com/damianoneill/go-titlepage/pkg/domain/http"
	domainlog "github.com/damianoneill/go-titlepage/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-titlepage/pkg/domain/metrics"
	domainpage "github.com/damianoneill/go-titlepage/pkg/domain/page"
	"github.com/damianoneill/go-titlepage/pkg/domain/redact"
	domaintracing "github.com/damianoneill/go-titlepage/pkg/domain/tracing"
	"github.com/damianoneill/go-titlepage/pkg/usecase/titlepage"
)

// Paths served by the bootstrap service besides the probes.
const (
	TitlePagePath     = "/"
	ConfigViewPath    = "/internal/config"
	LoggingConfigPath = "/internal/logging"
)

func (s *Service) initConfig(opts Options) error {
	defaults := map[string]interface{}{
		"server.http.port":          opts.Port,
		"server.http.read_timeout":  opts.ReadTimeout,
		"server.http.write_timeout": opts.WriteTimeout,
		"logging.level":             string(opts.LogLevel),
	}
	for k, v := range opts.ConfigDefaults {
		defaults[k] = v
	}

	cfgOpts := []domainconfig.Option{
		domainconfig.WithEnvPrefix(opts.EnvPrefix),
		domainconfig.WithDefaults(defaults),
	}
	if opts.ConfigFile != "" {
		cfgOpts = append(cfgOpts, domainconfig.WithConfigFile(opts.ConfigFile))
	}
	if opts.DotEnvFile != "" {
		cfgOpts = append(cfgOpts, domainconfig.WithDotEnvFile(opts.DotEnvFile))
	}
	if opts.KeyPerFileDir != "" {
		cfgOpts = append(cfgOpts, domainconfig.WithKeyPerFileDir(opts.KeyPerFileDir))
	}
	if opts.Flags != nil {
		cfgOpts = append(cfgOpts, domainconfig.WithFlags(opts.Flags))
	}
	if len(opts.RemoteProviders) > 0 {
		cfgOpts = append(cfgOpts, domainconfig.WithRemoteProviders(opts.RemoteProviders...))
	}

	store, err := s.deps.ConfigFactory.NewStore(cfgOpts...)
	if err != nil {
		return fmt.Errorf("creating config store: %w", err)
	}
	s.config = store
	return nil
}

func (s *Service) initLogger(opts Options) error {
	level := opts.LogLevel
	if configured, ok := s.config.GetString("logging.level"); ok && configured != "" {
		parsed, err := domainlog.ParseLevel(configured)
		if err != nil {
			return fmt.Errorf("reading logging.level: %w", err)
		}
		level = parsed
	}

	fields := domainlog.Fields{}
	for k, v := range opts.LogFields {
		fields[k] = v
	}

	logger, err := s.deps.LoggerFactory.NewLogger(
		domainlog.WithLevel(level),
		domainlog.WithServiceName(opts.ServiceName),
		domainlog.WithVersion(opts.Version),
		domainlog.WithFields(fields),
	)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	s.logger = logger
	return nil
}

func (s *Service) initTracing(opts Options) error {
	if opts.TracingEndpoint == "" {
		return nil
	}

	propagators := domaintracing.WithDefaultPropagators()
	if len(opts.TracingPropagators) > 0 {
		propagators = domaintracing.WithPropagatorTypes(opts.TracingPropagators)
	}

	tracingOpts := []domaintracing.Option{
		domaintracing.WithServiceName(opts.ServiceName),
		domaintracing.WithServiceVersion(opts.Version),
		domaintracing.WithCollectorEndpoint(opts.TracingEndpoint),
		domaintracing.WithExporterType(domaintracing.GRPCExporter),
		domaintracing.WithInsecure(true),
		domaintracing.WithSamplingRate(opts.TracingSampleRate),
		propagators,
	}
	if len(opts.TracingHeaders) > 0 {
		tracingOpts = append(tracingOpts, domaintracing.WithHeaders(opts.TracingHeaders))
	}

	provider, err := s.deps.TracerFactory.NewProvider(tracingOpts...)
	if err != nil {
		return fmt.Errorf("creating tracer: %w", err)
	}
	s.tracer = provider
	return nil
}

// initMetrics creates the collector shared by the router and the title page.
func (s *Service) initMetrics(opts Options) error {
	if s.deps.MetricsFactory == nil {
		return nil
	}

	collector, err := s.deps.MetricsFactory.NewCollector(
		domainmetrics.WithServiceName(opts.ServiceName),
		domainmetrics.WithLabels(map[string]string{
			"version": opts.Version,
		}),
	)
	if err != nil {
		return fmt.Errorf("creating metrics collector: %w", err)
	}
	s.metrics = collector
	return nil
}

func (s *Service) initTitlePage(opts Options) error {
	tp, err := s.loadTitlePageOptions(opts.TitlePage)
	if err != nil {
		return err
	}
	s.titlePageOpts = tp
	if tp.Disabled {
		return nil
	}

	if s.deps.PageRenderer == nil {
		return errors.New("page renderer is required unless the title page is disabled")
	}

	var rules []redact.Rule
	if tp.Rules != nil {
		rules = tp.Rules
	} else {
		rules = redact.DefaultRules()
	}
	policy, err := redact.NewPolicy(rules, redact.WithObfuscator(redact.Obfuscator{
		RevealLocalPassword: tp.RevealLocalPassword,
	}))
	if err != nil {
		return fmt.Errorf("creating redaction policy: %w", err)
	}

	pageOpts := []domainpage.Option{
		domainpage.WithName(opts.ServiceName),
		domainpage.WithVersion(opts.Version),
		domainpage.WithDescription(tp.Description),
		domainpage.WithIncludeFile(tp.IncludeFile),
	}
	if tp.Environment != "" {
		pageOpts = append(pageOpts, domainpage.WithEnvironment(tp.Environment))
	}
	if tp.BuildMode != "" {
		pageOpts = append(pageOpts, domainpage.WithBuildMode(tp.BuildMode))
	}
	if !tp.BuiltTime.IsZero() {
		pageOpts = append(pageOpts, domainpage.WithBuildTime(tp.BuiltTime))
	}
	for _, b := range tp.LinkButtons {
		pageOpts = append(pageOpts, domainpage.WithLinkButton(b.Name, b.URL))
	}

	svc, err := titlepage.NewService(titlepage.Options{
		Whitelist: domainconfig.Whitelist(tp.Whitelist),
		Policy:    policy,
		Page:      pageOpts,
	}, titlepage.Dependencies{
		Config:   s.config,
		Renderer: s.deps.PageRenderer,
		Logger:   s.logger.With(domainlog.Fields{"component": "titlepage"}),
		Metrics:  s.metrics,
		Tracer:   s.tracer,
	})
	if err != nil {
		return fmt.Errorf("creating title page: %w", err)
	}
	s.titlePage = svc
	return nil
}

// loadTitlePageOptions overlays the "titlepage" configuration section on
// the programmatic options.
func (s *Service) loadTitlePageOptions(tp TitlePageOptions) (TitlePageOptions, error) {
	if v, ok := s.config.GetBool("titlepage.disabled"); ok {
		tp.Disabled = v
	}
	if v, ok := s.config.GetStringSlice("titlepage.whitelist"); ok {
		tp.Whitelist = v
	}
	if s.config.IsSet("titlepage.redaction.rules") {
		var rules []redact.Rule
		if err := s.config.UnmarshalKey("titlepage.redaction.rules", &rules); err != nil {
			return tp, fmt.Errorf("reading titlepage.redaction.rules: %w", err)
		}
		tp.Rules = rules
	}
	if v, ok := s.config.GetBool("titlepage.redaction.reveal_local_password"); ok {
		tp.RevealLocalPassword = v
	}

	for key, target := range map[string]*string{
		"titlepage.description": &tp.Description,
		"titlepage.environment": &tp.Environment,
		"titlepage.build_mode":  &tp.BuildMode,
		"titlepage.include":     &tp.IncludeFile,
	} {
		if v, ok := s.config.GetString(key); ok && v != "" {
			*target = v
		}
	}

	if s.config.IsSet("titlepage.buttons") {
		var buttons []domainpage.LinkButton
		if err := s.config.UnmarshalKey("titlepage.buttons", &buttons); err != nil {
			return tp, fmt.Errorf("reading titlepage.buttons: %w", err)
		}
		tp.LinkButtons = buttons
	}

	if v, ok := s.config.GetFloat64("titlepage.rate_limit.requests_per_second"); ok {
		tp.RequestsPerSecond = v
	}
	if v, ok := s.config.GetInt("titlepage.rate_limit.burst"); ok {
		tp.Burst = v
	}

	return tp, nil
}

func (s *Service) initRouter(opts Options) error {
	probeHandlers := opts.ProbeHandlers
	if probeHandlers == nil {
		probeHandlers = s.createProbeHandlers(opts)
	}

	excludeLogging := opts.ExcludeFromLogging
	if excludeLogging == nil {
		excludeLogging = []string{"/internal/*", "/metrics"}
	}
	excludeTracing := opts.ExcludeFromTracing
	if excludeTracing == nil {
		excludeTracing = []string{"/internal/*", "/metrics"}
	}

	routerOpts := []domainhttp.Option{
		domainhttp.WithService(opts.ServiceName, opts.Version),
		domainhttp.WithLogger(s.logger),
		domainhttp.WithProbeHandlers(probeHandlers),
		domainhttp.WithObservabilityExclusions(excludeLogging, excludeTracing),
	}

	if s.metrics != nil {
		routerOpts = append(routerOpts, domainhttp.WithMetricsCollector(s.metrics))
	}

	if s.tracer != nil {
		routerOpts = append(routerOpts, domainhttp.WithTracingProvider(s.tracer))
	}

	if tp := s.titlePageOpts; !tp.Disabled && tp.RequestsPerSecond > 0 {
		burst := tp.Burst
		if burst < 1 {
			burst = 1
		}
		routerOpts = append(routerOpts, domainhttp.WithRateLimit(tp.RequestsPerSecond, burst, TitlePagePath))
	}

	router, err := s.deps.RouterFactory.NewRouter(routerOpts...)
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}
	s.router = router

	if s.titlePage != nil {
		router.Handle(TitlePagePath, s.titlePage.Handler())
		router.Method(http.MethodGet, ConfigViewPath, s.titlePage.ConfigHandler())
		s.logger.InfoWith("Registered title page", domainlog.Fields{
			"path":        TitlePagePath,
			"config_path": ConfigViewPath,
		})
	}

	// Add logger config endpoint if supported
	if configurable, ok := s.logger.(domainlog.RuntimeConfigurable); ok {
		router.Mount(LoggingConfigPath, configurable.GetConfigHandler())
		s.logger.InfoWith("Registered logger config endpoint", domainlog.Fields{
			"path": LoggingConfigPath,
		})
	}

	return nil
}
