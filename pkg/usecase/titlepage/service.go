// pkg/usecase/titlepage/service.go

// Package titlepage serves the API title page: the flattened, whitelisted
// and redacted configuration rendered below the service identity.
package titlepage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
	domainlog "github.com/damianoneill/go-titlepage/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-titlepage/pkg/domain/metrics"
	"github.com/damianoneill/go-titlepage/pkg/domain/options"
	domainpage "github.com/damianoneill/go-titlepage/pkg/domain/page"
	"github.com/damianoneill/go-titlepage/pkg/domain/redact"
	domaintracing "github.com/damianoneill/go-titlepage/pkg/domain/tracing"
)

// Dependencies are the collaborators of the title page. Metrics and Tracer
// are optional.
type Dependencies struct {
	Config   domainconfig.MaskedStore
	Renderer domainpage.Renderer
	Logger   domainlog.Logger
	Metrics  domainmetrics.Collector
	Tracer   domaintracing.Provider
}

// Options configures what the title page shows.
type Options struct {
	// Whitelist selects the configuration keys shown. Empty shows everything.
	Whitelist domainconfig.Whitelist

	// Policy redacts the shown values. Nil uses redact.DefaultPolicy.
	Policy *redact.Policy

	// Page sets the static parts of the page: name, version, buttons, etc.
	Page []domainpage.Option
}

// Service builds and renders the title page.
type Service struct {
	deps   Dependencies
	policy *redact.Policy
	list   domainconfig.Whitelist
	page   domainpage.Options
}

func NewService(opts Options, deps Dependencies) (*Service, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config store is required")
	}
	if deps.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	pageOpts := domainpage.DefaultOptions()
	if err := options.Apply(&pageOpts, opts.Page...); err != nil {
		return nil, fmt.Errorf("applying page option: %w", err)
	}

	policy := opts.Policy
	if policy == nil {
		policy = redact.DefaultPolicy()
	}

	return &Service{
		deps:   deps,
		policy: policy,
		list:   opts.Whitelist,
		page:   pageOpts,
	}, nil
}

// Strategy returns the mask strategy used for one request. It applies the
// policy and reports every decision to the logger and metrics.
func (s *Service) Strategy(ctx context.Context) domainconfig.MaskStrategy {
	return &observedPolicy{
		policy:  s.policy,
		logger:  s.deps.Logger.WithContext(ctx),
		metrics: s.deps.Metrics,
	}
}

// Entries returns the whitelisted configuration with every value redacted.
func (s *Service) Entries(ctx context.Context) ([]domainconfig.FlatEntry, error) {
	ctx, end := s.start(ctx, "titlepage.entries")

	entries, err := s.deps.Config.GetMaskedEntries(s.list, s.Strategy(ctx))
	if err != nil {
		err = fmt.Errorf("reading configuration entries: %w", err)
	}
	end(err)

	return entries, err
}

// Render writes the complete title page to w.
func (s *Service) Render(ctx context.Context, w io.Writer) (err error) {
	ctx, end := s.start(ctx, "titlepage.render")
	started := time.Now()
	defer func() {
		end(err)
		if s.deps.Metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			s.deps.Metrics.CollectPageRender(outcome, time.Since(started).Seconds())
		}
	}()

	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}

	page := s.page
	page.Configurations = entries
	if err := s.deps.Renderer.Render(w, page); err != nil {
		return fmt.Errorf("rendering title page: %w", err)
	}

	return nil
}

// Handler serves the title page for GET and HEAD requests.
func (s *Service) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var buf bytes.Buffer
		if err := s.Render(r.Context(), &buf); err != nil {
			s.deps.Logger.WithContext(r.Context()).ErrorWith("Failed to render title page", domainlog.Fields{
				"error": err.Error(),
			})
			http.Error(w, "Title page unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = buf.WriteTo(w)
		}
	})
}

// ConfigHandler serves the same entries the page shows as JSON.
func (s *Service) ConfigHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.deps.Config.GetConfigHandler(s.list, s.Strategy(r.Context())).ServeHTTP(w, r)
	})
}

func (s *Service) start(ctx context.Context, name string) (context.Context, domaintracing.EndFunc) {
	if s.deps.Tracer == nil {
		return ctx, func(error) {}
	}
	return s.deps.Tracer.Start(ctx, name)
}
