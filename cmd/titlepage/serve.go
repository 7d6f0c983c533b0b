// cmd/titlepage/serve.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	domainlog "github.com/damianoneill/go-titlepage/pkg/domain/logging"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the title page, probes and metrics",
		Long: `Serve the title page at /, the redacted configuration as JSON at
/internal/config, Kubernetes probes under /internal and Prometheus metrics
at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, o)
		},
	}

	cmd.Flags().StringVar(&o.tracingEndpoint, "tracing-endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), "OTLP gRPC collector endpoint, tracing is off when empty")
	cmd.Flags().StringSliceVar(&o.tracingPropagators, "tracing-propagators", nil, "tracecontext, baggage, b3 or b3multi")
	cmd.Flags().StringToStringVar(&o.tracingHeaders, "tracing-header", nil, "header sent to the collector, e.g. api-key=secret")

	return cmd
}

func runServe(ctx context.Context, o *rootOptions) error {
	svc, err := o.newService(true)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			_ = svc.Shutdown(context.Background())
			return err
		}
		return nil
	case <-ctx.Done():
		svc.Logger().InfoWith("Received shutdown signal", domainlog.Fields{
			"reason": context.Cause(ctx).Error(),
		})
	}

	// Graceful shutdown
	return svc.Shutdown(context.Background())
}
