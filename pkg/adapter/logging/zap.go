package logging

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domainlog "github.com/damianoneill/go-titlepage/pkg/domain/logging"
	"github.com/damianoneill/go-titlepage/pkg/domain/options"
)

var _ domainlog.LeveledLogger = (*ZapLogger)(nil)
var _ domainlog.RuntimeConfigurable = (*ZapLogger)(nil)

type ZapLogger struct {
	logger *zap.Logger
	atom   zap.AtomicLevel
}

type ZapOptions struct {
	domainlog.LoggerOptions
	Development bool
	OutputPaths []string
}

type ZapOption = options.Option[ZapOptions]

// WithDevelopment enables development mode
func WithDevelopment(enabled bool) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		o.Development = enabled
		return nil
	})
}

// WithOutputPaths replaces the default stdout sink, e.g. with "stderr" for
// command line tools that print results on stdout.
func WithOutputPaths(paths ...string) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		o.OutputPaths = paths
		return nil
	})
}

// Factory creates zap loggers. Options given to NewFactory apply to every
// logger it creates.
type Factory struct {
	zopts []ZapOption
}

func NewFactory(zopts ...ZapOption) *Factory {
	return &Factory{zopts: zopts}
}

func (f *Factory) NewLogger(opts ...domainlog.Option) (domainlog.LeveledLogger, error) {
	return f.NewLoggerWithOptions(opts, nil)
}

// NewLoggerWithOptions creates a logger with both domain and Zap options
func (f *Factory) NewLoggerWithOptions(dopts []domainlog.Option, zopts []ZapOption) (domainlog.LeveledLogger, error) {
	zapOpts := ZapOptions{
		LoggerOptions: domainlog.DefaultOptions(),
	}

	// Apply domain options
	if err := options.Apply(&zapOpts.LoggerOptions, dopts...); err != nil {
		return nil, fmt.Errorf("applying domain options: %w", err)
	}
	domainlog.WithDefaults(&zapOpts.LoggerOptions)

	// Apply zap-specific options, factory defaults first
	all := append(append([]ZapOption{}, f.zopts...), zopts...)
	if err := options.Apply(&zapOpts, all...); err != nil {
		return nil, fmt.Errorf("applying zap options: %w", err)
	}

	return f.createLogger(zapOpts)
}

func (f *Factory) createLogger(zopts ZapOptions) (*ZapLogger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	outputPaths := zopts.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(convertToZapLevel(zopts.Level)),
		Development:       zopts.Development,
		DisableStacktrace: !zopts.Development,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputPaths,
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     make(map[string]interface{}),
	}

	logger, err := config.Build(
		zap.AddCallerSkip(1),
		zap.AddCaller(),
	)
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}

	if zopts.ServiceName != "" {
		logger = logger.With(zap.String("service", zopts.ServiceName))
	}
	if zopts.Version != "" {
		logger = logger.With(zap.String("version", zopts.Version))
	}

	if len(zopts.Fields) > 0 {
		logger = logger.With(convertFields(zopts.Fields)...)
	}

	return &ZapLogger{
		logger: logger,
		atom:   config.Level,
	}, nil
}

// NewZapLogger wraps an existing zap logger. Its level is controlled by atom.
func NewZapLogger(logger *zap.Logger, atom zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{logger: logger, atom: atom}
}

func (l *ZapLogger) Debug(msg string) { l.logger.Debug(msg) }

func (l *ZapLogger) Info(msg string) { l.logger.Info(msg) }

func (l *ZapLogger) Warn(msg string) { l.logger.Warn(msg) }

func (l *ZapLogger) Error(msg string) { l.logger.Error(msg) }

func (l *ZapLogger) DebugWith(msg string, fields domainlog.Fields) {
	l.logger.Debug(msg, convertFields(fields)...)
}

func (l *ZapLogger) InfoWith(msg string, fields domainlog.Fields) {
	l.logger.Info(msg, convertFields(fields)...)
}

func (l *ZapLogger) WarnWith(msg string, fields domainlog.Fields) {
	l.logger.Warn(msg, convertFields(fields)...)
}

func (l *ZapLogger) ErrorWith(msg string, fields domainlog.Fields) {
	l.logger.Error(msg, convertFields(fields)...)
}

func (l *ZapLogger) With(fields domainlog.Fields) domainlog.Logger {
	return &ZapLogger{
		logger: l.logger.With(convertFields(fields)...),
		atom:   l.atom,
	}
}

func (l *ZapLogger) WithContext(ctx context.Context) domainlog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		spanCtx := span.SpanContext()
		if spanCtx.HasTraceID() {
			logger := l.logger.With(
				zap.String("trace_id", spanCtx.TraceID().String()),
				zap.String("span_id", spanCtx.SpanID().String()),
			)
			if spanCtx.IsSampled() {
				logger = logger.With(zap.Bool("sampled", true))
			}
			return &ZapLogger{
				logger: logger,
				atom:   l.atom,
			}
		}
	}
	return l
}

func (l *ZapLogger) SetLevel(level domainlog.Level) {
	l.atom.SetLevel(convertToZapLevel(level))
}

// GetLevel reads the shared atomic level, so changes made through the
// config handler are visible here.
func (l *ZapLogger) GetLevel() domainlog.Level {
	return convertFromZapLevel(l.atom.Level())
}

func (l *ZapLogger) GetConfigHandler() http.Handler {
	return l.atom
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func convertToZapLevel(level domainlog.Level) zapcore.Level {
	switch level {
	case domainlog.DebugLevel:
		return zapcore.DebugLevel
	case domainlog.InfoLevel:
		return zapcore.InfoLevel
	case domainlog.WarnLevel:
		return zapcore.WarnLevel
	case domainlog.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func convertFromZapLevel(level zapcore.Level) domainlog.Level {
	switch level {
	case zapcore.DebugLevel:
		return domainlog.DebugLevel
	case zapcore.WarnLevel:
		return domainlog.WarnLevel
	case zapcore.InfoLevel:
		return domainlog.InfoLevel
	default:
		return domainlog.ErrorLevel
	}
}

func convertFields(fields domainlog.Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
