package titlepage

import (
	domainlog "github.com/damianoneill/go-titlepage/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-titlepage/pkg/domain/metrics"
	"github.com/damianoneill/go-titlepage/pkg/domain/redact"
)

// observedPolicy applies a redact.Policy and records which action was taken
// for each key. Values are never logged.
type observedPolicy struct {
	policy  *redact.Policy
	logger  domainlog.Logger
	metrics domainmetrics.Collector
}

func (o *observedPolicy) MaskValue(key, value string) string {
	masked, action := o.policy.Redact(key, value)

	o.logger.DebugWith("Redacted configuration value", domainlog.Fields{
		"key":    key,
		"action": string(action),
	})
	if o.metrics != nil {
		o.metrics.CollectRedaction(string(action))
	}

	return masked
}
