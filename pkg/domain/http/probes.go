package http

import "sort"

// Probe statuses written by the router. Anything other than StatusOK is
// served with 503.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ProbeResponse is the JSON body of a probe endpoint.
type ProbeResponse struct {
	Status  string                 `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Healthy reports whether the probe passed.
func (r ProbeResponse) Healthy() bool {
	return r.Status == StatusOK
}

// ProbeCheck performs one health check.
type ProbeCheck func() ProbeResponse

// ProbeHandlers holds the checks behind /internal/health, /internal/ready
// and /internal/startup.
type ProbeHandlers struct {
	// LivenessCheck failing makes Kubernetes restart the container.
	LivenessCheck ProbeCheck

	// ReadinessCheck failing takes the pod out of the load balancer, e.g.
	// while a configuration source cannot be read.
	ReadinessCheck ProbeCheck

	StartupCheck ProbeCheck
}

// DefaultProbeHandlers returns handlers that always report ok.
func DefaultProbeHandlers() *ProbeHandlers {
	defaultCheck := func() ProbeResponse {
		return ProbeResponse{
			Status: StatusOK,
		}
	}

	return &ProbeHandlers{
		LivenessCheck:  defaultCheck,
		ReadinessCheck: defaultCheck,
		StartupCheck:   defaultCheck,
	}
}

// NewProbeResponse creates a ProbeResponse with the given values.
func NewProbeResponse(status string, details map[string]interface{}) ProbeResponse {
	return ProbeResponse{
		Status:  status,
		Details: details,
	}
}

// DependencyChecks combines named checks into one probe. Every check runs;
// the probe fails when any of them returns an error and the details hold
// "ok" or the error text per name.
func DependencyChecks(checks map[string]func() error) ProbeCheck {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func() ProbeResponse {
		status := StatusOK
		details := make(map[string]interface{}, len(names))
		for _, name := range names {
			if err := checks[name](); err != nil {
				status = StatusFailed
				details[name] = err.Error()
				continue
			}
			details[name] = StatusOK
		}
		return NewProbeResponse(status, details)
	}
}
