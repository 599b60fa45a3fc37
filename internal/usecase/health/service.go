// Package health coordinates component health checks for the ops endpoint.
package health

import "context"

// StoragePinger checks usage counter storage availability.
type StoragePinger interface {
	Ping(ctx context.Context) error
}

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Providers int                    `json:"registered_providers"`
}

// Service coordinates health checks.
type Service struct {
	storage   StoragePinger
	providers int
}

// New creates a Service with the storage backend and registered provider count.
func New(storage StoragePinger, providers int) *Service {
	return &Service{storage: storage, providers: providers}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.storage.Ping(ctx); err != nil {
		checks["storage"] = CheckError
	} else {
		checks["storage"] = CheckOK
	}

	if s.providers == 0 {
		checks["providers"] = CheckError
	} else {
		checks["providers"] = CheckOK
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Providers: s.providers}
}
