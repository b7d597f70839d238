package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckEmpty indicates a reachable catalog without schools.
	CheckEmpty CheckResult = "empty"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Schools int
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	catalog Catalog
}

// New creates a Service. db is nil when schools are served from the flat file.
func New(db DBPinger, catalog Catalog) *Service {
	return &Service{db: db, catalog: catalog}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Checks: make(map[string]CheckResult, 2)}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			r.Checks["database"] = CheckError
		} else {
			r.Checks["database"] = CheckOK
		}
	}

	if s.catalog != nil {
		n, err := s.catalog.Count(ctx)
		switch {
		case err != nil:
			r.Checks["catalog"] = CheckError
		case n == 0:
			r.Checks["catalog"] = CheckEmpty
		default:
			r.Checks["catalog"] = CheckOK
			r.Schools = n
		}
	}

	failed := 0
	for _, v := range r.Checks {
		if v == CheckError {
			failed++
		}
	}
	switch {
	case failed == 0:
		r.Status = Healthy
	case failed == len(r.Checks):
		r.Status = Unhealthy
	default:
		r.Status = Degraded
	}
	return r
}
