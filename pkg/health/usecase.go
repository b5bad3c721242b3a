package health

import (
	"context"
	"errors"
	"fmt"
)

// StatusOK marks a dependency that answered its check.
const StatusOK = "ok"

// Checker pings one backing dependency of the service.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Report holds the outcome of every checker keyed by its name.
// Err joins the failures and is nil when all dependencies answered.
type Report struct {
	Checks map[string]string
	Err    error
}

// Ready reports whether the service can take traffic.
func (r Report) Ready() bool { return r.Err == nil }

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) Report
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

// Ready runs every checker so one broken dependency does not hide another.
func (s *service) Ready(ctx context.Context) Report {
	report := Report{Checks: make(map[string]string, len(s.checkers))}
	var errs []error
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			report.Checks[ch.Name()] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		report.Checks[ch.Name()] = StatusOK
	}
	report.Err = errors.Join(errs...)
	return report
}
