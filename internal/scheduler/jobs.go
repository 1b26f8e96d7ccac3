package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"staffingapi/internal/service"
)

// Pruner drops idle per-key state, e.g. the rate limiter's buckets.
type Pruner interface {
	Prune(idle time.Duration) int
}

// ComplianceReminders emails each agency owner a digest of expiring items.
// The service logs the pass summary and per-agency delivery failures.
func ComplianceReminders(svc service.ComplianceService) JobFunc {
	return func(ctx context.Context) error {
		_, err := svc.SendReminders(ctx)
		return err
	}
}

// PruneIdle evicts entries unused for longer than idle.
func PruneIdle(p Pruner, idle time.Duration, log logrus.FieldLogger) JobFunc {
	return func(context.Context) error {
		if n := p.Prune(idle); n > 0 {
			log.WithFields(logrus.Fields{"event": "limiter_pruned", "removed": n}).Debug("idle rate limiters pruned")
		}
		return nil
	}
}
