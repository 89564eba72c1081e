package validation

import (
	"context"
	"log/slog"

	"github.com/mbecker/postal/internal/telemetry"
)

// FailoverValidator composes a primary and a secondary Validator into a
// strict two-tier waterfall: the secondary is consulted only when the
// primary fails, for any reason, and a success short-circuits. There is
// no retry within a tier and no circuit breaking across calls.
type FailoverValidator struct {
	primary   Validator
	secondary Validator
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// NewFailoverValidator creates the failover orchestrator.
func NewFailoverValidator(primary, secondary Validator, logger *slog.Logger, metrics *telemetry.Metrics) *FailoverValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FailoverValidator{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		metrics:   metrics,
	}
}

// Validate resolves one address through the waterfall. When both tiers
// fail, the per-provider reasons are logged here and then collapsed into
// a single combined failure; callers never see the underlying detail.
func (f *FailoverValidator) Validate(ctx context.Context, addr Address) Outcome {
	primary := f.primary.Validate(ctx, addr)
	if primary.Valid {
		f.metrics.Validation("primary", "ok")
		return primary
	}
	f.metrics.Validation("primary", "failed")
	f.metrics.Failover()
	f.logger.Warn("primary validation failed, falling back",
		"street", addr.StreetAddress,
		"reason", primary.Reason,
	)

	secondary := f.secondary.Validate(ctx, addr)
	if secondary.Valid {
		f.metrics.Validation("secondary", "ok")
		return secondary
	}
	f.metrics.Validation("secondary", "failed")
	f.logger.Warn("secondary validation failed",
		"street", addr.StreetAddress,
		"reason", secondary.Reason,
	)

	return Failed(ReasonBothFailed)
}
