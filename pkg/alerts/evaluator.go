// Package alerts raises, deduplicates and manages low-level alerts for vessel resources.
package alerts

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

type Option func(*options)

type options struct {
	clock engine.Clock
}

func WithClock(clock engine.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: engine.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Evaluator turns a post-update level into at most one new alert.
type Evaluator struct {
	alerts store.AlertStore
	clock  engine.Clock
	logger *zap.Logger
}

func NewEvaluator(alerts store.AlertStore, opts ...Option) *Evaluator {
	o := buildOptions(opts)
	return &Evaluator{
		alerts: alerts,
		clock:  o.clock,
		logger: common.GetLoggerWith(
			common.LoggerNameVesselCore,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryAlert),
		),
	}
}

// SeverityFor classifies a level. ok is false when the level is above both thresholds.
func SeverityFor(level float64, th models.Thresholds) (models.Severity, bool) {
	switch {
	case level <= th.Critical:
		return models.SeverityCritical, true
	case level <= th.Warning:
		return models.SeverityWarning, true
	default:
		return "", false
	}
}

func Message(resource models.ResourceType, severity models.Severity, level float64) string {
	if severity == models.SeverityCritical {
		return fmt.Sprintf("%s level critically low at %.1f%%", resource, level)
	}
	return fmt.Sprintf("%s level low at %.1f%%", resource, level)
}

// EstimatedDepletion projects now + level/rate hours. The level percentage is divided by the raw
// rate value, so the estimate is only meaningful when both share a scale. Nil for a zero rate and
// for horizons a time.Duration cannot hold.
func EstimatedDepletion(now time.Time, level float64, rate models.ConsumptionRate) *time.Time {
	if rate.Value <= 0 || math.IsInf(rate.Value, 0) || math.IsNaN(rate.Value) {
		return nil
	}
	nanos := level / rate.Value * float64(time.Hour)
	if math.IsNaN(nanos) || nanos >= math.MaxInt64 {
		return nil
	}
	at := now.Add(time.Duration(max(nanos, 0)))
	return &at
}

// Evaluate creates an alert when newLevel crosses a threshold and no unresolved alert of the same
// resource and severity exists. It returns nil when nothing was created.
func (e *Evaluator) Evaluate(ctx context.Context, resource *models.Resource, newLevel float64, th models.Thresholds) (*models.Alert, error) {
	severity, ok := SeverityFor(newLevel, th)
	if !ok {
		return nil, nil
	}

	existing, err := e.alerts.FindUnresolvedAlert(ctx, resource.Type, severity)
	if err != nil {
		return nil, fmt.Errorf("look up unresolved %s alert for %s: %w", severity, resource.Type, err)
	}
	if existing != nil {
		e.logger.Debug("Alert suppressed, unresolved alert exists",
			zap.String("resource", string(resource.Type)),
			zap.String("severity", string(severity)),
			zap.String("alertId", existing.ID),
		)
		return nil, nil
	}

	now := e.clock.Now()
	alert := &models.Alert{
		Resource:           resource.Type,
		Severity:           severity,
		Level:              newLevel,
		Message:            Message(resource.Type, severity, newLevel),
		Timestamp:          now,
		EstimatedDepletion: EstimatedDepletion(now, newLevel, resource.ConsumptionRate),
	}

	e.logger.Info("Alert found", zap.Reflect("alert", alert))

	if err := e.alerts.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}

	e.logger.Info("Alert saved", zap.String("alertId", alert.ID))

	return alert, nil
}

// ResolveRecovered resolves active alerts of the resource whose condition no longer holds.
func (e *Evaluator) ResolveRecovered(ctx context.Context, resource models.ResourceType, level float64, th models.Thresholds, actor string) ([]models.Alert, error) {
	active, err := e.alerts.ListUnresolved(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("list unresolved alerts for %s: %w", resource, err)
	}

	var resolved []models.Alert
	for _, alert := range active {
		limit := th.Warning
		if alert.Severity == models.SeverityCritical {
			limit = th.Critical
		}
		if level <= limit {
			continue
		}

		updated, err := e.alerts.Resolve(ctx, alert.ID, actor, e.clock.Now())
		if err != nil {
			return resolved, fmt.Errorf("resolve alert %s: %w", alert.ID, err)
		}
		e.logger.Info("Alert resolved after recovery",
			zap.String("alertId", alert.ID),
			zap.String("resource", string(resource)),
			zap.Float64("level", level),
		)
		resolved = append(resolved, *updated)
	}
	return resolved, nil
}
