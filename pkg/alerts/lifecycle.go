package alerts

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

var ErrAlertNotFound = errors.New("alerts: alert not found")

// Lifecycle moves alerts through acknowledge, notification and resolve.
type Lifecycle struct {
	alerts store.AlertStore
	clock  engine.Clock
	logger *zap.Logger
}

func NewLifecycle(alerts store.AlertStore, opts ...Option) *Lifecycle {
	o := buildOptions(opts)
	return &Lifecycle{
		alerts: alerts,
		clock:  o.clock,
		logger: common.GetLoggerWith(
			common.LoggerNameVesselCore,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryAlert),
		),
	}
}

func mapNotFound(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	return err
}

func (l *Lifecycle) Get(ctx context.Context, id string) (*models.Alert, error) {
	alert, err := l.alerts.GetAlert(ctx, id)
	return alert, mapNotFound(err, id)
}

func (l *Lifecycle) List(ctx context.Context, filter store.AlertFilter) ([]models.Alert, error) {
	return l.alerts.ListAlerts(ctx, filter)
}

func (l *Lifecycle) Stats(ctx context.Context) (models.AlertStats, error) {
	return l.alerts.CountAlerts(ctx)
}

// Acknowledge marks the alert seen. The alert stays active; repeated calls keep the first
// acknowledgement.
func (l *Lifecycle) Acknowledge(ctx context.Context, id, actor string) (*models.Alert, error) {
	alert, err := l.alerts.Acknowledge(ctx, id, actor, l.clock.Now())
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	l.logger.Info("Alert acknowledged", zap.String("alertId", id), zap.String("actor", actor))
	return alert, nil
}

// Resolve closes the alert. Resolution is terminal.
func (l *Lifecycle) Resolve(ctx context.Context, id, actor string) (*models.Alert, error) {
	alert, err := l.alerts.Resolve(ctx, id, actor, l.clock.Now())
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	l.logger.Info("Alert resolved", zap.String("alertId", id), zap.String("actor", actor))
	return alert, nil
}

// RecordNotification stores a successful delivery on one channel against the latest alert row.
func (l *Lifecycle) RecordNotification(ctx context.Context, id string, channel models.Channel, recipients []string) (*models.Alert, error) {
	alert, err := l.alerts.MarkNotification(ctx, id, channel, recipients, l.clock.Now())
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	l.logger.Info("Alert notification recorded",
		zap.String("alertId", id),
		zap.String("channel", string(channel)),
		zap.Int("recipients", len(recipients)),
	)
	return alert, nil
}

func (l *Lifecycle) RecordSoundPlayed(ctx context.Context, id string) (*models.Alert, error) {
	alert, err := l.alerts.MarkSoundPlayed(ctx, id, l.clock.Now())
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	return alert, nil
}
