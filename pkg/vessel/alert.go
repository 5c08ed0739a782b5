package vessel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/metrics"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

func alertLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameVesselCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryAlert),
	)
}

func (v *Vessel) evaluateLevel(ctx context.Context, resource *models.Resource, actor string) (*models.Alert, []models.Alert, error) {
	if v.Threshold == nil {
		return nil, nil, fmt.Errorf("threshold service not available")
	}
	th, err := v.Threshold.EffectiveThresholds(ctx, resource.Type)
	if err != nil {
		return nil, nil, fmt.Errorf("effective thresholds for %s: %w", resource.Type, err)
	}

	resolved, err := v.Evaluator.ResolveRecovered(ctx, resource.Type, resource.Level, th, actor)
	if err != nil {
		return nil, resolved, err
	}
	for i := range resolved {
		v.Publisher.Publish(broadcast.Event{
			Type:      broadcast.EventAlertResolved,
			Resource:  resource.Type,
			Alert:     &resolved[i],
			Actor:     actor,
			Timestamp: v.clock.Now(),
		})
	}

	created, err := v.Evaluator.Evaluate(ctx, resource, resource.Level, th)
	if err != nil || created == nil {
		return nil, resolved, err
	}

	metrics.IncAlertCreated(string(created.Resource), string(created.Severity))
	v.Publisher.Publish(broadcast.Event{
		Type:      broadcast.EventAlertCreated,
		Resource:  resource.Type,
		Alert:     created,
		Timestamp: created.Timestamp,
	})
	if v.Notifier != nil {
		v.Notifier.Notify(*created)
	}

	return created, resolved, nil
}

func (v *Vessel) acknowledgeAlert(ctx context.Context, id, actor string) (*models.Alert, error) {
	alert, err := v.Lifecycle.Acknowledge(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	v.Publisher.Publish(broadcast.Event{
		Type:      broadcast.EventAlertAcknowledged,
		Resource:  alert.Resource,
		Alert:     alert,
		Actor:     actor,
		Timestamp: v.clock.Now(),
	})
	return alert, nil
}

func (v *Vessel) resolveAlert(ctx context.Context, id, actor string) (*models.Alert, error) {
	alert, err := v.Lifecycle.Resolve(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	alertLogger().Info("Alert resolved by crew", zap.String("alertId", id), zap.String("actor", actor))
	v.Publisher.Publish(broadcast.Event{
		Type:      broadcast.EventAlertResolved,
		Resource:  alert.Resource,
		Alert:     alert,
		Actor:     actor,
		Timestamp: v.clock.Now(),
	})
	return alert, nil
}

type IAlertImpl struct {
	vessel *Vessel
}

func (ia *IAlertImpl) EvaluateLevel(ctx context.Context, resource *models.Resource, actor string) (*models.Alert, []models.Alert, error) {
	return ia.vessel.evaluateLevel(ctx, resource, actor)
}

func (ia *IAlertImpl) ListAlerts(ctx context.Context, filter store.AlertFilter) ([]models.Alert, error) {
	return ia.vessel.Lifecycle.List(ctx, filter)
}

func (ia *IAlertImpl) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	return ia.vessel.Lifecycle.Get(ctx, id)
}

func (ia *IAlertImpl) AcknowledgeAlert(ctx context.Context, id, actor string) (*models.Alert, error) {
	return ia.vessel.acknowledgeAlert(ctx, id, actor)
}

func (ia *IAlertImpl) ResolveAlert(ctx context.Context, id, actor string) (*models.Alert, error) {
	return ia.vessel.resolveAlert(ctx, id, actor)
}

func (ia *IAlertImpl) RecordSoundPlayed(ctx context.Context, id string) (*models.Alert, error) {
	return ia.vessel.Lifecycle.RecordSoundPlayed(ctx, id)
}

func (ia *IAlertImpl) GetAlertStats(ctx context.Context) (models.AlertStats, error) {
	return ia.vessel.Lifecycle.Stats(ctx)
}

func (v *Vessel) GetIAlert() IAlert {
	return &IAlertImpl{vessel: v}
}
