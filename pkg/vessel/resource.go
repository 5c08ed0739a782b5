package vessel

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	"liyu1981.xyz/vessel-resource-service/pkg/metrics"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

type writePolicy int

const (
	// failure discards the change and is returned to the caller
	writeStrict writePolicy = iota
	// failure keeps the change in memory until the next successful write
	writeBestEffort
	writeDeferred
)

func resourceLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameVesselCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryResource),
	)
}

func cloneResource(r *models.Resource) *models.Resource {
	c := *r
	c.History = slices.Clone(r.History)
	c.Deliveries = slices.Clone(r.Deliveries)
	if r.LastConsumption != nil {
		at := *r.LastConsumption
		c.LastConsumption = &at
	}
	return &c
}

func (v *Vessel) slotFor(t models.ResourceType) (*slot, error) {
	s, ok := v.slots[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, t)
	}
	return s, nil
}

// latestLocked returns a private copy of the newest state: the unflushed copy when there is one,
// otherwise the stored row. Callers hold s.mu.
func (v *Vessel) latestLocked(ctx context.Context, t models.ResourceType, s *slot) (*models.Resource, error) {
	if s.dirty != nil {
		return cloneResource(s.dirty), nil
	}
	r, err := v.Store.FindResource(ctx, t)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, t)
	}
	return r, err
}

func (v *Vessel) mutate(
	ctx context.Context,
	t models.ResourceType,
	actor string,
	policy writePolicy,
	fn func(state *models.Resource) (engine.Result, error),
) (models.ActionResult, error) {
	logger := resourceLogger()

	s, err := v.slotFor(t)
	if err != nil {
		return models.ActionResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := v.latestLocked(ctx, t, s)
	if err != nil {
		return models.ActionResult{}, err
	}

	res, err := fn(state)
	if errors.Is(err, engine.ErrUnknownAction) {
		logger.Warn("Unknown action ignored", zap.String("resource", string(t)), zap.String("actor", actor))
		return models.ActionResult{
			Resource:      t,
			PreviousLevel: state.Level,
			NewLevel:      state.Level,
			Warning:       err.Error(),
		}, nil
	}
	if err != nil {
		return models.ActionResult{}, err
	}

	result := models.ActionResult{
		Resource:      t,
		PreviousLevel: res.PreviousLevel,
		NewLevel:      res.NewLevel,
		Applied:       res.Applied,
	}

	switch policy {
	case writeDeferred:
		s.dirty = state
		result.Deferred = true
		metrics.IncDeferredWrite(string(t))
	default:
		if err := v.Store.SaveResource(ctx, state); err != nil {
			if policy == writeStrict {
				return models.ActionResult{}, fmt.Errorf("save %s: %w", t, err)
			}
			logger.Error("Resource write failed, keeping in-memory state",
				zap.String("resource", string(t)),
				zap.Error(err),
			)
			s.dirty = state
			result.Deferred = true
		} else {
			state.History = nil
			state.Deliveries = nil
			s.dirty = nil
		}
	}

	logger.Info("Resource updated",
		zap.String("resource", string(t)),
		zap.String("action", string(res.Entry.Action)),
		zap.Float64("previousLevel", res.PreviousLevel),
		zap.Float64("newLevel", res.NewLevel),
		zap.Float64("applied", res.Applied),
		zap.String("actor", actor),
		zap.Bool("deferred", result.Deferred),
	)

	metrics.IncResourceAction(string(t), string(res.Entry.Action))
	metrics.SetResourceLevel(string(t), res.NewLevel)

	level := res.NewLevel
	v.Publisher.Publish(broadcast.Event{
		Type:      broadcast.EventResourceUpdated,
		Resource:  t,
		Level:     &level,
		Action:    res.Entry.Action,
		Actor:     actor,
		Timestamp: res.Entry.Timestamp,
	})

	if v.Alert == nil {
		return result, fmt.Errorf("alert service not available")
	}

	// still under the resource lock so two updates cannot both pass the duplicate check
	created, resolved, err := v.Alert.EvaluateLevel(ctx, state, actor)
	if err != nil {
		logger.Warn("Alert evaluation failed", zap.String("resource", string(t)), zap.Error(err))
	}
	result.Alert = created
	result.Resolved = resolved

	return result, nil
}

func (v *Vessel) applyResourceAction(ctx context.Context, t models.ResourceType, amount float64, action models.Action, actor string) (models.ActionResult, error) {
	return v.mutate(ctx, t, actor, writeStrict, func(state *models.Resource) (engine.Result, error) {
		return v.Engine.Apply(state, amount, action, actor)
	})
}

func (v *Vessel) recordDelivery(ctx context.Context, t models.ResourceType, amount float64, document, actor string) (models.ActionResult, error) {
	return v.mutate(ctx, t, actor, writeStrict, func(state *models.Resource) (engine.Result, error) {
		return v.Engine.RecordDelivery(state, amount, document, actor)
	})
}

func (v *Vessel) consume(ctx context.Context, t models.ResourceType, amount float64, persist bool) (models.ActionResult, error) {
	policy := writeBestEffort
	if !persist {
		policy = writeDeferred
	}
	return v.mutate(ctx, t, common.SystemActor, policy, func(state *models.Resource) (engine.Result, error) {
		return v.Engine.Apply(state, amount, models.ActionConsumption, common.SystemActor)
	})
}

// flush writes every unflushed copy. Copies that fail stay pending.
func (v *Vessel) flush(ctx context.Context) error {
	var errs []error
	for _, t := range models.AllResourceTypes {
		s := v.slots[t]
		s.mu.Lock()
		if s.dirty != nil {
			if err := v.Store.SaveResource(ctx, s.dirty); err != nil {
				errs = append(errs, fmt.Errorf("flush %s: %w", t, err))
			} else {
				s.dirty = nil
			}
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (v *Vessel) pending(t models.ResourceType) bool {
	s, ok := v.slots[t]
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty != nil
}

func (v *Vessel) getResource(ctx context.Context, t models.ResourceType) (*models.Resource, error) {
	s, err := v.slotFor(t)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return v.latestLocked(ctx, t, s)
}

func (v *Vessel) getResourceStatus(ctx context.Context) (map[models.ResourceType]models.ResourceStatus, error) {
	status := make(map[models.ResourceType]models.ResourceStatus, len(models.AllResourceTypes))
	for _, t := range models.AllResourceTypes {
		r, err := v.getResource(ctx, t)
		if err != nil {
			return nil, err
		}
		status[t] = models.ResourceStatus{
			Level:           r.Level,
			Capacity:        r.Capacity,
			Unit:            r.Unit,
			ConsumptionRate: r.ConsumptionRate,
			LastUpdated:     r.LastUpdated,
		}
	}
	return status, nil
}

func (v *Vessel) getHistory(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.HistoryPage, error) {
	if _, err := v.slotFor(t); err != nil {
		return store.HistoryPage{}, err
	}
	return v.Store.ListHistory(ctx, t, filter)
}

func (v *Vessel) getDeliveries(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.DeliveryPage, error) {
	if _, err := v.slotFor(t); err != nil {
		return store.DeliveryPage{}, err
	}
	return v.Store.ListDeliveries(ctx, t, filter)
}

func (v *Vessel) getRemaining(ctx context.Context, t models.ResourceType) (engine.Remaining, error) {
	r, err := v.getResource(ctx, t)
	if err != nil {
		return engine.Remaining{}, err
	}
	return engine.RemainingDuration(r), nil
}

type IResourceImpl struct {
	vessel *Vessel
}

func (ir *IResourceImpl) ApplyResourceAction(ctx context.Context, t models.ResourceType, amount float64, action models.Action, actor string) (models.ActionResult, error) {
	return ir.vessel.applyResourceAction(ctx, t, amount, action, actor)
}

func (ir *IResourceImpl) RecordDelivery(ctx context.Context, t models.ResourceType, amount float64, document, actor string) (models.ActionResult, error) {
	return ir.vessel.recordDelivery(ctx, t, amount, document, actor)
}

func (ir *IResourceImpl) Consume(ctx context.Context, t models.ResourceType, amount float64, persist bool) (models.ActionResult, error) {
	return ir.vessel.consume(ctx, t, amount, persist)
}

func (ir *IResourceImpl) Flush(ctx context.Context) error {
	return ir.vessel.flush(ctx)
}

func (ir *IResourceImpl) GetResource(ctx context.Context, t models.ResourceType) (*models.Resource, error) {
	return ir.vessel.getResource(ctx, t)
}

func (ir *IResourceImpl) GetResourceStatus(ctx context.Context) (map[models.ResourceType]models.ResourceStatus, error) {
	return ir.vessel.getResourceStatus(ctx)
}

func (ir *IResourceImpl) GetHistory(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.HistoryPage, error) {
	return ir.vessel.getHistory(ctx, t, filter)
}

func (ir *IResourceImpl) GetDeliveries(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.DeliveryPage, error) {
	return ir.vessel.getDeliveries(ctx, t, filter)
}

func (ir *IResourceImpl) GetRemaining(ctx context.Context, t models.ResourceType) (engine.Remaining, error) {
	return ir.vessel.getRemaining(ctx, t)
}

func (v *Vessel) GetIResource() IResource {
	return &IResourceImpl{vessel: v}
}
