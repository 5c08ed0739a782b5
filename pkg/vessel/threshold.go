package vessel

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

func validThreshold(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

func (v *Vessel) upsertThreshold(ctx context.Context, userID string, t models.ResourceType, th models.Thresholds) error {
	logger := common.GetLoggerWith(
		common.LoggerNameVesselCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryThreshold),
	)

	if _, err := v.slotFor(t); err != nil {
		return err
	}
	if userID == "" || !validThreshold(th.Warning) || !validThreshold(th.Critical) {
		return fmt.Errorf("%w: user %q warning=%v critical=%v", ErrInvalidThreshold, userID, th.Warning, th.Critical)
	}

	setting := models.ThresholdSetting{
		UserID:   userID,
		Resource: t,
		Warning:  th.Warning,
		Critical: th.Critical,
	}

	logger.Info("Received threshold for user", zap.Reflect("threshold", setting))

	err := v.Store.UpsertThreshold(ctx, setting)
	if err == nil {
		logger.Info("Upserted threshold for user", zap.Reflect("threshold", setting))
	}
	return err
}

// getUserThresholds returns the user's thresholds for every resource, defaults where unset.
func (v *Vessel) getUserThresholds(ctx context.Context, userID string) (map[models.ResourceType]models.Thresholds, error) {
	settings, err := v.Store.ListThresholds(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[models.ResourceType]models.Thresholds, len(models.AllResourceTypes))
	for _, t := range models.AllResourceTypes {
		out[t] = v.Defaults
	}
	for _, s := range settings {
		out[s.Resource] = s.Thresholds()
	}
	return out, nil
}

// effectiveThresholds combines every crew member's setting for the resource by taking the highest
// warning and the highest critical level, so no member misses an alert they asked for.
func (v *Vessel) effectiveThresholds(ctx context.Context, t models.ResourceType) (models.Thresholds, error) {
	settings, err := v.Store.ListThresholdsForResource(ctx, t)
	if err != nil {
		return models.Thresholds{}, err
	}
	if len(settings) == 0 {
		return v.Defaults, nil
	}
	th := settings[0].Thresholds()
	for _, s := range settings[1:] {
		th.Warning = math.Max(th.Warning, s.Warning)
		th.Critical = math.Max(th.Critical, s.Critical)
	}
	return th, nil
}

func (v *Vessel) upsertCrewMember(ctx context.Context, member models.CrewMember) error {
	if member.ID == "" {
		return fmt.Errorf("crew member id is required")
	}
	return v.Store.UpsertCrewMember(ctx, member)
}

type IThresholdImpl struct {
	vessel *Vessel
}

func (it *IThresholdImpl) UpsertThreshold(ctx context.Context, userID string, t models.ResourceType, th models.Thresholds) error {
	return it.vessel.upsertThreshold(ctx, userID, t, th)
}

func (it *IThresholdImpl) GetUserThresholds(ctx context.Context, userID string) (map[models.ResourceType]models.Thresholds, error) {
	return it.vessel.getUserThresholds(ctx, userID)
}

func (it *IThresholdImpl) EffectiveThresholds(ctx context.Context, t models.ResourceType) (models.Thresholds, error) {
	return it.vessel.effectiveThresholds(ctx, t)
}

func (it *IThresholdImpl) UpsertCrewMember(ctx context.Context, member models.CrewMember) error {
	return it.vessel.upsertCrewMember(ctx, member)
}

func (it *IThresholdImpl) ListCrew(ctx context.Context) ([]models.CrewMember, error) {
	return it.vessel.Store.ListCrew(ctx)
}

func (v *Vessel) GetIThreshold() IThreshold {
	return &IThresholdImpl{vessel: v}
}
