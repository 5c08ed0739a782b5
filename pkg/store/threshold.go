package store

import (
	"context"

	"gorm.io/gorm/clause"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

func (s *GormStore) UpsertThreshold(ctx context.Context, setting models.ThresholdSetting) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource"}},
		UpdateAll: true,
	}).Create(&setting).Error
}

func (s *GormStore) ListThresholds(ctx context.Context, userID string) ([]models.ThresholdSetting, error) {
	var settings []models.ThresholdSetting
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("resource").Find(&settings).Error
	return settings, err
}

func (s *GormStore) ListThresholdsForResource(ctx context.Context, resource models.ResourceType) ([]models.ThresholdSetting, error) {
	var settings []models.ThresholdSetting
	err := s.db.WithContext(ctx).Where("resource = ?", resource).Order("user_id").Find(&settings).Error
	return settings, err
}

func (s *GormStore) UpsertCrewMember(ctx context.Context, member models.CrewMember) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&member).Error
}

func (s *GormStore) GetCrewMember(ctx context.Context, id string) (*models.CrewMember, error) {
	var member models.CrewMember
	if err := s.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &member, nil
}

func (s *GormStore) ListCrew(ctx context.Context) ([]models.CrewMember, error) {
	var crew []models.CrewMember
	err := s.db.WithContext(ctx).Order("id").Find(&crew).Error
	return crew, err
}
