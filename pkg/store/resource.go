package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

func (s *GormStore) FindResource(ctx context.Context, t models.ResourceType) (*models.Resource, error) {
	var r models.Resource
	if err := s.db.WithContext(ctx).First(&r, "type = ?", t).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *GormStore) ListResources(ctx context.Context) ([]models.Resource, error) {
	var resources []models.Resource
	err := s.db.WithContext(ctx).Order("type").Find(&resources).Error
	return resources, err
}

func (s *GormStore) SaveResource(ctx context.Context, r *models.Resource) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(r).Error; err != nil {
			return fmt.Errorf("save resource %s: %w", r.Type, err)
		}

		for i := range r.History {
			if r.History[i].ID != 0 {
				continue
			}
			r.History[i].ResourceType = r.Type
			if err := tx.Create(&r.History[i]).Error; err != nil {
				return fmt.Errorf("append history for %s: %w", r.Type, err)
			}
		}

		for i := range r.Deliveries {
			if r.Deliveries[i].ID != 0 {
				continue
			}
			r.Deliveries[i].ResourceType = r.Type
			if err := tx.Create(&r.Deliveries[i]).Error; err != nil {
				return fmt.Errorf("record delivery for %s: %w", r.Type, err)
			}
		}
		return nil
	})
}

func (s *GormStore) ListHistory(ctx context.Context, t models.ResourceType, filter HistoryFilter) (HistoryPage, error) {
	filter = filter.Normalize()
	page := HistoryPage{Page: filter.Page, Limit: filter.Limit}

	q := s.db.WithContext(ctx).Model(&models.HistoryEntry{}).Where("resource_type = ?", t)
	if filter.StartDate != nil {
		q = q.Where("timestamp >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		q = q.Where("timestamp <= ?", filter.EndDate.UTC())
	}

	if err := q.Count(&page.Total).Error; err != nil {
		return page, err
	}

	err := q.Order("id asc").
		Scopes(paginate(filter.Page, filter.Limit)).
		Find(&page.Entries).Error
	return page, err
}

func (s *GormStore) ListDeliveries(ctx context.Context, t models.ResourceType, filter HistoryFilter) (DeliveryPage, error) {
	filter = filter.Normalize()
	page := DeliveryPage{Page: filter.Page, Limit: filter.Limit}

	q := s.db.WithContext(ctx).Model(&models.Delivery{}).Where("resource_type = ?", t)
	if filter.StartDate != nil {
		q = q.Where("timestamp >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		q = q.Where("timestamp <= ?", filter.EndDate.UTC())
	}

	if err := q.Count(&page.Total).Error; err != nil {
		return page, err
	}

	err := q.Order("id desc").
		Scopes(paginate(filter.Page, filter.Limit)).
		Find(&page.Deliveries).Error
	return page, err
}

// EnsureResources inserts the given defaults for resource types that have no row yet.
// Existing rows are left as they are.
func (s *GormStore) EnsureResources(ctx context.Context, defaults []models.Resource) error {
	for i := range defaults {
		r := defaults[i]
		r.History = nil
		r.Deliveries = nil
		err := s.db.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&r).Error
		if err != nil {
			return fmt.Errorf("seed resource %s: %w", r.Type, err)
		}
	}
	return nil
}

func (s *GormStore) GetEngineState(ctx context.Context) (models.EngineState, error) {
	var state models.EngineState
	err := s.db.WithContext(ctx).First(&state, models.EngineStateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.EngineState{ID: models.EngineStateID}, nil
	}
	return state, err
}

func (s *GormStore) SaveEngineState(ctx context.Context, state models.EngineState) error {
	state.ID = models.EngineStateID
	return s.db.WithContext(ctx).Save(&state).Error
}
