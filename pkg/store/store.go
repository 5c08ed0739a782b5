// Package store persists resources, alerts, thresholds and crew contacts through gorm.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"liyu1981.xyz/vessel-resource-service/pkg/db"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

var ErrNotFound = errors.New("store: record not found")

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 500
)

type HistoryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Normalize fills in paging defaults. Pages start at 1.
func (f HistoryFilter) Normalize() HistoryFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

type HistoryPage struct {
	Entries []models.HistoryEntry `json:"entries"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

type DeliveryPage struct {
	Deliveries []models.Delivery `json:"deliveries"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

type AlertFilter struct {
	Resource models.ResourceType
	Severity models.Severity
	Active   *bool
}

type ResourceStore interface {
	FindResource(ctx context.Context, t models.ResourceType) (*models.Resource, error)
	ListResources(ctx context.Context) ([]models.Resource, error)
	// SaveResource updates the resource row and inserts its pending history and delivery rows
	// in one transaction.
	SaveResource(ctx context.Context, r *models.Resource) error
	ListHistory(ctx context.Context, t models.ResourceType, filter HistoryFilter) (HistoryPage, error)
	ListDeliveries(ctx context.Context, t models.ResourceType, filter HistoryFilter) (DeliveryPage, error)
	EnsureResources(ctx context.Context, defaults []models.Resource) error
	GetEngineState(ctx context.Context) (models.EngineState, error)
	SaveEngineState(ctx context.Context, state models.EngineState) error
}

type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	// FindUnresolvedAlert returns nil without error when no active alert exists.
	FindUnresolvedAlert(ctx context.Context, resource models.ResourceType, severity models.Severity) (*models.Alert, error)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error)
	ListUnresolved(ctx context.Context, resource models.ResourceType) ([]models.Alert, error)
	Acknowledge(ctx context.Context, id, actor string, at time.Time) (*models.Alert, error)
	Resolve(ctx context.Context, id, actor string, at time.Time) (*models.Alert, error)
	MarkNotification(ctx context.Context, id string, channel models.Channel, recipients []string, at time.Time) (*models.Alert, error)
	MarkSoundPlayed(ctx context.Context, id string, at time.Time) (*models.Alert, error)
	CountAlerts(ctx context.Context) (models.AlertStats, error)
}

type ThresholdStore interface {
	UpsertThreshold(ctx context.Context, setting models.ThresholdSetting) error
	ListThresholds(ctx context.Context, userID string) ([]models.ThresholdSetting, error)
	ListThresholdsForResource(ctx context.Context, resource models.ResourceType) ([]models.ThresholdSetting, error)
}

type CrewStore interface {
	UpsertCrewMember(ctx context.Context, member models.CrewMember) error
	GetCrewMember(ctx context.Context, id string) (*models.CrewMember, error)
	ListCrew(ctx context.Context) ([]models.CrewMember, error)
}

// GormStore implements every store interface on one gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(d *db.DB) *GormStore {
	return &GormStore{db: d.Conn}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Offset((page - 1) * limit).Limit(limit)
	}
}
