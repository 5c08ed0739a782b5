package models

import (
	"strings"
	"time"
)

type ResourceType string

const (
	ResourceFuel  ResourceType = "fuel"
	ResourceOil   ResourceType = "oil"
	ResourceFood  ResourceType = "food"
	ResourceWater ResourceType = "water"
)

// AllResourceTypes is the fixed display order used by status views and reports.
var AllResourceTypes = []ResourceType{ResourceFuel, ResourceOil, ResourceFood, ResourceWater}

func ParseResourceType(s string) (ResourceType, bool) {
	t := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ResourceFuel, ResourceOil, ResourceFood, ResourceWater:
		return t, true
	default:
		return "", false
	}
}

// EngineTied reports whether the resource is only consumed while the engine runs.
func (t ResourceType) EngineTied() bool {
	return t == ResourceFuel || t == ResourceOil
}

type Action string

const (
	ActionConsumption  Action = "consumption"
	ActionRefill       Action = "refill"
	ActionManualUpdate Action = "manual_update"
)

func (a Action) Valid() bool {
	switch a {
	case ActionConsumption, ActionRefill, ActionManualUpdate:
		return true
	default:
		return false
	}
}

type ConsumptionRate struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RatePerHour normalises the rate to units per hour. Rates with a "/day" unit are divided by 24,
// everything else is taken as already hourly.
func (r ConsumptionRate) RatePerHour() float64 {
	if r.Value <= 0 {
		return 0
	}
	if strings.HasSuffix(strings.ToLower(r.Unit), "/day") {
		return r.Value / 24
	}
	return r.Value
}

type Resource struct {
	Type            ResourceType    `gorm:"primaryKey;type:varchar(10)" json:"type"`
	Level           float64         `json:"level"`
	Capacity        float64         `json:"capacity"`
	Unit            string          `json:"unit"`
	ConsumptionRate ConsumptionRate `gorm:"embedded;embeddedPrefix:rate_" json:"consumptionRate"`
	LastUpdated     time.Time       `json:"lastUpdated"`
	LastConsumption *time.Time      `json:"lastConsumption,omitempty"`

	// only entries not yet persisted, see store.GormStore.SaveResource
	History    []HistoryEntry `gorm:"foreignKey:ResourceType;references:Type" json:"history,omitempty"`
	Deliveries []Delivery     `gorm:"foreignKey:ResourceType;references:Type" json:"deliveries,omitempty"`
}

func (Resource) TableName() string {
	return "resources"
}

type HistoryEntry struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ResourceType ResourceType `gorm:"index;type:varchar(10)" json:"resourceType"`
	Level        float64      `json:"level"`
	Action       Action       `gorm:"type:varchar(20);check:action IN ('consumption','refill','manual_update')" json:"action"`
	Amount       float64      `json:"amount"`
	Timestamp    time.Time    `gorm:"index" json:"timestamp"`
	Actor        string       `json:"actor"`
}

func (HistoryEntry) TableName() string {
	return "resource_history"
}

type Delivery struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ResourceType ResourceType `gorm:"index;type:varchar(10)" json:"resourceType"`
	Amount       float64      `json:"amount"`
	Document     string       `json:"document"`
	Timestamp    time.Time    `gorm:"index" json:"timestamp"`
	Actor        string       `json:"actor"`
}

func (Delivery) TableName() string {
	return "resource_deliveries"
}

type Thresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

type ThresholdSetting struct {
	UserID   string       `gorm:"primaryKey" json:"userId"`
	Resource ResourceType `gorm:"primaryKey;type:varchar(10)" json:"resource"`
	Warning  float64      `json:"warning"`
	Critical float64      `json:"critical"`
}

func (s ThresholdSetting) Thresholds() Thresholds {
	return Thresholds{Warning: s.Warning, Critical: s.Critical}
}

type CrewMember struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	NotifyEmail bool   `json:"notifyEmail"`
	NotifySMS   bool   `json:"notifySms"`
}

const EngineStateID uint = 1

type EngineState struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Running    bool      `json:"running"`
	ChangedAt  time.Time `json:"changedAt"`
	ChangedBy  string    `json:"changedBy"`
	StopReason string    `json:"stopReason,omitempty"`
}
