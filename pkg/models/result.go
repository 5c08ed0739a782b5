package models

import "time"

// ActionResult is what a single resource mutation reports back to callers.
type ActionResult struct {
	Resource      ResourceType `json:"resource"`
	PreviousLevel float64      `json:"previousLevel"`
	NewLevel      float64      `json:"newLevel"`
	Applied       float64      `json:"applied"`
	Warning       string       `json:"warning,omitempty"`
	Deferred      bool         `json:"deferred,omitempty"`
	Alert         *Alert       `json:"alert,omitempty"`
	Resolved      []Alert      `json:"resolved,omitempty"`
}

type ResourceStatus struct {
	Level           float64         `json:"level"`
	Capacity        float64         `json:"capacity"`
	Unit            string          `json:"unit"`
	ConsumptionRate ConsumptionRate `json:"consumptionRate"`
	LastUpdated     time.Time       `json:"lastUpdated"`
}
