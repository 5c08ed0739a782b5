// Package engine applies consumption, refill and manual corrections to a resource.
//
// The level percentage is the single stored quantity. Absolute quantities are always derived
// from it on demand so that the percentage and the absolute view never drift apart.
package engine

import (
	"errors"
	"math"
	"time"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

var ErrUnknownAction = errors.New("engine: unknown action")

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type Engine struct {
	clock Clock
}

type Option func(*Engine)

func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{clock: SystemClock{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Result describes one applied action.
type Result struct {
	PreviousLevel float64
	NewLevel      float64
	Applied       float64
	Entry         models.HistoryEntry
}

func AbsoluteFromLevel(level, capacity float64) float64 {
	if !isFinite(capacity) || capacity <= 0 || !isFinite(level) {
		return 0
	}
	return (clamp(level, 0, 100) / 100) * capacity
}

func LevelFromAbsolute(absolute, capacity float64) float64 {
	if !isFinite(capacity) || capacity <= 0 || !isFinite(absolute) {
		return 0
	}
	return clamp((absolute/capacity)*100, 0, 100)
}

// Apply mutates state according to action and appends exactly one history entry.
// For consumption and refill amount is a delta in absolute units, for manual_update it is the
// new absolute quantity. Unknown actions leave state untouched and return ErrUnknownAction.
func (e *Engine) Apply(state *models.Resource, amount float64, action models.Action, actor string) (Result, error) {
	if !action.Valid() {
		return Result{PreviousLevel: state.Level, NewLevel: state.Level}, ErrUnknownAction
	}

	if !isFinite(amount) || amount < 0 {
		amount = 0
	}

	capacity := state.Capacity
	if !isFinite(capacity) || capacity < 0 {
		capacity = 0
	}
	current := AbsoluteFromLevel(state.Level, capacity)

	var next float64
	switch action {
	case models.ActionConsumption:
		next = math.Max(current-amount, 0)
	case models.ActionRefill:
		next = math.Min(current+amount, capacity)
	case models.ActionManualUpdate:
		next = clamp(amount, 0, capacity)
	}

	newLevel := LevelFromAbsolute(next, capacity)

	applied := math.Abs(next - current)
	if action == models.ActionManualUpdate {
		applied = next
	}
	if !isFinite(applied) {
		applied = 0
	}

	now := e.clock.Now()
	entry := models.HistoryEntry{
		ResourceType: state.Type,
		Level:        newLevel,
		Action:       action,
		Amount:       applied,
		Timestamp:    now,
		Actor:        actor,
	}

	result := Result{
		PreviousLevel: state.Level,
		NewLevel:      newLevel,
		Applied:       applied,
		Entry:         entry,
	}

	state.Level = newLevel
	state.LastUpdated = now
	if action == models.ActionConsumption {
		state.LastConsumption = &now
	}
	state.History = append(state.History, entry)

	return result, nil
}

// RecordDelivery appends a delivery record and refills the resource by amount.
func (e *Engine) RecordDelivery(state *models.Resource, amount float64, document, actor string) (Result, error) {
	recorded := amount
	if !isFinite(recorded) || recorded < 0 {
		recorded = 0
	}
	state.Deliveries = append(state.Deliveries, models.Delivery{
		ResourceType: state.Type,
		Amount:       recorded,
		Document:     document,
		Timestamp:    e.clock.Now(),
		Actor:        actor,
	})
	return e.Apply(state, amount, models.ActionRefill, actor)
}

type Remaining struct {
	Absolute float64 `json:"absolute"`
	Hours    float64 `json:"hours"`
	Days     float64 `json:"days"`
}

// RemainingDuration estimates how long the current quantity lasts at the configured rate.
// A zero rate yields +Inf.
func RemainingDuration(state *models.Resource) Remaining {
	absolute := AbsoluteFromLevel(state.Level, state.Capacity)
	perHour := state.ConsumptionRate.RatePerHour()

	hours := math.Inf(1)
	if perHour > 0 {
		hours = absolute / perHour
	}
	return Remaining{
		Absolute: absolute,
		Hours:    hours,
		Days:     hours / 24,
	}
}

// ConsumptionFor returns the absolute amount consumed over elapsed at the resource's rate.
func ConsumptionFor(rate models.ConsumptionRate, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return (rate.RatePerHour() / 3600) * elapsed.Seconds()
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
