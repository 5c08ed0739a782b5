// Package simulation replays a voyage scenario against the real engine, scheduler and alert
// pipeline on a simulated clock.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

var ErrInvalidScenario = errors.New("simulation: invalid scenario")

type ResourceSpec struct {
	Type      models.ResourceType `yaml:"type"`
	Level     float64             `yaml:"level"`
	Capacity  float64             `yaml:"capacity"`
	Unit      string              `yaml:"unit"`
	RateValue float64             `yaml:"rate_value"`
	RateUnit  string              `yaml:"rate_unit"`
}

type ActionSpec struct {
	Resource models.ResourceType `yaml:"resource"`
	Type     models.Action       `yaml:"type"`
	Amount   float64             `yaml:"amount"`
	Actor    string              `yaml:"actor"`
}

type DeliverySpec struct {
	Resource models.ResourceType `yaml:"resource"`
	Amount   float64             `yaml:"amount"`
	Document string              `yaml:"document"`
	Actor    string              `yaml:"actor"`
}

type ThresholdSpec struct {
	User     string              `yaml:"user"`
	Resource models.ResourceType `yaml:"resource"`
	Warning  float64             `yaml:"warning"`
	Critical float64             `yaml:"critical"`
}

// Event happens At after the scenario start. Exactly one of Engine, Action, Delivery or
// Threshold is set.
type Event struct {
	At        time.Duration  `yaml:"at"`
	Engine    string         `yaml:"engine,omitempty"`
	Action    *ActionSpec    `yaml:"action,omitempty"`
	Delivery  *DeliverySpec  `yaml:"delivery,omitempty"`
	Threshold *ThresholdSpec `yaml:"threshold,omitempty"`
}

func (e Event) kinds() int {
	n := 0
	if e.Engine != "" {
		n++
	}
	if e.Action != nil {
		n++
	}
	if e.Delivery != nil {
		n++
	}
	if e.Threshold != nil {
		n++
	}
	return n
}

type Scenario struct {
	Name        string            `yaml:"name"`
	Start       time.Time         `yaml:"start"`
	Duration    time.Duration     `yaml:"duration"`
	Step        time.Duration     `yaml:"step"`
	SampleEvery time.Duration     `yaml:"sample_every"`
	Thresholds  models.Thresholds `yaml:"thresholds"`
	Resources   []ResourceSpec    `yaml:"resources"`
	Events      []Event           `yaml:"events"`
}

// LoadScenario decodes a YAML scenario, rejecting unknown fields, and fills defaults.
func LoadScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadScenario(f)
}

func (sc *Scenario) applyDefaults() {
	if sc.Start.IsZero() {
		sc.Start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if sc.Step == 0 {
		sc.Step = time.Minute
	}
	if sc.SampleEvery == 0 {
		sc.SampleEvery = time.Hour
	}
	if sc.Thresholds == (models.Thresholds{}) {
		sc.Thresholds = models.Thresholds{Warning: 35, Critical: 20}
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
}

func (sc *Scenario) Validate() error {
	if sc.Duration <= 0 {
		return invalid("duration must be positive")
	}
	if sc.Step <= 0 || sc.Step > sc.Duration {
		return invalid("step must be positive and not longer than duration")
	}
	if sc.SampleEvery < sc.Step {
		return invalid("sample_every must not be shorter than step")
	}

	seen := map[models.ResourceType]bool{}
	for _, r := range sc.Resources {
		if _, ok := models.ParseResourceType(string(r.Type)); !ok {
			return invalid("unknown resource %q", r.Type)
		}
		if seen[r.Type] {
			return invalid("resource %s listed twice", r.Type)
		}
		seen[r.Type] = true
		if r.Capacity <= 0 || r.Level < 0 || r.Level > 100 || r.RateValue < 0 {
			return invalid("resource %s has out of range capacity, level or rate", r.Type)
		}
	}
	for _, t := range models.AllResourceTypes {
		if !seen[t] {
			return invalid("resource %s missing", t)
		}
	}

	for i, e := range sc.Events {
		if e.At < 0 || e.At > sc.Duration {
			return invalid("event %d at %s is outside the scenario", i, e.At)
		}
		if e.kinds() != 1 {
			return invalid("event %d must set exactly one of engine, action, delivery, threshold", i)
		}
		switch {
		case e.Engine != "":
			if e.Engine != "start" && e.Engine != "stop" {
				return invalid("event %d: engine must be start or stop", i)
			}
		case e.Action != nil:
			if _, ok := models.ParseResourceType(string(e.Action.Resource)); !ok {
				return invalid("event %d: unknown resource %q", i, e.Action.Resource)
			}
		case e.Delivery != nil:
			if _, ok := models.ParseResourceType(string(e.Delivery.Resource)); !ok {
				return invalid("event %d: unknown resource %q", i, e.Delivery.Resource)
			}
		case e.Threshold != nil:
			if _, ok := models.ParseResourceType(string(e.Threshold.Resource)); !ok {
				return invalid("event %d: unknown resource %q", i, e.Threshold.Resource)
			}
		}
	}
	return nil
}

func (sc *Scenario) resources() []models.Resource {
	out := make([]models.Resource, 0, len(sc.Resources))
	for _, r := range sc.Resources {
		out = append(out, models.Resource{
			Type:            r.Type,
			Level:           r.Level,
			Capacity:        r.Capacity,
			Unit:            r.Unit,
			ConsumptionRate: models.ConsumptionRate{Value: r.RateValue, Unit: r.RateUnit},
			LastUpdated:     sc.Start,
		})
	}
	return out
}

// sortedEvents keeps file order for events at the same offset.
func (sc *Scenario) sortedEvents() []Event {
	events := slices.Clone(sc.Events)
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		default:
			return 0
		}
	})
	return events
}
