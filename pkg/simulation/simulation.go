package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/db"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/scheduler"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel"
)

// Sample is a snapshot of every resource level at one point of simulated time.
type Sample struct {
	At      time.Duration                   `yaml:"at" json:"at"`
	Levels  map[models.ResourceType]float64 `yaml:"levels" json:"levels"`
	Running bool                            `yaml:"engine_running" json:"engineRunning"`
}

type Depletion struct {
	Resource models.ResourceType `yaml:"resource" json:"resource"`
	At       time.Duration       `yaml:"at" json:"at"`
}

type Result struct {
	Scenario   string         `yaml:"scenario" json:"scenario"`
	Start      time.Time      `yaml:"start" json:"start"`
	End        time.Time      `yaml:"end" json:"end"`
	Samples    []Sample       `yaml:"samples" json:"samples"`
	Alerts     []models.Alert `yaml:"-" json:"alerts"`
	AlertLog   []string       `yaml:"alerts" json:"-"`
	Depletions []Depletion    `yaml:"depletions,omitempty" json:"depletions,omitempty"`
	Warnings   []string       `yaml:"warnings,omitempty" json:"warnings,omitempty"`

	FinalLevels map[models.ResourceType]float64 `yaml:"final_levels" json:"finalLevels"`
}

type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// the loops never fire on their own, Run drives every tick
type stillTicker struct{}

func (stillTicker) C() <-chan time.Time { return nil }

func (stillTicker) Stop() {}

type runner struct {
	sc     *Scenario
	clock  *simClock
	vessel *vessel.Vessel
	sched  *scheduler.Scheduler
	result *Result
	logger *zap.Logger
}

// Run replays sc from its start to start+duration in steps of sc.Step and returns the sampled
// levels, raised alerts and engine depletions. Each run uses its own in-memory database.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	d, err := db.Open(db.UseNamedMemorySqliteDialector("sim-" + uuid.NewString()))
	if err != nil {
		return nil, err
	}
	defer func() { _ = d.Close() }()

	st := store.NewGormStore(d)
	clock := &simClock{now: sc.Start}
	r := &runner{
		sc:    sc,
		clock: clock,
		result: &Result{
			Scenario: sc.Name,
			Start:    sc.Start,
		},
		logger: common.GetLoggerWith(common.LoggerNameSimulation),
	}

	r.vessel = vessel.New(st,
		vessel.WithClock(clock),
		vessel.WithDefaultThresholds(sc.Thresholds),
	)
	if err := r.vessel.Seed(ctx, sc.resources()); err != nil {
		return nil, fmt.Errorf("seed resources: %w", err)
	}

	r.sched = scheduler.New(r.vessel.Resource, st,
		scheduler.WithClock(clock),
		scheduler.WithTicker(func(time.Duration) scheduler.Ticker { return stillTicker{} }),
		scheduler.WithPublisher(broadcast.Nop{}),
		scheduler.WithDepletionHandler(func(t models.ResourceType) {
			at := clock.Now().Sub(sc.Start)
			r.result.Depletions = append(r.result.Depletions, Depletion{Resource: t, At: at})
			r.logger.Info("Engine stopped by depletion", zap.String("resource", string(t)), zap.Duration("at", at))
		}),
	)
	if err := r.sched.Resume(ctx); err != nil {
		return nil, fmt.Errorf("start scheduler: %w", err)
	}

	runErr := r.loop(ctx)

	if err := r.sched.Shutdown(context.WithoutCancel(ctx)); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if runErr != nil {
		return nil, runErr
	}

	if err := r.finish(ctx); err != nil {
		return nil, err
	}
	return r.result, nil
}

func (r *runner) loop(ctx context.Context) error {
	events := r.sc.sortedEvents()
	next := 0

	for elapsed := time.Duration(0); ; {
		if err := ctx.Err(); err != nil {
			return err
		}

		for next < len(events) && events[next].At <= elapsed {
			r.apply(ctx, events[next])
			next++
		}
		if elapsed%r.sc.SampleEvery == 0 || elapsed == r.sc.Duration {
			if err := r.sample(ctx, elapsed); err != nil {
				return err
			}
		}
		if elapsed >= r.sc.Duration {
			return nil
		}

		step := min(r.sc.Step, r.sc.Duration-elapsed)
		r.clock.advance(step)
		elapsed += step

		for _, g := range []scheduler.Group{scheduler.GroupEngine, scheduler.GroupBackground} {
			if err := r.sched.Tick(ctx, g); err != nil {
				return fmt.Errorf("tick %s at %s: %w", g, elapsed, err)
			}
		}
	}
}

// apply runs one scenario event. Rejected events become warnings, they do not abort the run.
func (r *runner) apply(ctx context.Context, e Event) {
	var err error
	switch {
	case e.Engine == "start":
		err = r.sched.StartEngine(ctx, common.SystemActor)
	case e.Engine == "stop":
		err = r.sched.StopEngine(ctx, common.SystemActor)
	case e.Action != nil:
		var res models.ActionResult
		res, err = r.vessel.Resource.ApplyResourceAction(ctx, e.Action.Resource, e.Action.Amount, e.Action.Type, actorOr(e.Action.Actor))
		if err == nil && res.Warning != "" {
			err = errors.New(res.Warning)
		}
	case e.Delivery != nil:
		_, err = r.vessel.Resource.RecordDelivery(ctx, e.Delivery.Resource, e.Delivery.Amount, e.Delivery.Document, actorOr(e.Delivery.Actor))
	case e.Threshold != nil:
		th := models.Thresholds{Warning: e.Threshold.Warning, Critical: e.Threshold.Critical}
		err = r.vessel.Threshold.UpsertThreshold(ctx, e.Threshold.User, e.Threshold.Resource, th)
	}
	if err != nil {
		msg := fmt.Sprintf("%s: %v", e.At, err)
		r.result.Warnings = append(r.result.Warnings, msg)
		r.logger.Warn("Scenario event rejected", zap.Duration("at", e.At), zap.Error(err))
	}
}

func actorOr(actor string) string {
	if actor == "" {
		return common.SystemActor
	}
	return actor
}

func (r *runner) levels(ctx context.Context) (map[models.ResourceType]float64, error) {
	status, err := r.vessel.Resource.GetResourceStatus(ctx)
	if err != nil {
		return nil, err
	}
	levels := make(map[models.ResourceType]float64, len(status))
	for t, s := range status {
		levels[t] = s.Level
	}
	return levels, nil
}

func (r *runner) sample(ctx context.Context, elapsed time.Duration) error {
	levels, err := r.levels(ctx)
	if err != nil {
		return fmt.Errorf("sample at %s: %w", elapsed, err)
	}
	r.result.Samples = append(r.result.Samples, Sample{
		At:      elapsed,
		Levels:  levels,
		Running: r.sched.Running(),
	})
	return nil
}

func (r *runner) finish(ctx context.Context) error {
	r.result.End = r.clock.Now()

	levels, err := r.levels(ctx)
	if err != nil {
		return err
	}
	r.result.FinalLevels = levels

	alerts, err := r.vessel.Alert.ListAlerts(ctx, store.AlertFilter{})
	if err != nil {
		return err
	}
	r.result.Alerts = alerts
	for _, a := range alerts {
		r.result.AlertLog = append(r.result.AlertLog, fmt.Sprintf("%s %s", a.Timestamp.Sub(r.sc.Start), a.Message))
	}
	return nil
}
