// Package scheduler applies time-based consumption to the vessel's resources. Fuel and oil are
// consumed only while the engine runs; food and water are consumed continuously.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	"liyu1981.xyz/vessel-resource-service/pkg/metrics"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

var ErrDepleted = errors.New("scheduler: engine resource depleted")

const (
	StopReasonManual   = "manual"
	StopReasonDepleted = "depleted"
	StopReasonShutdown = "shutdown"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

type Group string

const (
	GroupEngine     Group = "engine"
	GroupBackground Group = "background"
)

// Consumer is the slice of the vessel resource service the scheduler drives.
type Consumer interface {
	Consume(ctx context.Context, t models.ResourceType, amount float64, persist bool) (models.ActionResult, error)
	Flush(ctx context.Context) error
	GetResource(ctx context.Context, t models.ResourceType) (*models.Resource, error)
}

type EngineStateStore interface {
	GetEngineState(ctx context.Context) (models.EngineState, error)
	SaveEngineState(ctx context.Context, state models.EngineState) error
}

type group struct {
	name      Group
	resources []models.ResourceType
	interval  time.Duration

	// held for the duration of a tick, loop ticks skip when it is taken
	tickMu sync.Mutex

	lastMu   sync.Mutex
	lastTick map[models.ResourceType]time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newGroup(name Group, interval time.Duration, resources ...models.ResourceType) *group {
	return &group{
		name:      name,
		resources: resources,
		interval:  interval,
		lastTick:  make(map[models.ResourceType]time.Time, len(resources)),
	}
}

func (g *group) last(t models.ResourceType) time.Time {
	g.lastMu.Lock()
	defer g.lastMu.Unlock()
	return g.lastTick[t]
}

func (g *group) setLast(t models.ResourceType, at time.Time) {
	g.lastMu.Lock()
	g.lastTick[t] = at
	g.lastMu.Unlock()
}

type Scheduler struct {
	consumer  Consumer
	states    EngineStateStore
	publisher broadcast.Publisher
	budget    *WriteBudget
	clock     engine.Clock

	newTicker   TickerFactory
	tickTimeout time.Duration
	onDepleted  func(models.ResourceType)

	engine     *group
	background *group

	// serializes Start/Stop/Resume/Shutdown
	opMu sync.Mutex
	// guards state and the group loop handles
	mu    sync.Mutex
	state State
}

type Option func(*Scheduler)

func WithClock(clock engine.Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithTicker(factory TickerFactory) Option {
	return func(s *Scheduler) {
		if factory != nil {
			s.newTicker = factory
		}
	}
}

func WithIntervals(engineInterval, backgroundInterval time.Duration) Option {
	return func(s *Scheduler) {
		if engineInterval > 0 {
			s.engine.interval = engineInterval
		}
		if backgroundInterval > 0 {
			s.background.interval = backgroundInterval
		}
	}
}

func WithWriteBudget(budget *WriteBudget) Option {
	return func(s *Scheduler) {
		s.budget = budget
	}
}

func WithTickTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tickTimeout = d
		}
	}
}

func WithPublisher(p broadcast.Publisher) Option {
	return func(s *Scheduler) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithDepletionHandler is called once each time the engine is stopped by an empty fuel or oil
// tank. It runs on the tick goroutine and must not call back into StartEngine or StopEngine.
func WithDepletionHandler(fn func(models.ResourceType)) Option {
	return func(s *Scheduler) {
		s.onDepleted = fn
	}
}

func New(consumer Consumer, states EngineStateStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		consumer:    consumer,
		states:      states,
		publisher:   broadcast.Nop{},
		clock:       engine.SystemClock{},
		newTicker:   NewTimeTicker,
		tickTimeout: 5 * time.Second,
		state:       StateIdle,
		engine:      newGroup(GroupEngine, 5*time.Second, models.ResourceFuel, models.ResourceOil),
		background:  newGroup(GroupBackground, 15*time.Minute, models.ResourceFood, models.ResourceWater),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.budget == nil {
		s.budget = NewWriteBudget(0, s.clock)
	}
	return s
}

func schedulerLogger(category string) *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameScheduler,
		zap.String(common.LoggerFieldCategory, category),
	)
}

func (s *Scheduler) groupFor(g Group) (*group, error) {
	switch g {
	case GroupEngine:
		return s.engine, nil
	case GroupBackground:
		return s.background, nil
	default:
		return nil, fmt.Errorf("scheduler: unknown group %q", g)
	}
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Running() bool {
	return s.State() == StateRunning
}

// EngineState returns the persisted engine state with Running reflecting the live scheduler.
func (s *Scheduler) EngineState(ctx context.Context) (models.EngineState, error) {
	st, err := s.states.GetEngineState(ctx)
	if err != nil {
		return models.EngineState{}, err
	}
	st.Running = s.Running()
	return st, nil
}

// Resume starts the background group and, when the persisted engine state says the engine was
// running, the engine group. Both catch up from each resource's last recorded consumption.
func (s *Scheduler) Resume(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	logger := schedulerLogger(common.LoggerCategoryEngine)

	if err := s.startGroup(ctx, s.background, true); err != nil {
		return err
	}

	st, err := s.states.GetEngineState(ctx)
	if err != nil {
		return fmt.Errorf("load engine state: %w", err)
	}
	if !st.Running {
		logger.Info("Engine idle on resume")
		return nil
	}

	s.setState(StateRunning)
	metrics.SetEngineRunning(true)
	logger.Info("Engine resumed", zap.Time("changedAt", st.ChangedAt), zap.String("changedBy", st.ChangedBy))
	if err := s.startGroup(ctx, s.engine, true); err != nil {
		s.setState(StateIdle)
		metrics.SetEngineRunning(false)
		return err
	}
	return nil
}

// StartEngine moves the engine from idle to running. Consumption starts from now.
func (s *Scheduler) StartEngine(ctx context.Context, actor string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.Running() {
		return nil
	}

	for _, t := range s.engine.resources {
		r, err := s.consumer.GetResource(ctx, t)
		if err != nil {
			return err
		}
		if r.Level <= 0 {
			return fmt.Errorf("%w: %s is empty", ErrDepleted, t)
		}
	}

	if err := s.startGroup(ctx, s.engine, false); err != nil {
		return err
	}
	s.setState(StateRunning)

	st := models.EngineState{
		Running:   true,
		ChangedAt: s.clock.Now(),
		ChangedBy: actor,
	}
	if err := s.states.SaveEngineState(ctx, st); err != nil {
		schedulerLogger(common.LoggerCategoryEngine).Error("Engine state write failed", zap.Error(err))
	}

	schedulerLogger(common.LoggerCategoryEngine).Info("Engine started", zap.String("actor", actor))
	metrics.SetEngineRunning(true)
	s.publisher.Publish(broadcast.Event{
		Type:      broadcast.EventEngineStarted,
		Actor:     actor,
		Engine:    &st,
		Timestamp: st.ChangedAt,
	})
	return nil
}

// StopEngine moves the engine to idle, waits for the loop to exit and applies the consumption
// accrued since the last tick in one final persisted write.
func (s *Scheduler) StopEngine(ctx context.Context, actor string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.stopEngine(ctx, actor, StopReasonManual)
}

func (s *Scheduler) stopEngine(ctx context.Context, actor, reason string) error {
	logger := schedulerLogger(common.LoggerCategoryEngine)

	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		// a depletion stop may still be unwinding its loop
		s.waitGroup(s.engine)
		return nil
	}
	s.state = StateIdle
	s.mu.Unlock()

	s.waitGroup(s.engine)

	s.engine.tickMu.Lock()
	tickErr := s.tick(ctx, s.engine, true)
	s.engine.tickMu.Unlock()
	flushErr := s.consumer.Flush(ctx)

	st := models.EngineState{
		Running:    false,
		ChangedAt:  s.clock.Now(),
		ChangedBy:  actor,
		StopReason: reason,
	}
	stateErr := s.states.SaveEngineState(ctx, st)

	logger.Info("Engine stopped", zap.String("actor", actor), zap.String("reason", reason))
	metrics.SetEngineRunning(false)
	s.publisher.Publish(broadcast.Event{
		Type:      broadcast.EventEngineStopped,
		Actor:     actor,
		Engine:    &st,
		Timestamp: st.ChangedAt,
	})

	return errors.Join(tickErr, flushErr, stateErr)
}

// Shutdown stops both groups and flushes pending writes. A running engine is recorded as still
// running so the next Resume picks it up.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.waitGroup(s.engine)
	s.waitGroup(s.background)

	err := s.consumer.Flush(ctx)
	schedulerLogger(common.LoggerCategoryEngine).Info("Scheduler shut down", zap.Bool("engineRunning", s.Running()))
	s.setState(StateIdle)
	return err
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// startGroup seeds the group's last-tick times and launches its loop. With catchUp the first
// tick covers the gap since each resource's last recorded consumption.
func (s *Scheduler) startGroup(ctx context.Context, g *group, catchUp bool) error {
	s.waitGroup(g)

	now := s.clock.Now()
	for _, t := range g.resources {
		from := now
		if catchUp {
			r, err := s.consumer.GetResource(ctx, t)
			if err != nil {
				return err
			}
			if r.LastConsumption != nil && r.LastConsumption.Before(now) {
				from = *r.LastConsumption
			}
		}
		g.setLast(t, from)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	g.cancel = cancel
	g.done = done
	s.mu.Unlock()

	ticker := s.newTicker(g.interval)
	go s.run(loopCtx, g, ticker, done)

	if catchUp {
		// apply the gap now instead of one interval later
		if err := s.Tick(ctx, g.name); err != nil {
			schedulerLogger(string(g.name)).Warn("Catch-up tick failed", zap.Error(err))
		}
	}
	return nil
}

// waitGroup cancels the group's loop, if any, and waits for it to exit.
func (s *Scheduler) waitGroup(g *group) {
	s.mu.Lock()
	cancel, done := g.cancel, g.done
	g.cancel, g.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) run(ctx context.Context, g *group, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	logger := schedulerLogger(string(g.name))
	logger.Debug("Consumption loop started", zap.Duration("interval", g.interval))

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Consumption loop stopped")
			return
		case <-ticker.C():
			if err := s.tickIfFree(ctx, g); err != nil {
				logger.Warn("Tick failed", zap.Error(err))
			}
		}
	}
}

// Tick runs one consumption pass for the group. Engine ticks do nothing while the engine is
// idle. A tick already in progress makes this a no-op.
func (s *Scheduler) Tick(ctx context.Context, name Group) error {
	g, err := s.groupFor(name)
	if err != nil {
		return err
	}
	return s.tickIfFree(ctx, g)
}

func (s *Scheduler) tickIfFree(ctx context.Context, g *group) error {
	if g == s.engine && !s.Running() {
		return nil
	}
	if !g.tickMu.TryLock() {
		schedulerLogger(string(g.name)).Debug("Tick skipped, previous tick still running")
		return nil
	}
	defer g.tickMu.Unlock()
	return s.tick(ctx, g, false)
}

// tick consumes rate * elapsed for each resource of the group. forcePersist bypasses the write
// budget. Callers hold g.tickMu.
func (s *Scheduler) tick(ctx context.Context, g *group, forcePersist bool) error {
	started := time.Now()
	defer func() { metrics.ObserveTick(string(g.name), time.Since(started)) }()

	logger := schedulerLogger(string(g.name))

	ctx, cancel := context.WithTimeout(ctx, s.tickTimeout)
	defer cancel()

	now := s.clock.Now()
	var (
		errs     []error
		depleted models.ResourceType
	)
	for _, t := range g.resources {
		last := g.last(t)
		if last.IsZero() {
			g.setLast(t, now)
			continue
		}
		elapsed := now.Sub(last)
		if elapsed <= 0 {
			continue
		}

		r, err := s.consumer.GetResource(ctx, t)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", t, err))
			continue
		}
		amount := engine.ConsumptionFor(r.ConsumptionRate, elapsed)

		persist := forcePersist || s.budget.Take()
		res, err := s.consumer.Consume(ctx, t, amount, persist)
		if err != nil {
			// lastTick stays put so the next tick applies the whole gap
			errs = append(errs, fmt.Errorf("consume %s: %w", t, err))
			continue
		}
		g.setLast(t, now)

		logger.Debug("Consumption applied",
			zap.String("resource", string(t)),
			zap.Duration("elapsed", elapsed),
			zap.Float64("amount", amount),
			zap.Float64("level", res.NewLevel),
			zap.Bool("deferred", res.Deferred),
		)

		if g == s.engine && t.EngineTied() && res.NewLevel <= 0 && depleted == "" {
			depleted = t
		}
	}

	if depleted != "" && !forcePersist {
		s.handleDepletion(context.WithoutCancel(ctx), depleted)
	}

	return errors.Join(errs...)
}

// handleDepletion forces the engine idle from inside a tick. The loop exits once the tick returns.
func (s *Scheduler) handleDepletion(ctx context.Context, t models.ResourceType) {
	logger := schedulerLogger(common.LoggerCategoryEngine)

	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	if s.engine.cancel != nil {
		s.engine.cancel()
	}
	s.mu.Unlock()

	if err := s.consumer.Flush(ctx); err != nil {
		logger.Error("Flush after depletion failed", zap.Error(err))
	}

	st := models.EngineState{
		Running:    false,
		ChangedAt:  s.clock.Now(),
		ChangedBy:  common.SystemActor,
		StopReason: StopReasonDepleted,
	}
	if err := s.states.SaveEngineState(ctx, st); err != nil {
		logger.Error("Engine state write failed", zap.Error(err))
	}

	logger.Warn("Engine stopped, resource depleted", zap.String("resource", string(t)))
	metrics.SetEngineRunning(false)
	s.publisher.Publish(broadcast.Event{
		Type:      broadcast.EventEngineStopped,
		Resource:  t,
		Actor:     common.SystemActor,
		Engine:    &st,
		Timestamp: st.ChangedAt,
	})

	if s.onDepleted != nil {
		s.onDepleted(t)
	}
}
