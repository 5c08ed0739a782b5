package vessel

import (
	"context"
	"errors"
	"sync"
	"time"

	"liyu1981.xyz/vessel-resource-service/pkg/alerts"
	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
)

var (
	ErrUnknownResource  = errors.New("vessel: unknown resource")
	ErrInvalidThreshold = errors.New("vessel: invalid threshold")
)

//go:generate mockgen -destination=mocks/mock_vessel.go -package=mocks liyu1981.xyz/vessel-resource-service/pkg/vessel IResource,IAlert,IThreshold

type IResource interface {
	ApplyResourceAction(ctx context.Context, t models.ResourceType, amount float64, action models.Action, actor string) (models.ActionResult, error)
	RecordDelivery(ctx context.Context, t models.ResourceType, amount float64, document, actor string) (models.ActionResult, error)
	// Consume applies scheduler consumption. With persist false the write is deferred and the
	// in-memory copy supersedes the stored row until Flush.
	Consume(ctx context.Context, t models.ResourceType, amount float64, persist bool) (models.ActionResult, error)
	Flush(ctx context.Context) error
	GetResource(ctx context.Context, t models.ResourceType) (*models.Resource, error)
	GetResourceStatus(ctx context.Context) (map[models.ResourceType]models.ResourceStatus, error)
	GetHistory(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.HistoryPage, error)
	GetDeliveries(ctx context.Context, t models.ResourceType, filter store.HistoryFilter) (store.DeliveryPage, error)
	GetRemaining(ctx context.Context, t models.ResourceType) (engine.Remaining, error)
}

type IAlert interface {
	// EvaluateLevel raises a new alert for the resource's current level, if due, and resolves
	// alerts the level has recovered from.
	EvaluateLevel(ctx context.Context, resource *models.Resource, actor string) (*models.Alert, []models.Alert, error)
	ListAlerts(ctx context.Context, filter store.AlertFilter) ([]models.Alert, error)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id, actor string) (*models.Alert, error)
	ResolveAlert(ctx context.Context, id, actor string) (*models.Alert, error)
	RecordSoundPlayed(ctx context.Context, id string) (*models.Alert, error)
	GetAlertStats(ctx context.Context) (models.AlertStats, error)
}

type IThreshold interface {
	UpsertThreshold(ctx context.Context, userID string, t models.ResourceType, th models.Thresholds) error
	GetUserThresholds(ctx context.Context, userID string) (map[models.ResourceType]models.Thresholds, error)
	EffectiveThresholds(ctx context.Context, t models.ResourceType) (models.Thresholds, error)
	UpsertCrewMember(ctx context.Context, member models.CrewMember) error
	ListCrew(ctx context.Context) ([]models.CrewMember, error)
}

type Store interface {
	store.ResourceStore
	store.AlertStore
	store.ThresholdStore
	store.CrewStore
}

// Notifier receives newly raised alerts. notify.Dispatcher implements it.
type Notifier interface {
	Notify(alert models.Alert)
}

type Vessel struct {
	Store     Store
	Engine    *engine.Engine
	Evaluator *alerts.Evaluator
	Lifecycle *alerts.Lifecycle
	Publisher broadcast.Publisher
	Notifier  Notifier
	Defaults  models.Thresholds

	Resource  IResource
	Alert     IAlert
	Threshold IThreshold

	clock engine.Clock
	slots map[models.ResourceType]*slot
}

// slot serializes read-modify-write on one resource and holds its unflushed copy.
type slot struct {
	mu    sync.Mutex
	dirty *models.Resource
}

type ServiceOpts struct {
	Resource  IResource
	Alert     IAlert
	Threshold IThreshold
}

func (v *Vessel) WithServices(opts ServiceOpts) *Vessel {
	if opts.Resource != nil {
		v.Resource = opts.Resource
	}
	if opts.Alert != nil {
		v.Alert = opts.Alert
	}
	if opts.Threshold != nil {
		v.Threshold = opts.Threshold
	}
	return v
}

type Option func(*Vessel)

func WithClock(clock engine.Clock) Option {
	return func(v *Vessel) {
		if clock != nil {
			v.clock = clock
		}
	}
}

func WithPublisher(p broadcast.Publisher) Option {
	return func(v *Vessel) {
		if p != nil {
			v.Publisher = p
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(v *Vessel) {
		v.Notifier = n
	}
}

func WithDefaultThresholds(th models.Thresholds) Option {
	return func(v *Vessel) {
		v.Defaults = th
	}
}

func New(st Store, opts ...Option) *Vessel {
	v := &Vessel{
		Store:     st,
		Publisher: broadcast.Nop{},
		Defaults:  models.Thresholds{Warning: 35, Critical: 20},
		clock:     engine.SystemClock{},
		slots:     make(map[models.ResourceType]*slot, len(models.AllResourceTypes)),
	}
	for _, opt := range opts {
		opt(v)
	}
	for _, t := range models.AllResourceTypes {
		v.slots[t] = &slot{}
	}

	v.Engine = engine.New(engine.WithClock(v.clock))
	v.Evaluator = alerts.NewEvaluator(st, alerts.WithClock(v.clock))
	v.Lifecycle = alerts.NewLifecycle(st, alerts.WithClock(v.clock))

	return v.WithServices(ServiceOpts{
		Resource:  v.GetIResource(),
		Alert:     v.GetIAlert(),
		Threshold: v.GetIThreshold(),
	})
}

func (v *Vessel) Now() time.Time {
	return v.clock.Now()
}

// Seed inserts the configured defaults for resources that do not exist yet.
func (v *Vessel) Seed(ctx context.Context, defaults []models.Resource) error {
	return v.Store.EnsureResources(ctx, defaults)
}
