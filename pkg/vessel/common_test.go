package vessel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/db"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel/mocks"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (p *recordingPublisher) Publish(e broadcast.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *recordingPublisher) ofType(t broadcast.EventType) []broadcast.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []broadcast.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []models.Alert
}

func (n *recordingNotifier) Notify(alert models.Alert) {
	n.mu.Lock()
	n.alerts = append(n.alerts, alert)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

// failingStore fails SaveResource while failSaves is set.
type failingStore struct {
	Store
	mu        sync.Mutex
	failSaves bool
}

var errSaveFailed = errors.New("disk full")

func (f *failingStore) setFail(fail bool) {
	f.mu.Lock()
	f.failSaves = fail
	f.mu.Unlock()
}

func (f *failingStore) SaveResource(ctx context.Context, r *models.Resource) error {
	f.mu.Lock()
	fail := f.failSaves
	f.mu.Unlock()
	if fail {
		return errSaveFailed
	}
	return f.Store.SaveResource(ctx, r)
}

var testStart = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func testResources() []models.Resource {
	return []models.Resource{
		{Type: models.ResourceFuel, Level: 50, Capacity: 1000, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 50, Unit: "L/h"}, LastUpdated: testStart},
		{Type: models.ResourceOil, Level: 100, Capacity: 200, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 2, Unit: "L/h"}, LastUpdated: testStart},
		{Type: models.ResourceFood, Level: 100, Capacity: 5000, Unit: "kg", ConsumptionRate: models.ConsumptionRate{Value: 150, Unit: "kg/day"}, LastUpdated: testStart},
		{Type: models.ResourceWater, Level: 100, Capacity: 20000, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 3000, Unit: "L/day"}, LastUpdated: testStart},
	}
}

func newTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	d, err := db.Open(db.UseNamedMemorySqliteDialector(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return store.NewGormStore(d)
}

func GetMockVesselWithMemorySqlite(t *testing.T, useMockIResource, useMockIAlert, useMockIThreshold bool, opts ...Option) (
	*gomock.Controller,
	*Vessel,
	*mocks.MockIResource,
	*mocks.MockIAlert,
	*mocks.MockIThreshold,
) {
	ctrl := gomock.NewController(t)

	mockIResource := mocks.NewMockIResource(ctrl)
	mockIAlert := mocks.NewMockIAlert(ctrl)
	mockIThreshold := mocks.NewMockIThreshold(ctrl)

	opts = append([]Option{WithClock(&fixedClock{now: testStart})}, opts...)
	vesselInstance := New(newTestStore(t), opts...)
	require.NoError(t, vesselInstance.Seed(context.Background(), testResources()))

	resourceService := vesselInstance.GetIResource()
	if useMockIResource {
		resourceService = mockIResource
	}

	alertService := vesselInstance.GetIAlert()
	if useMockIAlert {
		alertService = mockIAlert
	}

	thresholdService := vesselInstance.GetIThreshold()
	if useMockIThreshold {
		thresholdService = mockIThreshold
	}

	vesselInstance.WithServices(ServiceOpts{
		Resource:  resourceService,
		Alert:     alertService,
		Threshold: thresholdService,
	})

	return ctrl, vesselInstance, mockIResource, mockIAlert, mockIThreshold
}
