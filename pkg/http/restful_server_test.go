package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	_ "liyu1981.xyz/vessel-resource-service/pkg/testing"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel/mocks"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/db"
	"liyu1981.xyz/vessel-resource-service/pkg/engine"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/report"
	"liyu1981.xyz/vessel-resource-service/pkg/scheduler"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel"
)

// idleTicker never fires, scheduler loops only exit on stop.
type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }

func (idleTicker) Stop() {}

var testStart = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func testResources() []models.Resource {
	return []models.Resource{
		{Type: models.ResourceFuel, Level: 50, Capacity: 1000, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 50, Unit: "L/h"}, LastUpdated: testStart},
		{Type: models.ResourceOil, Level: 100, Capacity: 200, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 2, Unit: "L/h"}, LastUpdated: testStart},
		{Type: models.ResourceFood, Level: 100, Capacity: 5000, Unit: "kg", ConsumptionRate: models.ConsumptionRate{Value: 150, Unit: "kg/day"}, LastUpdated: testStart},
		{Type: models.ResourceWater, Level: 100, Capacity: 20000, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 3000, Unit: "L/day"}, LastUpdated: testStart},
	}
}

func setupTestServer(t *testing.T) *RestfulServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d, err := db.Open(db.UseNamedMemorySqliteDialector(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	st := store.NewGormStore(d)
	clock := &fixedClock{now: testStart}
	broadcaster := broadcast.NewBroadcaster()
	t.Cleanup(broadcaster.Close)

	vesselObj := vessel.New(st, vessel.WithClock(clock), vessel.WithPublisher(broadcaster))
	require.NoError(t, vesselObj.Seed(context.Background(), testResources()))

	sched := scheduler.New(vesselObj.Resource, st,
		scheduler.WithClock(clock),
		scheduler.WithTicker(func(time.Duration) scheduler.Ticker { return idleTicker{} }),
		scheduler.WithPublisher(broadcaster),
	)
	t.Cleanup(func() { _ = sched.Shutdown(context.Background()) })

	rs := &RestfulServer{
		Server:      gin.Default(),
		Vessel:      vesselObj,
		Engine:      sched,
		Broadcaster: broadcaster,
		Reports:     report.NewRegistry(time.UTC),
		// default we use no limiter, if need, later assign it rs.RateLimiterStore = vessel.NewRateLimiterStore(...)
	}

	rs.Setup()

	return rs
}

func doJSON(rs *RestfulServer, method, path string, body any, actor string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(HeaderActorID, actor)
	}
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	rs := setupTestServer(t)

	w := doJSON(rs, "GET", "/healthz", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rs := setupTestServer(t)

	w := doJSON(rs, "GET", "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostActionAndGetStatus(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	w := doJSON(rs, "POST", "/resources/fuel/actions", ActionRequest{Amount: 100, Action: "consumption"}, "chief")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.ActionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 40.0, result.NewLevel, 1e-9)
	assert.Empty(t, result.Warning)

	w = doJSON(rs, "GET", "/resources", nil, "chief")
	require.Equal(t, http.StatusOK, w.Code)

	var status map[models.ResourceType]models.ResourceStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Len(t, status, 4)
	assert.InDelta(t, 40.0, status[models.ResourceFuel].Level, 1e-9)
	assert.Equal(t, "L", status[models.ResourceFuel].Unit)

	w = doJSON(rs, "GET", "/resources/fuel/history", nil, "chief")
	require.Equal(t, http.StatusOK, w.Code)
	var page store.HistoryPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "chief", page.Entries[0].Actor)
}

func TestPostAction_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	{
		rs := setupTestServer(t)
		w := doJSON(rs, "POST", "/resources/coal/actions", ActionRequest{Amount: 1, Action: "refill"}, "chief")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	{
		rs := setupTestServer(t)
		// empty payload should be rejected
		req := httptest.NewRequest("POST", "/resources/fuel/actions", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		rs := setupTestServer(t)
		w := doJSON(rs, "POST", "/resources/fuel/actions", ActionRequest{Amount: -5, Action: "refill"}, "chief")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		rs := setupTestServer(t)
		// unknown actions are reported back, nothing changes
		w := doJSON(rs, "POST", "/resources/fuel/actions", ActionRequest{Amount: 10, Action: "drain"}, "chief")
		require.Equal(t, http.StatusOK, w.Code)
		var result models.ActionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.NotEmpty(t, result.Warning)
		assert.Equal(t, 50.0, result.NewLevel)
	}

	{
		rs := setupTestServer(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockIResource := mocks.NewMockIResource(ctrl)
		rs.Vessel.Resource = mockIResource
		mockIResource.EXPECT().
			ApplyResourceAction(gomock.Any(), gomock.Eq(models.ResourceFuel), gomock.Eq(10.0), gomock.Eq(models.ActionRefill), gomock.Eq("chief")).
			Return(models.ActionResult{}, fmt.Errorf("just causing error")).
			Times(1)

		w := doJSON(rs, "POST", "/resources/fuel/actions", ActionRequest{Amount: 10, Action: "refill"}, "chief")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	}
}

func TestHistoryPaging(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	for range 3 {
		w := doJSON(rs, "POST", "/resources/water/actions", ActionRequest{Amount: 100, Action: "consumption"}, "cook")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(rs, "GET", "/resources/water/history?page=2&limit=2", nil, "cook")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page store.HistoryPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Entries, 1)

	w = doJSON(rs, "GET", "/resources/water/history?page=1&limit=2", nil, "cook")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Entries, 2)

	// over the cap is clamped, not rejected
	w = doJSON(rs, "GET", "/resources/water/history?limit=501", nil, "cook")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Entries, 3)

	w = doJSON(rs, "GET", "/resources/water/history?page=-1", nil, "cook")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, "GET", "/resources/water/history?startDate=2026-03-02T00:00:00Z&endDate=2026-03-01T00:00:00Z", nil, "cook")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, "GET", "/resources/water/history?startDate=2026-03-02T00:00:00Z", nil, "cook")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Zero(t, page.Total)
}

func TestDeliveries(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	w := doJSON(rs, "POST", "/resources/fuel/deliveries", DeliveryRequest{Amount: 300, Document: "BDN-2291"}, "bosun")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(rs, "GET", "/resources/fuel/deliveries", nil, "bosun")
	require.Equal(t, http.StatusOK, w.Code)
	var page store.DeliveryPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Deliveries, 1)
	assert.Equal(t, "BDN-2291", page.Deliveries[0].Document)

	w = doJSON(rs, "POST", "/resources/fuel/deliveries", DeliveryRequest{Amount: 0}, "bosun")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRemaining(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	w := doJSON(rs, "GET", "/resources/fuel/remaining", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp RemainingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Unbounded)
	require.NotNil(t, resp.Hours)
	assert.InDelta(t, 10.0, *resp.Hours, 1e-9)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockIResource := mocks.NewMockIResource(ctrl)
	rs.Vessel.Resource = mockIResource
	mockIResource.EXPECT().
		GetRemaining(gomock.Any(), gomock.Eq(models.ResourceOil)).
		Return(engine.Remaining{Absolute: 200, Hours: math.Inf(1), Days: math.Inf(1)}, nil).
		Times(1)

	w = doJSON(rs, "GET", "/resources/oil/remaining", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"resource":"oil","absolute":200,"hours":null,"days":null,"unbounded":true}`, w.Body.String())
}

func TestAlertsFlow(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	w := doJSON(rs, "POST", "/resources/fuel/actions", ActionRequest{Amount: 180, Action: "manual_update"}, "chief")
	require.Equal(t, http.StatusOK, w.Code)
	var result models.ActionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Alert)
	assert.Equal(t, models.SeverityCritical, result.Alert.Severity)

	w = doJSON(rs, "GET", "/alerts?active=true&resource=fuel", nil, "chief")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	id := list[0].ID

	w = doJSON(rs, "POST", "/alerts/"+id+"/acknowledge", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)
	var alert models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alert))
	assert.True(t, alert.Acknowledged.Status)
	assert.Equal(t, "officer", alert.Acknowledged.By)

	w = doJSON(rs, "POST", "/alerts/"+id+"/sound", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(rs, "GET", "/alerts?severity=warning", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)

	w = doJSON(rs, "GET", "/alerts?resource=oil", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)

	w = doJSON(rs, "POST", "/alerts/"+id+"/resolve", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(rs, "GET", "/alerts?active=true", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)

	w = doJSON(rs, "GET", "/alerts?active=false&severity=critical", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	w = doJSON(rs, "GET", "/alerts/stats", nil, "officer")
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.AlertStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Resolved)

	w = doJSON(rs, "POST", "/alerts/missing/acknowledge", nil, "officer")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(rs, "GET", "/alerts?severity=urgent", nil, "officer")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, "GET", "/alerts?active=maybe", nil, "officer")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThresholdsAndCrew(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	w := doJSON(rs, "POST", "/thresholds/chief/fuel", ThresholdRequest{Warning: 40, Critical: 25}, "chief")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(rs, "GET", "/thresholds/chief", nil, "chief")
	require.Equal(t, http.StatusOK, w.Code)
	var thresholds map[models.ResourceType]models.Thresholds
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &thresholds))
	assert.Equal(t, models.Thresholds{Warning: 40, Critical: 25}, thresholds[models.ResourceFuel])
	assert.Equal(t, models.Thresholds{Warning: 35, Critical: 20}, thresholds[models.ResourceOil])

	w = doJSON(rs, "POST", "/thresholds/chief/fuel", ThresholdRequest{Warning: 40, Critical: 150}, "chief")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, "POST", "/thresholds/chief/coal", ThresholdRequest{Warning: 40, Critical: 25}, "chief")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(rs, "POST", "/crew", CrewRequest{ID: "chief", Name: "Chief Engineer", Email: "chief@vessel.example", NotifyEmail: true}, "chief")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	crew, err := rs.Vessel.Threshold.ListCrew(context.Background())
	require.NoError(t, err)
	require.Len(t, crew, 1)
	assert.Equal(t, "chief", crew[0].ID)

	w = doJSON(rs, "POST", "/crew", CrewRequest{Name: "Nobody"}, "chief")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEngineControl(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	w := doJSON(rs, "POST", "/engine", EngineRequest{Running: true}, "chief")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state models.EngineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Running)
	assert.Equal(t, "chief", state.ChangedBy)

	w = doJSON(rs, "GET", "/engine", nil, "chief")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Running)

	w = doJSON(rs, "POST", "/engine", EngineRequest{Running: false}, "chief")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.False(t, state.Running)
	assert.Equal(t, scheduler.StopReasonManual, state.StopReason)

	// an empty tank refuses to start
	w = doJSON(rs, "POST", "/resources/oil/actions", ActionRequest{Amount: 0, Action: "manual_update"}, "chief")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(rs, "POST", "/engine", EngineRequest{Running: true}, "chief")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRateLimit(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	rs.RateLimiterStore = vessel.NewRateLimiterStore(0.001, 1)

	w := doJSON(rs, "GET", "/resources", nil, "deckhand")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(rs, "GET", "/resources", nil, "deckhand")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// other actors have their own budget
	w = doJSON(rs, "GET", "/resources", nil, "chief")
	assert.Equal(t, http.StatusOK, w.Code)

	// healthz is never limited
	w = doJSON(rs, "GET", "/healthz", nil, "deckhand")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(rs, "POST", "/limiter/deckhand", LimiterRequest{Rate: 100, Burst: 100}, "captain")
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(rs, "GET", "/resources", nil, "deckhand")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStreamEvents(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		rs.Server.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool {
		return rs.Broadcaster.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	_, err := rs.Vessel.Resource.ApplyResourceAction(context.Background(), models.ResourceFuel, 100, models.ActionConsumption, "chief")
	require.NoError(t, err)

	// give the stream a moment to relay before hanging up
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 0, rs.Broadcaster.SubscriberCount())
	body := w.Body.String()
	assert.Contains(t, body, "event:resource.updated")
	assert.Contains(t, body, `"resource":"fuel"`)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
}

func TestGetReport(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	w := doJSON(rs, "POST", "/resources/fuel/deliveries", DeliveryRequest{Amount: 100, Document: "BDN-1"}, "bosun")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(rs, "GET", "/reports/fuel?format=xlsx", nil, "bosun")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fuel-report-20260301.xlsx")
	assert.NotZero(t, w.Body.Len())

	w = doJSON(rs, "GET", "/reports/fuel?format=pdf", nil, "bosun")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = doJSON(rs, "GET", "/reports/fuel?format=csv", nil, "bosun")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, "GET", "/reports/coal", nil, "bosun")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
