package grpc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/db"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/store"
	_ "liyu1981.xyz/vessel-resource-service/pkg/testing"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel"

	"liyu1981.xyz/vessel-resource-service/pkg/vessel/mocks"
)

const bufSize = 1024 * 1024

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

func newTestVessel(t *testing.T, publisher broadcast.Publisher) *vessel.Vessel {
	t.Helper()

	d, err := db.Open(db.UseNamedMemorySqliteDialector(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	v := vessel.New(store.NewGormStore(d), vessel.WithClock(&fixedClock{now: testStart}), vessel.WithPublisher(publisher))
	require.NoError(t, v.Seed(context.Background(), []models.Resource{
		{Type: models.ResourceFuel, Level: 50, Capacity: 1000, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 50, Unit: "L/h"}, LastUpdated: testStart},
		{Type: models.ResourceOil, Level: 100, Capacity: 200, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 2, Unit: "L/h"}, LastUpdated: testStart},
		{Type: models.ResourceFood, Level: 100, Capacity: 5000, Unit: "kg", ConsumptionRate: models.ConsumptionRate{Value: 150, Unit: "kg/day"}, LastUpdated: testStart},
		{Type: models.ResourceWater, Level: 100, Capacity: 20000, Unit: "L", ConsumptionRate: models.ConsumptionRate{Value: 3000, Unit: "L/day"}, LastUpdated: testStart},
	}))
	return v
}

func startTestServer(t *testing.T, server *ResourceServer) *grpc.ClientConn {
	t.Helper()

	listener := bufconn.Listen(bufSize)
	grpcServer, _ := NewServer(server)

	go func() {
		_ = grpcServer.Serve(listener)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func withActor(actor string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), MetadataActorID, actor)
}

func actionRequest(t *testing.T, resource, action string, amount float64) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(map[string]any{
		"resource": resource,
		"action":   action,
		"amount":   amount,
	})
	require.NoError(t, err)
	return req
}

func TestApplyActionSchema_WireKeys(t *testing.T) {
	var in applyActionRequest
	errs := applyActionSchema.Parse(map[string]any{"resource": "fuel", "action": "refill", "amount": 12.5}, &in)
	require.Nil(t, errs)
	assert.Equal(t, applyActionRequest{Resource: "fuel", Action: "refill", Amount: 12.5}, in)

	// manual_update to zero is a valid request
	in = applyActionRequest{}
	errs = applyActionSchema.Parse(map[string]any{"resource": "oil", "action": "manual_update", "amount": 0.0}, &in)
	require.Nil(t, errs)
	assert.Equal(t, 0.0, in.Amount)

	in = applyActionRequest{}
	errs = applyActionSchema.Parse(map[string]any{"resource": "fuel"}, &in)
	assert.NotEmpty(t, errs["action"])
}

func TestApplyActionAndGetStatus(t *testing.T) {
	common.SetTestLoggerNop()

	broadcaster := broadcast.NewBroadcaster()
	defer broadcaster.Close()
	conn := startTestServer(t, &ResourceServer{Vessel: newTestVessel(t, broadcaster), Broadcaster: broadcaster})
	client := NewResourceServiceClient(conn)

	resp, err := client.ApplyAction(withActor("chief"), actionRequest(t, "fuel", "consumption", 100))
	require.NoError(t, err)
	assert.InDelta(t, 40.0, resp.AsMap()["newLevel"], 1e-9)
	assert.Equal(t, "fuel", resp.AsMap()["resource"])

	st, err := client.GetStatus(withActor("chief"), &emptypb.Empty{})
	require.NoError(t, err)
	fuel, ok := st.AsMap()["fuel"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 40.0, fuel["level"], 1e-9)
	assert.Len(t, st.AsMap(), 4)
}

func TestApplyAction_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	{
		conn := startTestServer(t, &ResourceServer{Vessel: newTestVessel(t, broadcast.Nop{})})
		client := NewResourceServiceClient(conn)

		// missing resource fails validation
		_, err := client.ApplyAction(withActor("chief"), &structpb.Struct{})
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.InvalidArgument, st.Code())
		assert.True(t, strings.Contains(st.Message(), "validation error"))

		_, err = client.ApplyAction(withActor("chief"), actionRequest(t, "fuel", "refill", -1))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = client.ApplyAction(withActor("chief"), actionRequest(t, "coal", "refill", 1))
		assert.Equal(t, codes.NotFound, status.Code(err))

		// unknown action comes back as a warning
		resp, err := client.ApplyAction(withActor("chief"), actionRequest(t, "fuel", "drain", 1))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AsMap()["warning"])
	}

	{
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		v := newTestVessel(t, broadcast.Nop{})
		mockIResource := mocks.NewMockIResource(ctrl)
		v.WithServices(vessel.ServiceOpts{Resource: mockIResource})

		mockIResource.EXPECT().
			ApplyResourceAction(gomock.Any(), gomock.Eq(models.ResourceOil), gomock.Eq(5.0), gomock.Eq(models.ActionRefill), gomock.Eq("chief")).
			Return(models.ActionResult{}, fmt.Errorf("test error")).
			Times(1)

		conn := startTestServer(t, &ResourceServer{Vessel: v})
		client := NewResourceServiceClient(conn)

		_, err := client.ApplyAction(withActor("chief"), actionRequest(t, "oil", "refill", 5))
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.Internal, st.Code())
		assert.Contains(t, st.Message(), "test error")
	}
}

func TestRateLimitInterceptor(t *testing.T) {
	common.SetTestLoggerNop()

	limiterStore := vessel.NewRateLimiterStore(0.001, 2)
	conn := startTestServer(t, &ResourceServer{Vessel: newTestVessel(t, broadcast.Nop{}), RateLimiterStore: limiterStore})
	client := NewResourceServiceClient(conn)

	for i := range 2 {
		_, err := client.GetStatus(withActor("deckhand"), &emptypb.Empty{})
		require.NoError(t, err, "expected request %d to pass", i+1)
	}

	_, err := client.GetStatus(withActor("deckhand"), &emptypb.Empty{})
	require.Error(t, err, "expected third request to be rate limited")
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error")
	require.Equal(t, codes.ResourceExhausted, st.Code())

	// other actors are unaffected
	_, err = client.GetStatus(withActor("chief"), &emptypb.Empty{})
	require.NoError(t, err)

	limiterStore.SetLimiter("deckhand", 100, 10)
	_, err = client.GetStatus(withActor("deckhand"), &emptypb.Empty{})
	require.NoError(t, err)

	// health checks are never limited
	limiterStore.SetLimiter(common.AnonymousActor, 0.001, 0)
	hc, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.Status)
}

func TestHealthService(t *testing.T) {
	common.SetTestLoggerNop()

	conn := startTestServer(t, &ResourceServer{Vessel: newTestVessel(t, broadcast.Nop{})})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ResourceServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestWatch(t *testing.T) {
	common.SetTestLoggerNop()

	broadcaster := broadcast.NewBroadcaster()
	defer broadcaster.Close()
	v := newTestVessel(t, broadcaster)
	conn := startTestServer(t, &ResourceServer{Vessel: v, Broadcaster: broadcaster})
	client := NewResourceServiceClient(conn)

	ctx, cancel := context.WithCancel(withActor("bridge"))
	defer cancel()

	stream, err := client.Watch(ctx, &emptypb.Empty{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return broadcaster.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	_, err = v.Resource.ApplyResourceAction(context.Background(), models.ResourceFuel, 180, models.ActionManualUpdate, "chief")
	require.NoError(t, err)

	msg, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, string(broadcast.EventResourceUpdated), msg.AsMap()["type"])
	assert.Equal(t, "fuel", msg.AsMap()["resource"])

	// 18% is below the default critical threshold
	msg, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, string(broadcast.EventAlertCreated), msg.AsMap()["type"])

	cancel()
	require.Eventually(t, func() bool {
		return broadcaster.SubscriberCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestWatch_Unavailable(t *testing.T) {
	common.SetTestLoggerNop()

	conn := startTestServer(t, &ResourceServer{Vessel: newTestVessel(t, broadcast.Nop{})})
	client := NewResourceServiceClient(conn)

	stream, err := client.Watch(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
