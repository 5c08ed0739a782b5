package grpc

import (
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"liyu1981.xyz/vessel-resource-service/pkg/broadcast"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel"
)

// MetadataActorID carries the acting crew member, the gRPC twin of the X-Actor-ID header.
const MetadataActorID = "x-actor-id"

type ResourceServer struct {
	Vessel           *vessel.Vessel
	Broadcaster      *broadcast.Broadcaster
	RateLimiterStore *vessel.RateLimiterStore
}

func (s *ResourceServer) GetLimiter(actorID string) *rate.Limiter {
	if s.RateLimiterStore == nil {
		return nil
	} else {
		return s.RateLimiterStore.GetLimiter(actorID)
	}
}

func (s *ResourceServer) CheckActorLimiter(actorID string) bool {
	limiter := s.GetLimiter(actorID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

// NewServer builds a grpc.Server with the resource service, the standard health service and
// per-actor rate limiting on the resource service methods.
func NewServer(s *ResourceServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	limited := []string{
		ResourceService_GetStatus_FullMethodName,
		ResourceService_ApplyAction_FullMethodName,
	}
	opts = append(opts,
		grpc.UnaryInterceptor(s.CreateRateLimitInterceptor(limited)),
		grpc.StreamInterceptor(s.CreateStreamRateLimitInterceptor([]string{ResourceService_Watch_FullMethodName})),
	)
	server := grpc.NewServer(opts...)
	RegisterResourceServiceServer(server, s)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ResourceServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server, healthServer
}
