package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
)

func actorFromContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(MetadataActorID); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return common.AnonymousActor
}

func methodSet(methods []string) map[string]bool {
	return common.Reducer(methods,
		func(m map[string]bool, method string) map[string]bool {
			m[method] = true
			return m
		},
		map[string]bool{},
	)
}

func (s *ResourceServer) CreateRateLimitInterceptor(targetMethods []string) grpc.UnaryServerInterceptor {
	targets := methodSet(targetMethods)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if targets[info.FullMethod] && !s.CheckActorLimiter(actorFromContext(ctx)) {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
		}

		return handler(ctx, req)
	}
}

// CreateStreamRateLimitInterceptor charges one token per opened stream.
func (s *ResourceServer) CreateStreamRateLimitInterceptor(targetMethods []string) grpc.StreamServerInterceptor {
	targets := methodSet(targetMethods)

	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if targets[info.FullMethod] && !s.CheckActorLimiter(actorFromContext(ss.Context())) {
			return status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
		}

		return handler(srv, ss)
	}
}
