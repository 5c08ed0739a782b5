package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"liyu1981.xyz/vessel-resource-service/pkg/alerts"
	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/vessel"
)

type applyActionRequest struct {
	Resource string
	Action   string
	Amount   float64
}

var applyActionSchema = z.Struct(z.Shape{
	"resource": z.String().Min(1).Required(),
	"action":   z.String().Min(1).Required(),
	"amount":   z.Float64().GTE(0),
})

func grpcLogger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameGrpcServer)
}

// toStruct goes through JSON so the wire shape matches the REST responses.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func statusError(err error) error {
	switch {
	case errors.Is(err, vessel.ErrUnknownResource), errors.Is(err, alerts.ErrAlertNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, vessel.ErrInvalidThreshold):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		grpcLogger().Error("Request failed", zap.Error(err))
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *ResourceServer) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.Vessel.Resource.GetResourceStatus(ctx)
	if err != nil {
		return nil, statusError(err)
	}
	out, err := toStruct(st)
	if err != nil {
		return nil, statusError(err)
	}
	return out, nil
}

func (s *ResourceServer) ApplyAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in applyActionRequest
	if errs := applyActionSchema.Parse(req.AsMap(), &in); errs != nil {
		return nil, status.Errorf(codes.InvalidArgument, "validation error: %v", errs)
	}

	t, ok := models.ParseResourceType(in.Resource)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown resource %s", in.Resource)
	}

	result, err := s.Vessel.Resource.ApplyResourceAction(ctx, t, in.Amount, models.Action(in.Action), actorFromContext(ctx))
	if err != nil {
		return nil, statusError(err)
	}
	out, err := toStruct(result)
	if err != nil {
		return nil, statusError(err)
	}
	return out, nil
}

// Watch streams broadcast events until the client cancels or the broadcaster closes.
func (s *ResourceServer) Watch(_ *emptypb.Empty, stream ResourceService_WatchServer) error {
	if s.Broadcaster == nil {
		return status.Error(codes.Unavailable, "event stream not available")
	}

	logger := grpcLogger()
	ctx := stream.Context()

	id, events := s.Broadcaster.Subscribe()
	defer s.Broadcaster.Unsubscribe(id)

	logger.Debug("Watch stream opened", zap.Uint64("subscriber", id), zap.String("actor", actorFromContext(ctx)))

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch stream closed by client", zap.Uint64("subscriber", id))
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			msg, err := toStruct(e)
			if err != nil {
				return status.Error(codes.Internal, fmt.Sprintf("encode event: %v", err))
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}
