package api

import (
	"context"
	"strings"

	"campus_scheduler/internal/domain"
	"campus_scheduler/internal/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ScheduleServiceName                   = "campus.scheduler.v1.ScheduleService"
	ScheduleServiceListBookingsMethod     = "/" + ScheduleServiceName + "/ListBookings"
	ScheduleServiceGetOccupiedSlotsMethod = "/" + ScheduleServiceName + "/GetOccupiedSlots"
)

// ScheduleServer is the read-only RPC surface. Requests and responses are
// google.protobuf.Struct so no generated stubs are needed.
type ScheduleServer interface {
	ListBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOccupiedSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ScheduleServiceDesc = grpc.ServiceDesc{
	ServiceName: ScheduleServiceName,
	HandlerType: (*ScheduleServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListBookings", Handler: listBookingsHandler},
		{MethodName: "GetOccupiedSlots", Handler: getOccupiedSlotsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "campus/scheduler/v1/schedule.proto",
}

func RegisterScheduleServer(s grpc.ServiceRegistrar, srv ScheduleServer) {
	s.RegisterService(&ScheduleServiceDesc, srv)
}

func listBookingsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScheduleServer).ListBookings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ScheduleServiceListBookingsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScheduleServer).ListBookings(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getOccupiedSlotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScheduleServer).GetOccupiedSlots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ScheduleServiceGetOccupiedSlotsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScheduleServer).GetOccupiedSlots(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ScheduleService answers ScheduleServer calls from the booking service.
type ScheduleService struct {
	svc domain.BookingService
}

func NewScheduleService(svc domain.BookingService) *ScheduleService {
	return &ScheduleService{svc: svc}
}

func (s *ScheduleService) ListBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter := models.BookingFilter{
		Status: stringField(req, "status"),
		Venue:  stringField(req, "venue"),
		Date:   stringField(req, "date"),
	}

	bookings, err := s.svc.ListBookings(ctx, filter)
	if err != nil {
		return nil, toStatus(err)
	}

	list := make([]any, 0, len(bookings))
	for _, b := range bookings {
		list = append(list, map[string]any{
			"id":         b.ID,
			"venue":      b.Venue,
			"event_type": b.EventType,
			"event_name": b.EventName,
			"date":       b.Date.String(),
			"start_time": b.StartTime.String(),
			"end_time":   b.EndTime.String(),
			"status":     b.Status,
		})
	}

	out, err := structpb.NewStruct(map[string]any{"bookings": list})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode bookings")
	}
	return out, nil
}

func (s *ScheduleService) GetOccupiedSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	venue := stringField(req, "venue")
	date := stringField(req, "date")

	bookings, err := s.svc.GetOccupiedSlots(ctx, venue, date)
	if err != nil {
		return nil, toStatus(err)
	}

	slots := make([]any, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, map[string]any{
			"id":         b.ID,
			"start_time": b.StartTime.String(),
			"end_time":   b.EndTime.String(),
			"event_name": b.EventName,
		})
	}

	out, err := structpb.NewStruct(map[string]any{
		"venue": venue,
		"date":  date,
		"slots": slots,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode slots")
	}
	return out, nil
}

func stringField(req *structpb.Struct, key string) string {
	if req == nil {
		return ""
	}
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

func toStatus(err error) error {
	switch {
	case domain.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsConflict(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
