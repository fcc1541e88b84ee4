package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Services exchange google.protobuf.Struct messages, so the descriptors are
// declared here instead of being generated.

const (
	AuthServiceName    = "rental.v1.AuthService"
	VehicleServiceName = "rental.v1.VehicleService"
	BookingServiceName = "rental.v1.BookingService"
)

type AuthServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type VehicleServiceServer interface {
	CreateVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVehicles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type BookingServiceServer interface {
	CreateBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdminCreateBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateBookingStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PayBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMyBookings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBookings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTicket(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "Register", AuthServiceServer.Register),
		unary(AuthServiceName, "Login", AuthServiceServer.Login),
	},
	Streams: []grpc.StreamDesc{},
}

var VehicleService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: VehicleServiceName,
	HandlerType: (*VehicleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(VehicleServiceName, "CreateVehicle", VehicleServiceServer.CreateVehicle),
		unary(VehicleServiceName, "GetVehicle", VehicleServiceServer.GetVehicle),
		unary(VehicleServiceName, "ListVehicles", VehicleServiceServer.ListVehicles),
		unary(VehicleServiceName, "UpdateVehicle", VehicleServiceServer.UpdateVehicle),
		unary(VehicleServiceName, "DeleteVehicle", VehicleServiceServer.DeleteVehicle),
	},
	Streams: []grpc.StreamDesc{},
}

var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(BookingServiceName, "CreateBooking", BookingServiceServer.CreateBooking),
		unary(BookingServiceName, "AdminCreateBooking", BookingServiceServer.AdminCreateBooking),
		unary(BookingServiceName, "UpdateBookingStatus", BookingServiceServer.UpdateBookingStatus),
		unary(BookingServiceName, "PayBooking", BookingServiceServer.PayBooking),
		unary(BookingServiceName, "DeleteBooking", BookingServiceServer.DeleteBooking),
		unary(BookingServiceName, "GetBooking", BookingServiceServer.GetBooking),
		unary(BookingServiceName, "ListMyBookings", BookingServiceServer.ListMyBookings),
		unary(BookingServiceName, "ListBookings", BookingServiceServer.ListBookings),
		unary(BookingServiceName, "CheckAvailability", BookingServiceServer.CheckAvailability),
		unary(BookingServiceName, "GetTicket", BookingServiceServer.GetTicket),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

func RegisterVehicleServiceServer(s grpc.ServiceRegistrar, srv VehicleServiceServer) {
	s.RegisterService(&VehicleService_ServiceDesc, srv)
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

func unary[S any](service, method string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := FullMethod(service, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
