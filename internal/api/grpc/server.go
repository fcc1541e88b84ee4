package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"vehicle-rental-backend/internal/api/grpc/interceptor"
	"vehicle-rental-backend/internal/metrics"
	"vehicle-rental-backend/internal/security"
	"vehicle-rental-backend/internal/service"
)

type ServerDeps struct {
	Auth         service.AuthService
	Vehicles     service.VehicleService
	Bookings     service.BookingService
	TokenManager security.TokenManager
	Metrics      *metrics.Metrics
	Health       *health.Server
}

// NewServer builds the gRPC server with the interceptor chain and every
// rental service registered.
func NewServer(d ServerDeps, opts ...grpc.ServerOption) *grpc.Server {
	authInterceptor := interceptor.NewAuthInterceptor(d.TokenManager)
	opts = append(opts, grpc.ChainUnaryInterceptor(
		interceptor.Recovery(),
		interceptor.Metrics(d.Metrics),
		authInterceptor.Unary(),
	))
	s := grpc.NewServer(opts...)

	RegisterAuthServiceServer(s, NewAuthHandler(d.Auth))
	RegisterVehicleServiceServer(s, NewVehicleHandler(d.Vehicles))
	RegisterBookingServiceServer(s, NewBookingHandler(d.Bookings))

	if d.Health != nil {
		healthpb.RegisterHealthServer(s, d.Health)
		for _, name := range []string{"", AuthServiceName, VehicleServiceName, BookingServiceName} {
			d.Health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
		}
	}
	return s
}
