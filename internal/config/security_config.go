package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// AuthService - Public
	"/rental.v1.AuthService/Register": SecurityPublic,
	"/rental.v1.AuthService/Login":    SecurityPublic,

	// Health - Public
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,
	"/grpc.health.v1.Health/List":  SecurityPublic,

	// VehicleService - catalogue reads are public
	"/rental.v1.VehicleService/GetVehicle":    SecurityPublic,
	"/rental.v1.VehicleService/ListVehicles":  SecurityPublic,
	"/rental.v1.VehicleService/CreateVehicle": SecurityAccess,
	"/rental.v1.VehicleService/UpdateVehicle": SecurityAccess,
	"/rental.v1.VehicleService/DeleteVehicle": SecurityAccess,

	// BookingService
	"/rental.v1.BookingService/CheckAvailability":   SecurityPublic,
	"/rental.v1.BookingService/CreateBooking":       SecurityAccess,
	"/rental.v1.BookingService/AdminCreateBooking":  SecurityAccess,
	"/rental.v1.BookingService/UpdateBookingStatus": SecurityAccess,
	"/rental.v1.BookingService/PayBooking":          SecurityAccess,
	"/rental.v1.BookingService/DeleteBooking":       SecurityAccess,
	"/rental.v1.BookingService/GetBooking":          SecurityAccess,
	"/rental.v1.BookingService/ListMyBookings":      SecurityAccess,
	"/rental.v1.BookingService/ListBookings":        SecurityAccess,
	"/rental.v1.BookingService/GetTicket":           SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
