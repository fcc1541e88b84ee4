package grpc

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/guregu/null.v4"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/utils"
)

func MapDomainUserToProto(u *domain.User) map[string]any {
	if u == nil {
		return nil
	}
	perms := make([]any, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		perms = append(perms, string(p))
	}
	return map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"phone":       u.PhoneNumber,
		"role":        string(u.Role),
		"permissions": perms,
		"created_at":  formatTime(u.CreatedAt),
	}
}

func MapDomainVehicleToProto(v *domain.Vehicle) map[string]any {
	if v == nil {
		return nil
	}
	return map[string]any{
		"id":                  v.ID,
		"make":                v.Make,
		"model":               v.Model,
		"year":                v.Year,
		"plate_number":        v.PlateNumber,
		"status":              string(v.Status),
		"price_per_day":       utils.FormatCents(v.PricePerDayCents),
		"price_per_day_cents": v.PricePerDayCents,
		"created_at":          formatTime(v.CreatedAt),
		"updated_at":          formatTime(v.UpdatedAt),
	}
}

func MapDomainBookingToProto(b *domain.Booking) map[string]any {
	if b == nil {
		return nil
	}
	m := map[string]any{
		"id":                b.ID,
		"vehicle_id":        b.VehicleID,
		"user_id":           b.UserID,
		"start_date":        formatTime(b.StartDate),
		"end_date":          formatTime(b.EndDate),
		"total_days":        b.TotalDays,
		"total_price":       utils.FormatCents(b.TotalPriceCents),
		"total_price_cents": b.TotalPriceCents,
		"status":            string(b.Status),
		"payment_status":    string(b.PaymentStatus),
		"pickup_location":   nullable(b.PickupLocation),
		"dropoff_location":  nullable(b.DropoffLocation),
		"notes":             nullable(b.Notes),
		"created_at":        formatTime(b.CreatedAt),
		"updated_at":        formatTime(b.UpdatedAt),
	}
	if b.Vehicle != nil {
		m["vehicle"] = MapDomainVehicleToProto(b.Vehicle)
	}
	if b.Customer != nil {
		m["customer"] = MapDomainUserToProto(b.Customer)
	}
	return m
}

func MapDomainBookingsToProto(bookings []domain.Booking) []any {
	out := make([]any, 0, len(bookings))
	for i := range bookings {
		out = append(out, MapDomainBookingToProto(&bookings[i]))
	}
	return out
}

func MapDomainTicketToProto(t *domain.Ticket) map[string]any {
	return map[string]any{
		"booking":  MapDomainBookingToProto(&t.Booking),
		"vehicle":  MapDomainVehicleToProto(&t.Vehicle),
		"customer": MapDomainUserToProto(&t.Customer),
		"payment": map[string]any{
			"id":             t.Payment.ID,
			"amount":         utils.FormatCents(t.Payment.AmountCents),
			"amount_cents":   t.Payment.AmountCents,
			"status":         string(t.Payment.Status),
			"transaction_id": t.Payment.TransactionID,
			"card_last4":     t.Payment.CardLast4,
			"card_brand":     t.Payment.CardBrand,
			"card_holder":    t.Payment.CardHolder,
			"paid_at":        formatTime(t.Payment.UpdatedAt),
		},
	}
}

func MapDomainAvailabilityToProto(r *domain.AvailabilityReport) map[string]any {
	return map[string]any{
		"vehicle_id": r.VehicleID,
		"start_date": formatTime(r.StartDate),
		"end_date":   formatTime(r.EndDate),
		"available":  r.Available,
		"conflicts":  MapDomainBookingsToProto(r.Conflicts),
	}
}

// ParseBookingStatus accepts any letter case.
func ParseBookingStatus(s string) (domain.BookingStatus, error) {
	st := domain.BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: unknown booking status %q", domain.ErrValidation, s)
	}
	return st, nil
}

// ParseVehicleStatus accepts any letter case.
func ParseVehicleStatus(s string) (domain.VehicleStatus, error) {
	st := domain.VehicleStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: unknown vehicle status %q", domain.ErrValidation, s)
	}
	return st, nil
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(m)
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullable(s null.String) any {
	if !s.Valid {
		return nil
	}
	return s.String
}
