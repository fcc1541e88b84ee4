package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func bookingRequest(f *fields) domain.BookingRequest {
	return domain.BookingRequest{
		VehicleID: f.id("vehicle_id"),
		StartDate: f.time("start_date"),
		EndDate:   f.time("end_date"),
		Extras: domain.BookingExtras{
			PickupLocation:  f.nullStr("pickup_location"),
			DropoffLocation: f.nullStr("dropoff_location"),
			Notes:           f.nullStr("notes"),
		},
	}
}

func (h *BookingHandler) CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	in := bookingRequest(f)
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	b, err := h.bookingSvc.CreateBooking(ctx, userID, in)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"booking": MapDomainBookingToProto(b)})
}

func (h *BookingHandler) AdminCreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	customerID := f.id("user_id")
	in := bookingRequest(f)
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	b, err := h.bookingSvc.AdminCreateBooking(ctx, actor, customerID, in)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"booking": MapDomainBookingToProto(b)})
}

func (h *BookingHandler) UpdateBookingStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	id := f.id("id")
	raw := f.str("status")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	st, err := ParseBookingStatus(raw)
	if err != nil {
		return nil, mapError(ctx, err)
	}

	b, err := h.bookingSvc.UpdateStatus(ctx, actor, id, st)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"booking": MapDomainBookingToProto(b)})
}

func (h *BookingHandler) PayBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	bookingID := f.id("booking_id")
	c := f.object("card")
	card := domain.CardDetails{
		Number:      c.str("number"),
		HolderName:  c.str("holder_name"),
		ExpiryMonth: int(c.int32("expiry_month")),
		ExpiryYear:  int(c.int32("expiry_year")),
		CVV:         c.str("cvv"),
	}
	f.merge("card", c)
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	ticket, err := h.bookingSvc.Pay(ctx, userID, bookingID, card)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"ticket": MapDomainTicketToProto(ticket)})
}

func (h *BookingHandler) DeleteBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	id := f.id("id")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	if err := h.bookingSvc.DeleteBooking(ctx, actor, id); err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"success": true})
}

func (h *BookingHandler) GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	id := f.id("id")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	b, err := h.bookingSvc.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"booking": MapDomainBookingToProto(b)})
}

func (h *BookingHandler) ListMyBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	page, pageSize := f.int32("page"), f.int32("page_size")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	bookings, count, err := h.bookingSvc.ListMyBookings(ctx, userID, page, pageSize)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"bookings": MapDomainBookingsToProto(bookings), "total_count": count})
}

func (h *BookingHandler) ListBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	actor, err := GetActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	filter := domain.BookingFilter{
		UserID:    f.int32("user_id"),
		VehicleID: f.int32("vehicle_id"),
		Page:      f.int32("page"),
		PageSize:  f.int32("page_size"),
	}
	if s := f.str("status"); s != "" {
		if filter.Status, err = ParseBookingStatus(s); err != nil {
			return nil, mapError(ctx, err)
		}
	}
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}

	bookings, count, err := h.bookingSvc.ListBookings(ctx, actor, filter)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"bookings": MapDomainBookingsToProto(bookings), "total_count": count})
}

func (h *BookingHandler) CheckAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)
	vehicleID := f.id("vehicle_id")
	start, end := f.time("start_date"), f.time("end_date")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	report, err := h.bookingSvc.CheckAvailability(ctx, vehicleID, start, end)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(MapDomainAvailabilityToProto(report))
}

func (h *BookingHandler) GetTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	f := newFields(req)
	bookingID := f.id("booking_id")
	if err := f.err(); err != nil {
		return nil, mapError(ctx, err)
	}
	ticket, err := h.bookingSvc.GetTicket(ctx, userID, bookingID)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return toStruct(map[string]any{"ticket": MapDomainTicketToProto(ticket)})
}
