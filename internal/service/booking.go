package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/metrics"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/security"
	"vehicle-rental-backend/internal/utils"
)

const (
	maxLocationLength = 255
	maxNotesLength    = 1000
)

type bookingService struct {
	store    repository.Store
	notifier Notifier
	tickets  TicketCache
	metrics  *metrics.Metrics
	clock    utils.Clock
}

func NewBookingService(store repository.Store, notifier Notifier, tickets TicketCache, m *metrics.Metrics, clock utils.Clock) BookingService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if tickets == nil {
		tickets = noopTicketCache{}
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &bookingService{
		store:    store,
		notifier: notifier,
		tickets:  tickets,
		metrics:  m,
		clock:    clock,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, customerID int32, req domain.BookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "customerID", customerID, "vehicleID", req.VehicleID)

	booking, err := s.create(ctx, customerID, req, false)
	if err != nil {
		s.metrics.BookingRejected(errorReason(err))
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "customerID", customerID, "vehicleID", req.VehicleID)
		return nil, err
	}

	s.metrics.BookingCreated(string(booking.Status))
	s.notifier.NotifyBookingCreated(ctx, booking)
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", booking.ID)
	return booking, nil
}

func (s *bookingService) AdminCreateBooking(ctx context.Context, admin domain.Actor, customerID int32, req domain.BookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.AdminCreateBooking", "adminID", admin.UserID, "customerID", customerID, "vehicleID", req.VehicleID)

	if err := security.RequirePermission(admin, domain.PermissionCreate); err != nil {
		logger.ExitMethodWithError("bookingService.AdminCreateBooking", err, "adminID", admin.UserID)
		return nil, err
	}

	booking, err := s.create(ctx, customerID, req, true)
	if err != nil {
		s.metrics.BookingRejected(errorReason(err))
		logger.ExitMethodWithError("bookingService.AdminCreateBooking", err, "adminID", admin.UserID, "vehicleID", req.VehicleID)
		return nil, err
	}

	s.metrics.BookingCreated(string(booking.Status))
	s.notifier.NotifyBookingCreated(ctx, booking)
	logger.ExitMethod("bookingService.AdminCreateBooking", "bookingID", booking.ID)
	return booking, nil
}

// create runs the overlap check and the insert as one unit of work with the
// vehicle row locked, so concurrent creates on one vehicle serialize.
func (s *bookingService) create(ctx context.Context, customerID int32, req domain.BookingRequest, byAdmin bool) (*domain.Booking, error) {
	if err := validateBookingRequest(customerID, req); err != nil {
		return nil, err
	}

	var created *domain.Booking
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		customer, err := repos.Users.GetByID(ctx, customerID)
		if err != nil {
			return notFound(err, "customer", customerID)
		}

		vehicle, err := repos.Vehicles.GetByIDForUpdate(ctx, req.VehicleID)
		if err != nil {
			return notFound(err, "vehicle", req.VehicleID)
		}
		if !byAdmin && vehicle.Status != domain.VehicleStatusAvailable {
			return fmt.Errorf("%w: vehicle %d is %s", domain.ErrConflict, vehicle.ID, vehicle.Status)
		}

		existing, err := repos.Bookings.ListBlockingByVehicle(ctx, vehicle.ID)
		if err != nil {
			return fmt.Errorf("load bookings of vehicle %d: %w", vehicle.ID, err)
		}
		if conflicts := utils.FindConflicts(req.StartDate, req.EndDate, existing); len(conflicts) > 0 {
			return fmt.Errorf("%w: vehicle %d is already booked in that period (booking %d)", domain.ErrConflict, vehicle.ID, conflicts[0].ID)
		}

		quote, err := utils.CalculateBookingPrice(req.StartDate, req.EndDate, vehicle.PricePerDayCents)
		if err != nil {
			return err
		}

		status := domain.BookingStatusPending
		if byAdmin {
			status = domain.BookingStatusConfirmed
		}
		b := &domain.Booking{
			VehicleID:       vehicle.ID,
			UserID:          customer.ID,
			StartDate:       req.StartDate.UTC(),
			EndDate:         req.EndDate.UTC(),
			TotalDays:       quote.TotalDays,
			TotalPriceCents: quote.TotalPriceCents,
			Status:          status,
			PaymentStatus:   domain.PaymentStatusPending,
			PickupLocation:  req.Extras.PickupLocation,
			DropoffLocation: req.Extras.DropoffLocation,
			Notes:           req.Extras.Notes,
			CreatedAt:       s.clock.Now(),
		}
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		b.Vehicle = vehicle
		b.Customer = customer
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Booking created",
		"booking_id", created.ID,
		"vehicle_id", created.VehicleID,
		"user_id", created.UserID,
		"status", created.Status,
		"total_price", utils.FormatCents(created.TotalPriceCents),
	)
	return created, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, actor domain.Actor, bookingID int32, status domain.BookingStatus) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.UpdateStatus", "actorID", actor.UserID, "bookingID", bookingID, "status", status)

	if !status.IsValid() {
		err := fmt.Errorf("%w: unknown booking status %q", domain.ErrValidation, status)
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	}

	var updated *domain.Booking
	var from domain.BookingStatus
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if err := security.CanTransition(actor, b, status); err != nil {
			return err
		}
		from = b.Status
		if err := applyTransition(ctx, repos, b, status); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", bookingID)
		return nil, err
	}

	s.afterTransition(ctx, updated.ID, from, updated.Status, actor.UserID)
	logger.ExitMethod("bookingService.UpdateStatus", "bookingID", bookingID, "status", updated.Status)
	return updated, nil
}

// applyTransition enforces the state machine and persists the new status.
func applyTransition(ctx context.Context, repos repository.Repositories, b *domain.Booking, to domain.BookingStatus) error {
	if !b.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: booking %d cannot move from %s to %s", domain.ErrConflict, b.ID, b.Status, to)
	}
	b.Status = to
	if err := repos.Bookings.Update(ctx, b); err != nil {
		return fmt.Errorf("update booking %d: %w", b.ID, err)
	}
	return nil
}

func (s *bookingService) afterTransition(ctx context.Context, bookingID int32, from, to domain.BookingStatus, actorID int32) {
	logger.Transition(ctx, bookingID, string(from), string(to), actorID)
	s.metrics.Transition(string(from), string(to))
	if err := s.tickets.Delete(ctx, bookingID); err != nil {
		logger.WarnContext(ctx, "Failed to invalidate cached ticket", "booking_id", bookingID, "error", err)
	}
}

func (s *bookingService) Pay(ctx context.Context, customerID, bookingID int32, card domain.CardDetails) (*domain.Ticket, error) {
	logger.EnterMethod("bookingService.Pay", "customerID", customerID, "bookingID", bookingID)

	if err := utils.ValidateCard(card, s.clock.Now()); err != nil {
		s.metrics.Payment("invalid", 0)
		logger.ExitMethodWithError("bookingService.Pay", err, "bookingID", bookingID)
		return nil, err
	}

	var ticket *domain.Ticket
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if b.UserID != customerID {
			return fmt.Errorf("%w: booking %d belongs to another user", domain.ErrForbidden, bookingID)
		}
		if b.Status != domain.BookingStatusConfirmed {
			return fmt.Errorf("%w: booking %d is %s, only CONFIRMED bookings can be paid", domain.ErrConflict, bookingID, b.Status)
		}

		prev, err := repos.Payments.GetByBookingID(ctx, bookingID)
		switch {
		case err == nil && prev.Status == domain.PaymentStatusCompleted:
			return fmt.Errorf("%w: booking %d is already paid", domain.ErrConflict, bookingID)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("load payment of booking %d: %w", bookingID, err)
		}
		if b.PaymentStatus == domain.PaymentStatusCompleted {
			return fmt.Errorf("%w: booking %d is already paid", domain.ErrConflict, bookingID)
		}

		if utils.IsDeclined(card.Number) {
			return fmt.Errorf("%w: card ending in %s was declined", domain.ErrDeclined, utils.CardLast4(card.Number))
		}

		vehicle, err := repos.Vehicles.GetByID(ctx, b.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle %d: %w", b.VehicleID, err)
		}
		customer, err := repos.Users.GetByID(ctx, b.UserID)
		if err != nil {
			return fmt.Errorf("load customer %d: %w", b.UserID, err)
		}

		payment := &domain.Payment{
			BookingID:     b.ID,
			AmountCents:   b.TotalPriceCents,
			Status:        domain.PaymentStatusCompleted,
			TransactionID: uuid.NewString(),
			CardLast4:     utils.CardLast4(card.Number),
			CardBrand:     utils.CardBrand(card.Number),
			CardHolder:    strings.TrimSpace(card.HolderName),
		}
		if err := repos.Payments.Upsert(ctx, payment); err != nil {
			return fmt.Errorf("upsert payment of booking %d: %w", b.ID, err)
		}

		b.PaymentStatus = domain.PaymentStatusCompleted
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return fmt.Errorf("mark booking %d paid: %w", b.ID, err)
		}

		ticket = &domain.Ticket{Booking: *b, Vehicle: *vehicle, Customer: *customer, Payment: *payment}
		return nil
	})
	if err != nil {
		s.metrics.Payment(errorReason(err), 0)
		logger.ExitMethodWithError("bookingService.Pay", err, "bookingID", bookingID)
		return nil, err
	}

	s.metrics.Payment("completed", ticket.Payment.AmountCents)
	logger.InfoContext(ctx, "Payment completed",
		"booking_id", bookingID,
		"transaction_id", ticket.Payment.TransactionID,
		"amount", utils.FormatCents(ticket.Payment.AmountCents),
	)
	if err := s.tickets.Set(ctx, ticket); err != nil {
		logger.WarnContext(ctx, "Failed to cache ticket", "booking_id", bookingID, "error", err)
	}
	s.notifier.NotifyPaymentCompleted(ctx, ticket)
	logger.ExitMethod("bookingService.Pay", "bookingID", bookingID, "transactionID", ticket.Payment.TransactionID)
	return ticket, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, admin domain.Actor, bookingID int32) error {
	logger.EnterMethod("bookingService.DeleteBooking", "adminID", admin.UserID, "bookingID", bookingID)

	if err := security.RequirePermission(admin, domain.PermissionDelete); err != nil {
		logger.ExitMethodWithError("bookingService.DeleteBooking", err, "bookingID", bookingID)
		return err
	}
	if err := s.store.Repos().Bookings.Delete(ctx, bookingID); err != nil {
		err = notFound(err, "booking", bookingID)
		logger.ExitMethodWithError("bookingService.DeleteBooking", err, "bookingID", bookingID)
		return err
	}
	if err := s.tickets.Delete(ctx, bookingID); err != nil {
		logger.WarnContext(ctx, "Failed to invalidate cached ticket", "booking_id", bookingID, "error", err)
	}

	logger.InfoContext(ctx, "Booking deleted", "booking_id", bookingID, "admin_id", admin.UserID)
	logger.ExitMethod("bookingService.DeleteBooking", "bookingID", bookingID)
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID int32) (*domain.Booking, error) {
	repos := s.store.Repos()
	b, err := repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if err := security.CanView(actor, b); err != nil {
		return nil, err
	}
	if b.Vehicle, err = repos.Vehicles.GetByID(ctx, b.VehicleID); err != nil {
		return nil, fmt.Errorf("load vehicle %d: %w", b.VehicleID, err)
	}
	if b.Customer, err = repos.Users.GetByID(ctx, b.UserID); err != nil {
		return nil, fmt.Errorf("load customer %d: %w", b.UserID, err)
	}
	return b, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, customerID int32, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.store.Repos().Bookings.List(ctx, domain.BookingFilter{
		UserID:   customerID,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *bookingService) ListBookings(ctx context.Context, admin domain.Actor, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	if err := security.RequirePermission(admin, domain.PermissionRead); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown booking status %q", domain.ErrValidation, filter.Status)
	}
	return s.store.Repos().Bookings.List(ctx, filter)
}

func (s *bookingService) CheckAvailability(ctx context.Context, vehicleID int32, start, end time.Time) (*domain.AvailabilityReport, error) {
	if vehicleID <= 0 {
		return nil, fmt.Errorf("%w: vehicle id is required", domain.ErrValidation)
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if _, err := repos.Vehicles.GetByID(ctx, vehicleID); err != nil {
		return nil, notFound(err, "vehicle", vehicleID)
	}
	existing, err := repos.Bookings.ListBlockingByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("load bookings of vehicle %d: %w", vehicleID, err)
	}

	conflicts := utils.FindConflicts(start, end, existing)
	return &domain.AvailabilityReport{
		VehicleID: vehicleID,
		StartDate: start,
		EndDate:   end,
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

func (s *bookingService) GetTicket(ctx context.Context, customerID, bookingID int32) (*domain.Ticket, error) {
	cached, ok, err := s.tickets.Get(ctx, bookingID)
	if err != nil {
		logger.WarnContext(ctx, "Ticket cache lookup failed", "booking_id", bookingID, "error", err)
	}
	s.metrics.TicketCache(ok)
	if ok {
		if cached.Booking.UserID != customerID {
			return nil, fmt.Errorf("%w: booking %d belongs to another user", domain.ErrForbidden, bookingID)
		}
		return cached, nil
	}

	repos := s.store.Repos()
	b, err := repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if b.UserID != customerID {
		return nil, fmt.Errorf("%w: booking %d belongs to another user", domain.ErrForbidden, bookingID)
	}
	payment, err := repos.Payments.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load payment of booking %d: %w", bookingID, err)
	}
	if payment == nil || payment.Status != domain.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: booking %d has no completed payment", domain.ErrNotFound, bookingID)
	}
	vehicle, err := repos.Vehicles.GetByID(ctx, b.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("load vehicle %d: %w", b.VehicleID, err)
	}
	customer, err := repos.Users.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, fmt.Errorf("load customer %d: %w", b.UserID, err)
	}

	ticket := &domain.Ticket{Booking: *b, Vehicle: *vehicle, Customer: *customer, Payment: *payment}
	if err := s.tickets.Set(ctx, ticket); err != nil {
		logger.WarnContext(ctx, "Failed to cache ticket", "booking_id", bookingID, "error", err)
	}
	return ticket, nil
}

func (s *bookingService) CompleteFinishedBookings(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.store.Repos().Bookings.ListFinished(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list finished bookings: %w", err)
	}
	return s.sweep(ctx, candidates, domain.BookingStatusCompleted, func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusConfirmed &&
			b.PaymentStatus == domain.PaymentStatusCompleted &&
			b.EndDate.Before(now)
	})
}

func (s *bookingService) ExpireStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	candidates, err := s.store.Repos().Bookings.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale pending bookings: %w", err)
	}
	return s.sweep(ctx, candidates, domain.BookingStatusCancelled, func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusPending && b.CreatedAt.Before(cutoff)
	})
}

// sweep moves each candidate to target in its own unit of work as the system
// actor. Candidates that changed since they were listed are skipped.
func (s *bookingService) sweep(ctx context.Context, candidates []domain.Booking, target domain.BookingStatus, still func(*domain.Booking) bool) (int, error) {
	system := domain.SystemActor()
	moved := 0
	var errs []error
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		var from domain.BookingStatus
		changed := false
		err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			b, err := repos.Bookings.GetByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			if !still(b) {
				return nil
			}
			from = b.Status
			if err := applyTransition(ctx, repos, b, target); err != nil {
				return err
			}
			changed = true
			return nil
		})
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			logger.ErrorContext(ctx, "Failed to transition booking", "booking_id", c.ID, "to_status", target, "error", err)
			errs = append(errs, fmt.Errorf("booking %d: %w", c.ID, err))
			continue
		}
		if changed {
			s.afterTransition(ctx, c.ID, from, target, system.UserID)
			moved++
		}
	}
	return moved, errors.Join(errs...)
}

func validateBookingRequest(customerID int32, req domain.BookingRequest) error {
	if customerID <= 0 {
		return fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	if req.VehicleID <= 0 {
		return fmt.Errorf("%w: vehicle id is required", domain.ErrValidation)
	}
	if err := validateRange(req.StartDate, req.EndDate); err != nil {
		return err
	}
	if len(req.Extras.PickupLocation.String) > maxLocationLength || len(req.Extras.DropoffLocation.String) > maxLocationLength {
		return fmt.Errorf("%w: location must be at most %d characters", domain.ErrValidation, maxLocationLength)
	}
	if len(req.Extras.Notes.String) > maxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", domain.ErrValidation, maxNotesLength)
	}
	return nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end date must be after start date", domain.ErrValidation)
	}
	return nil
}

// notFound converts a repository miss into the caller-facing kind.
func notFound(err error, what string, id int32) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, what, id)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrDeclined):
		return "declined"
	}
	return "internal"
}
