package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

type bookingRepository struct {
	db dbtx
}

const bookingColumns = `id, vehicle_id, user_id, start_date, end_date, total_days, total_price_cents, status, payment_status,
	pickup_location, dropoff_location, notes, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "vehicleID", b.VehicleID, "userID", b.UserID)
	query := `INSERT INTO bookings (vehicle_id, user_id, start_date, end_date, total_days, total_price_cents, status, payment_status,
	          pickup_location, dropoff_location, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12) RETURNING id`
	now := b.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, query,
		b.VehicleID, b.UserID, b.StartDate, b.EndDate, b.TotalDays, b.TotalPriceCents, b.Status, b.PaymentStatus,
		b.PickupLocation, b.DropoffLocation, b.Notes, now,
	).Scan(&b.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err, "vehicleID", b.VehicleID)
		return translateError(err)
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

func (r *bookingRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("bookingRepository.GetByIDForUpdate", query, "bookingID", id)
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		logger.DatabaseResult("bookingRepository.GetByIDForUpdate", 0, err, "bookingID", id)
		return nil, translateError(err)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1, payment_status=$2, updated_at=$3 WHERE id=$4`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, b.Status, b.PaymentStatus, now, b.ID)
	if err != nil {
		return translateError(err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("bookingRepository.Update", n, nil, "bookingID", b.ID, "status", b.Status)
	if n == 0 {
		return repository.ErrNotFound
	}
	b.UpdatedAt = now
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) ListBlockingByVehicle(ctx context.Context, vehicleID int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE vehicle_id = $1 AND status IN ($2, $3) ORDER BY start_date`
	return r.query(ctx, query, vehicleID, domain.BookingStatusPending, domain.BookingStatusConfirmed)
}

func (r *bookingRepository) CountBlockingByVehicle(ctx context.Context, vehicleID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM bookings WHERE vehicle_id = $1 AND status IN ($2, $3)`
	err := r.db.QueryRowContext(ctx, query, vehicleID, domain.BookingStatusPending, domain.BookingStatusConfirmed).Scan(&count)
	return count, translateError(err)
}

func (r *bookingRepository) ListIDsByVehicle(ctx context.Context, vehicleID int32) ([]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM bookings WHERE vehicle_id = $1 ORDER BY id`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	var conds []string
	var args []any
	if f.UserID != 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.VehicleID != 0 {
		args = append(args, f.VehicleID)
		conds = append(conds, fmt.Sprintf("vehicle_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM bookings"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	bookings, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) ListFinished(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND payment_status = $2 AND end_date < $3 ORDER BY id`
	return r.query(ctx, query, domain.BookingStatusConfirmed, domain.PaymentStatusCompleted, now)
}

func (r *bookingRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND created_at < $2 ORDER BY id`
	return r.query(ctx, query, domain.BookingStatusPending, cutoff)
}

func (r *bookingRepository) query(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row interface{ Scan(dest ...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID, &b.VehicleID, &b.UserID, &b.StartDate, &b.EndDate, &b.TotalDays, &b.TotalPriceCents, &b.Status, &b.PaymentStatus,
		&b.PickupLocation, &b.DropoffLocation, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}
