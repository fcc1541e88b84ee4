package postgres

import (
	"context"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
)

type paymentRepository struct {
	db dbtx
}

func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID int32) (*domain.Payment, error) {
	query := `SELECT id, booking_id, amount_cents, status, transaction_id, card_last4, card_brand, card_holder, created_at, updated_at
	          FROM payments WHERE booking_id = $1`
	p := &domain.Payment{}
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&p.ID, &p.BookingID, &p.AmountCents, &p.Status, &p.TransactionID, &p.CardLast4, &p.CardBrand, &p.CardHolder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (r *paymentRepository) Upsert(ctx context.Context, p *domain.Payment) error {
	logger.EnterMethod("paymentRepository.Upsert", "bookingID", p.BookingID)
	query := `INSERT INTO payments (booking_id, amount_cents, status, transaction_id, card_last4, card_brand, card_holder, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	          ON CONFLICT (booking_id) DO UPDATE SET
	              amount_cents = EXCLUDED.amount_cents,
	              status = EXCLUDED.status,
	              transaction_id = EXCLUDED.transaction_id,
	              card_last4 = EXCLUDED.card_last4,
	              card_brand = EXCLUDED.card_brand,
	              card_holder = EXCLUDED.card_holder,
	              updated_at = EXCLUDED.updated_at
	          RETURNING id, created_at`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		p.BookingID, p.AmountCents, p.Status, p.TransactionID, p.CardLast4, p.CardBrand, p.CardHolder, now,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Upsert", err, "bookingID", p.BookingID)
		return translateError(err)
	}
	p.UpdatedAt = now
	logger.ExitMethod("paymentRepository.Upsert", "paymentID", p.ID)
	return nil
}
