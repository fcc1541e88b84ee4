package postgres

import (
	"context"
	"fmt"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

type vehicleRepository struct {
	db dbtx
}

const vehicleColumns = `id, make, model, year, plate_number, status, price_per_day_cents, created_at, updated_at`

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	logger.EnterMethod("vehicleRepository.Create", "plate", v.PlateNumber)
	query := `INSERT INTO vehicles (make, model, year, plate_number, status, price_per_day_cents, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, v.Make, v.Model, v.Year, v.PlateNumber, v.Status, v.PricePerDayCents, now).Scan(&v.ID)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Create", err, "plate", v.PlateNumber)
		return translateError(err)
	}
	v.CreatedAt = now
	v.UpdatedAt = now
	logger.ExitMethod("vehicleRepository.Create", "vehicleID", v.ID)
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return v, nil
}

func (r *vehicleRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("vehicleRepository.GetByIDForUpdate", query, "vehicleID", id)
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		logger.DatabaseResult("vehicleRepository.GetByIDForUpdate", 0, err, "vehicleID", id)
		return nil, translateError(err)
	}
	return v, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles SET make=$1, model=$2, year=$3, plate_number=$4, status=$5, price_per_day_cents=$6, updated_at=$7 WHERE id=$8`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, v.Make, v.Model, v.Year, v.PlateNumber, v.Status, v.PricePerDayCents, now, v.ID)
	if err != nil {
		return translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	v.UpdatedAt = now
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *vehicleRepository) List(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM vehicles"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(page, pageSize)
	query := `SELECT ` + vehicleColumns + ` FROM vehicles` + where +
		fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, count, rows.Err()
}

func scanVehicle(row interface{ Scan(dest ...any) error }) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	if err := row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.PlateNumber, &v.Status, &v.PricePerDayCents, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return v, nil
}
