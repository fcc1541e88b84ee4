// Package memory is an in-process implementation of the persistence port.
// It serializes units of work on the same vehicle or booking with per-key
// locks held until the unit ends, and rolls writes back through an undo log.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

type Store struct {
	mu sync.Mutex

	users    map[int32]domain.User
	vehicles map[int32]domain.Vehicle
	bookings map[int32]domain.Booking
	payments map[int32]domain.Payment // keyed by booking id

	nextUserID    int32
	nextVehicleID int32
	nextBookingID int32
	nextPaymentID int32

	vehicleLocks keyedLocks
	bookingLocks keyedLocks

	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:        make(map[int32]domain.User),
		vehicles:     make(map[int32]domain.Vehicle),
		bookings:     make(map[int32]domain.Booking),
		payments:     make(map[int32]domain.Payment),
		vehicleLocks: keyedLocks{locks: make(map[int32]*sync.Mutex)},
		bookingLocks: keyedLocks{locks: make(map[int32]*sync.Mutex)},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Repos() repository.Repositories {
	return (&unit{store: s}).repos()
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	u := &unit{store: s, inTx: true}
	defer u.release()
	defer func() {
		if p := recover(); p != nil {
			u.rollback()
			panic(p)
		}
		if err != nil {
			u.rollback()
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, u.repos())
}

type keyedLocks struct {
	mu    sync.Mutex
	locks map[int32]*sync.Mutex
}

func (k *keyedLocks) get(id int32) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	return l
}

// unit is one unit of work. Outside a transaction writes apply immediately
// and FOR UPDATE reads take no locks.
type unit struct {
	store *Store
	inTx  bool
	undo  []func()
	held  []*sync.Mutex
	keys  map[string]bool
}

func (u *unit) repos() repository.Repositories {
	return repository.Repositories{
		Users:    &userRepo{u},
		Vehicles: &vehicleRepo{u},
		Bookings: &bookingRepo{u},
		Payments: &paymentRepo{u},
	}
}

func (u *unit) lock(locks *keyedLocks, kind string, id int32) {
	if !u.inTx {
		return
	}
	key := fmt.Sprintf("%s/%d", kind, id)
	if u.keys == nil {
		u.keys = make(map[string]bool)
	}
	if u.keys[key] {
		return
	}
	l := locks.get(id)
	l.Lock()
	u.keys[key] = true
	u.held = append(u.held, l)
}

func (u *unit) release() {
	for i := len(u.held) - 1; i >= 0; i-- {
		u.held[i].Unlock()
	}
	u.held = nil
}

// record must be called with store.mu held.
func (u *unit) record(fn func()) {
	if u.inTx {
		u.undo = append(u.undo, fn)
	}
}

func (u *unit) rollback() {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
}

type userRepo struct{ u *unit }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = copyUser(*user)
	id := user.ID
	r.u.record(func() { delete(s.users, id) })
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := copyUser(user)
	return &c, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			c := copyUser(user)
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func copyUser(u domain.User) domain.User {
	u.Permissions = append([]domain.Permission(nil), u.Permissions...)
	return u
}

type vehicleRepo struct{ u *unit }

func (r *vehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vehicles {
		if strings.EqualFold(existing.PlateNumber, v.PlateNumber) {
			return fmt.Errorf("%w: vehicles_plate_number_key", repository.ErrDuplicate)
		}
	}
	s.nextVehicleID++
	v.ID = s.nextVehicleID
	v.CreatedAt = s.now()
	v.UpdatedAt = v.CreatedAt
	s.vehicles[v.ID] = *v
	id := v.ID
	r.u.record(func() { delete(s.vehicles, id) })
	return nil
}

func (r *vehicleRepo) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *vehicleRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error) {
	r.u.lock(&r.u.store.vehicleLocks, "vehicle", id)
	return r.GetByID(ctx, id)
}

func (r *vehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.vehicles[v.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range s.vehicles {
		if id != v.ID && strings.EqualFold(existing.PlateNumber, v.PlateNumber) {
			return fmt.Errorf("%w: vehicles_plate_number_key", repository.ErrDuplicate)
		}
	}
	v.CreatedAt = prev.CreatedAt
	v.UpdatedAt = s.now()
	s.vehicles[v.ID] = *v
	r.u.record(func() { s.vehicles[prev.ID] = prev })
	return nil
}

// Delete cascades to the vehicle's bookings and their payments.
func (r *vehicleRepo) Delete(ctx context.Context, id int32) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.vehicles, id)
	r.u.record(func() { s.vehicles[id] = prev })
	for bid, b := range s.bookings {
		if b.VehicleID == id {
			r.u.deleteBookingLocked(bid)
		}
	}
	return nil
}

func (r *vehicleRepo) List(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	s := r.u.store
	s.mu.Lock()
	var all []domain.Vehicle
	for _, v := range s.vehicles {
		if status == "" || v.Status == status {
			all = append(all, v)
		}
	}
	s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, pageSize), int32(len(all)), nil
}

type bookingRepo struct{ u *unit }

func (r *bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[b.VehicleID]; !ok {
		return fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, b.VehicleID)
	}
	if _, ok := s.users[b.UserID]; !ok {
		return fmt.Errorf("%w: user %d", repository.ErrNotFound, b.UserID)
	}
	s.nextBookingID++
	b.ID = s.nextBookingID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	b.UpdatedAt = b.CreatedAt
	s.bookings[b.ID] = stripBooking(*b)
	id := b.ID
	r.u.record(func() { delete(s.bookings, id) })
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *bookingRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Booking, error) {
	r.u.lock(&r.u.store.bookingLocks, "booking", id)
	return r.GetByID(ctx, id)
}

func (r *bookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.bookings[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := prev
	next.Status = b.Status
	next.PaymentStatus = b.PaymentStatus
	next.UpdatedAt = s.now()
	s.bookings[b.ID] = next
	b.UpdatedAt = next.UpdatedAt
	r.u.record(func() { s.bookings[prev.ID] = prev })
	return nil
}

func (r *bookingRepo) Delete(ctx context.Context, id int32) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	r.u.deleteBookingLocked(id)
	return nil
}

// deleteBookingLocked removes a booking and its payment. store.mu must be held.
func (u *unit) deleteBookingLocked(id int32) {
	s := u.store
	prev := s.bookings[id]
	delete(s.bookings, id)
	u.record(func() { s.bookings[id] = prev })
	if p, ok := s.payments[id]; ok {
		delete(s.payments, id)
		u.record(func() { s.payments[id] = p })
	}
}

func (r *bookingRepo) ListBlockingByVehicle(ctx context.Context, vehicleID int32) ([]domain.Booking, error) {
	out := r.filter(func(b domain.Booking) bool {
		return b.VehicleID == vehicleID && b.Status.IsBlocking()
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *bookingRepo) CountBlockingByVehicle(ctx context.Context, vehicleID int32) (int32, error) {
	out, _ := r.ListBlockingByVehicle(ctx, vehicleID)
	return int32(len(out)), nil
}

func (r *bookingRepo) ListIDsByVehicle(ctx context.Context, vehicleID int32) ([]int32, error) {
	out := r.filter(func(b domain.Booking) bool { return b.VehicleID == vehicleID })
	sortByID(out)
	ids := make([]int32, 0, len(out))
	for _, b := range out {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (r *bookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	out := r.filter(func(b domain.Booking) bool {
		return (f.UserID == 0 || b.UserID == f.UserID) &&
			(f.VehicleID == 0 || b.VehicleID == f.VehicleID) &&
			(f.Status == "" || b.Status == f.Status)
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, f.Page, f.PageSize), int32(len(out)), nil
}

func (r *bookingRepo) ListFinished(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	out := r.filter(func(b domain.Booking) bool {
		return b.Status == domain.BookingStatusConfirmed &&
			b.PaymentStatus == domain.PaymentStatusCompleted &&
			b.EndDate.Before(now)
	})
	sortByID(out)
	return out, nil
}

func (r *bookingRepo) ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	out := r.filter(func(b domain.Booking) bool {
		return b.Status == domain.BookingStatusPending && b.CreatedAt.Before(cutoff)
	})
	sortByID(out)
	return out, nil
}

func (r *bookingRepo) filter(keep func(domain.Booking) bool) []domain.Booking {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

type paymentRepo struct{ u *unit }

func (r *paymentRepo) GetByBookingID(ctx context.Context, bookingID int32) (*domain.Payment, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepo) Upsert(ctx context.Context, p *domain.Payment) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[p.BookingID]; !ok {
		return fmt.Errorf("%w: booking %d", repository.ErrNotFound, p.BookingID)
	}
	now := s.now()
	prev, existed := s.payments[p.BookingID]
	if existed {
		p.ID = prev.ID
		p.CreatedAt = prev.CreatedAt
	} else {
		s.nextPaymentID++
		p.ID = s.nextPaymentID
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.payments[p.BookingID] = *p
	bookingID := p.BookingID
	r.u.record(func() {
		if existed {
			s.payments[bookingID] = prev
		} else {
			delete(s.payments, bookingID)
		}
	})
	return nil
}

func stripBooking(b domain.Booking) domain.Booking {
	b.Vehicle = nil
	b.Customer = nil
	return b
}

func sortByID(bookings []domain.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
}

func paginate[T any](items []T, page, pageSize int32) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	start := int64(page-1) * int64(pageSize)
	if start >= int64(len(items)) {
		return nil
	}
	end := start + int64(pageSize)
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}
