package rental

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"carrental/model"
	carrepo "carrental/repository/car"
	rrepo "carrental/repository/rental"
)

// errors used by controllers

type ErrCode string

const (
	ErrCarNotFound    ErrCode = "CAR_NOT_FOUND"
	ErrNotAvailable   ErrCode = "CAR_NOT_AVAILABLE"
	ErrBadDates       ErrCode = "BAD_DATES"
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrNotOwner       ErrCode = "NOT_OWNER"
	ErrNotCancellable ErrCode = "NOT_CANCELLABLE"
	ErrBadStatus      ErrCode = "BAD_STATUS"
	ErrTerminal       ErrCode = "TERMINAL_STATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// projection shapes = repository shapes
type (
	HistoryRow = rrepo.HistoryRow
	DetailRow  = rrepo.DetailRow
	AdminRow   = rrepo.AdminRow
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, r *model.Rental) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Rental, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.RentalStatus) error

	ByID(ctx context.Context, id int64) (*DetailRow, error)
	ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context) ([]AdminRow, error)
}

// CarStore is the slice of the car repository the ledger needs.
type CarStore interface {
	ByID(ctx context.Context, id int64) (*model.Car, error)
	SetAvailable(ctx context.Context, tx *sql.Tx, id int64, available bool) error
}

type Service interface {
	// Create books an available car for [start, end) and flips it unavailable.
	Create(ctx context.Context, userID, carID int64, start, end time.Time) (*model.Rental, error)

	// Cancel moves the requester's confirmed rental to cancelled and frees the car.
	Cancel(ctx context.Context, requesterID, rentalID int64) (*model.Rental, error)

	// SetStatus is the admin transition; leaving confirmed frees the car.
	SetStatus(ctx context.Context, rentalID int64, status model.RentalStatus) (*model.Rental, error)

	Detail(ctx context.Context, requesterID int64, isAdmin bool, rentalID int64) (*DetailRow, error)
	MyRentals(ctx context.Context, userID int64) ([]HistoryRow, error)
	AllRentals(ctx context.Context) ([]AdminRow, error)
}

type service struct {
	db   *sql.DB
	r    Repo
	cars CarStore
}

func New(db *sql.DB, r Repo, cars CarStore) Service {
	return &service{db: db, r: r, cars: cars}
}

// rentalDays counts billable days, partial days rounded up.
func rentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

func (s *service) Create(ctx context.Context, userID, carID int64, start, end time.Time) (*model.Rental, error) {
	car, err := s.cars.ByID(ctx, carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrCarNotFound)
		}
		return nil, err
	}
	if !car.Available {
		return nil, makeErr(ErrNotAvailable)
	}

	days := rentalDays(start, end)
	if days <= 0 {
		return nil, makeErr(ErrBadDates)
	}
	cost := float64(days) * car.DailyRate

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Conditional flip first: it serializes concurrent bookings on the car
	// row, and a lost race aborts before any rental is written.
	if err = s.cars.SetAvailable(ctx, tx, carID, false); err != nil {
		if errors.Is(err, carrepo.ErrStale) {
			err = makeErr(ErrNotAvailable)
		}
		return nil, err
	}

	m := &model.Rental{
		UserID:    userID,
		CarID:     carID,
		StartDate: start,
		EndDate:   end,
		TotalCost: cost,
		Status:    model.RentalConfirmed,
	}
	if err = s.r.Insert(ctx, tx, m); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Cancel(ctx context.Context, requesterID, rentalID int64) (*model.Rental, error) {
	m, err := s.mutate(ctx, rentalID, func(m *model.Rental) error {
		if m.UserID != requesterID {
			return makeErr(ErrNotOwner)
		}
		if m.Status != model.RentalConfirmed {
			return makeErr(ErrNotCancellable)
		}
		m.Status = model.RentalCancelled
		return nil
	})
	return m, err
}

func (s *service) SetStatus(ctx context.Context, rentalID int64, status model.RentalStatus) (*model.Rental, error) {
	if !status.Valid() {
		return nil, makeErr(ErrBadStatus)
	}
	return s.mutate(ctx, rentalID, func(m *model.Rental) error {
		if m.Status.Terminal() {
			return makeErr(ErrTerminal)
		}
		m.Status = status
		return nil
	})
}

// mutate loads the rental under a row lock, applies the transition and, when
// the rental leaves confirmed for a terminal state, frees the car in the same
// transaction.
func (s *service) mutate(ctx context.Context, rentalID int64, transition func(*model.Rental) error) (*model.Rental, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	m, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = makeErr(ErrNotFound)
		}
		return nil, err
	}

	wasConfirmed := m.Status == model.RentalConfirmed
	if err = transition(m); err != nil {
		return nil, err
	}

	if err = s.r.UpdateStatus(ctx, tx, rentalID, m.Status); err != nil {
		return nil, err
	}
	if wasConfirmed && m.Status.Terminal() {
		// The car row may be gone (deleted cars keep their rental history)
		// or already available; a missed flip must not block the release.
		// The conditional guard is only load-bearing on the booking path.
		if err = s.cars.SetAvailable(ctx, tx, m.CarID, true); err != nil {
			if !errors.Is(err, carrepo.ErrStale) {
				return nil, err
			}
			err = nil
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Detail(ctx context.Context, requesterID int64, isAdmin bool, rentalID int64) (*DetailRow, error) {
	d, err := s.r.ByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if d.UserID != requesterID && !isAdmin {
		return nil, makeErr(ErrNotOwner)
	}
	return d, nil
}

func (s *service) MyRentals(ctx context.Context, userID int64) ([]HistoryRow, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) AllRentals(ctx context.Context) ([]AdminRow, error) {
	return s.r.ListAll(ctx)
}
