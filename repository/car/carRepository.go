package car

import (
	"context"
	"database/sql"
	"errors"

	"carrental/model"
)

// ErrStale is returned by SetAvailable when the row is already in the
// requested state, i.e. the availability precondition no longer holds.
var ErrStale = errors.New("car availability precondition failed")

// Patch carries the admin-patchable fields. License plate and availability
// are deliberately absent: the plate identifies the physical unit and the
// availability flag belongs to the rental ledger.
type Patch struct {
	Make      *string
	Model     *string
	Year      *int
	DailyRate *float64
	ImageURL  *string
}

type Repo interface {
	List(ctx context.Context) ([]model.Car, error)
	ListAvailable(ctx context.Context) ([]model.Car, error)
	ByID(ctx context.Context, id int64) (*model.Car, error)
	Create(ctx context.Context, c *model.Car) error
	Update(ctx context.Context, id int64, p Patch) (*model.Car, error)
	Delete(ctx context.Context, id int64) error

	// SetAvailable conditionally flips the availability flag inside tx.
	// It fails with ErrStale unless the flag actually changes.
	SetAvailable(ctx context.Context, tx *sql.Tx, id int64, available bool) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const carColumns = `id, make, model, year, license_plate, daily_rate, image_url, available, created_at`

func scanCar(row interface{ Scan(...any) error }, c *model.Car) error {
	return row.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.LicensePlate,
		&c.DailyRate, &c.ImageURL, &c.Available, &c.CreatedAt)
}

func (r *repo) List(ctx context.Context) ([]model.Car, error) {
	const q = `
		SELECT ` + carColumns + `
		FROM cars
		ORDER BY created_at DESC, id DESC`
	return r.queryCars(ctx, q)
}

func (r *repo) ListAvailable(ctx context.Context) ([]model.Car, error) {
	const q = `
		SELECT ` + carColumns + `
		FROM cars
		WHERE available = TRUE
		ORDER BY created_at DESC, id DESC`
	return r.queryCars(ctx, q)
}

func (r *repo) queryCars(ctx context.Context, q string) ([]model.Car, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Car
	for rows.Next() {
		var c model.Car
		if err := scanCar(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Car, error) {
	const q = `
		SELECT ` + carColumns + `
		FROM cars
		WHERE id = $1`
	c := &model.Car{}
	if err := scanCar(r.db.QueryRowContext(ctx, q, id), c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) Create(ctx context.Context, c *model.Car) error {
	// New cars always start available.
	const q = `
		INSERT INTO cars (make, model, year, license_plate, daily_rate, image_url, available)
		VALUES ($1,$2,$3,$4,$5,$6,TRUE)
		RETURNING id, available, created_at`
	return r.db.QueryRowContext(ctx, q,
		c.Make, c.Model, c.Year, c.LicensePlate, c.DailyRate, c.ImageURL,
	).Scan(&c.ID, &c.Available, &c.CreatedAt)
}

func (r *repo) Update(ctx context.Context, id int64, p Patch) (*model.Car, error) {
	const q = `
		UPDATE cars
		SET make       = COALESCE($2::text, make),
		    model      = COALESCE($3::text, model),
		    year       = COALESCE($4::int, year),
		    daily_rate = COALESCE($5::numeric, daily_rate),
		    image_url  = COALESCE($6::text, image_url)
		WHERE id = $1
		RETURNING ` + carColumns
	c := &model.Car{}
	err := scanCar(r.db.QueryRowContext(ctx, q, id, p.Make, p.Model, p.Year, p.DailyRate, p.ImageURL), c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetAvailable(ctx context.Context, tx *sql.Tx, id int64, available bool) error {
	// Guard: only flip if the flag is currently in the opposite state.
	const q = `
		UPDATE cars
		SET available = $2
		WHERE id = $1
		AND available <> $2`
	res, err := tx.ExecContext(ctx, q, id, available)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrStale
	}
	return nil
}
