package rental

import (
	"context"
	"database/sql"

	"carrental/model"
)

// HistoryRow is a customer's rental with the car summary joined in.
type HistoryRow struct {
	model.Rental
	Car model.CarSummary `json:"car"`
}

// DetailRow is a single rental with the full car row and the owner joined in.
type DetailRow struct {
	model.Rental
	Car  CarDetail         `json:"car"`
	User model.UserSummary `json:"user"`
}

// CarDetail mirrors model.Car but tolerates a deleted car row.
type CarDetail struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	LicensePlate string  `json:"license_plate"`
	DailyRate    float64 `json:"daily_rate"`
	ImageURL     string  `json:"image_url"`
	Available    bool    `json:"available"`
}

// AdminRow is the fleet-wide listing with car and user summaries.
type AdminRow struct {
	model.Rental
	Car  model.CarSummary  `json:"car"`
	User model.UserSummary `json:"user"`
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, r *model.Rental) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Rental, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.RentalStatus) error

	ByID(ctx context.Context, id int64) (*DetailRow, error)
	ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context) ([]AdminRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, m *model.Rental) error {
	const q = `
		INSERT INTO rentals (user_id, car_id, start_date, end_date, total_cost, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		m.UserID, m.CarID, m.StartDate, m.EndDate, m.TotalCost, m.Status,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Rental, error) {
	const q = `
		SELECT id, user_id, car_id, start_date, end_date, total_cost, status, created_at
		FROM rentals
		WHERE id = $1
		FOR UPDATE`
	m := &model.Rental{}
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.UserID, &m.CarID, &m.StartDate, &m.EndDate,
		&m.TotalCost, &m.Status, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.RentalStatus) error {
	const q = `
		UPDATE rentals
		SET status = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, status)
	return err
}

func (r *repo) ByID(ctx context.Context, id int64) (*DetailRow, error) {
	// LEFT JOIN: deleted cars leave dangling car_id references behind.
	const q = `
		SELECT
			r.id, r.user_id, r.car_id, r.start_date, r.end_date,
			r.total_cost, r.status, r.created_at,
			COALESCE(c.make,''), COALESCE(c.model,''), COALESCE(c.year,0),
			COALESCE(c.license_plate,''), COALESCE(c.daily_rate,0),
			COALESCE(c.image_url,''), COALESCE(c.available,FALSE),
			u.name, u.email
		FROM rentals r
		LEFT JOIN cars c ON c.id = r.car_id
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`
	d := &DetailRow{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.CarID, &d.StartDate, &d.EndDate,
		&d.TotalCost, &d.Status, &d.CreatedAt,
		&d.Car.Make, &d.Car.Model, &d.Car.Year,
		&d.Car.LicensePlate, &d.Car.DailyRate,
		&d.Car.ImageURL, &d.Car.Available,
		&d.User.Name, &d.User.Email,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error) {
	const q = `
		SELECT
			r.id, r.user_id, r.car_id, r.start_date, r.end_date,
			r.total_cost, r.status, r.created_at,
			COALESCE(c.make,''), COALESCE(c.model,''),
			COALESCE(c.image_url,''), COALESCE(c.daily_rate,0)
		FROM rentals r
		LEFT JOIN cars c ON c.id = r.car_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.CarID, &h.StartDate, &h.EndDate,
			&h.TotalCost, &h.Status, &h.CreatedAt,
			&h.Car.Make, &h.Car.Model, &h.Car.ImageURL, &h.Car.DailyRate,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repo) ListAll(ctx context.Context) ([]AdminRow, error) {
	const q = `
		SELECT
			r.id, r.user_id, r.car_id, r.start_date, r.end_date,
			r.total_cost, r.status, r.created_at,
			COALESCE(c.make,''), COALESCE(c.model,''),
			u.name, u.email
		FROM rentals r
		LEFT JOIN cars c ON c.id = r.car_id
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminRow
	for rows.Next() {
		var a AdminRow
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.CarID, &a.StartDate, &a.EndDate,
			&a.TotalCost, &a.Status, &a.CreatedAt,
			&a.Car.Make, &a.Car.Model,
			&a.User.Name, &a.User.Email,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
