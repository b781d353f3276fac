package car

import (
	"context"
	"database/sql"
	"errors"

	"carrental/model"
	carrepo "carrental/repository/car"
)

type ErrCode string

const (
	ErrNotFound ErrCode = "CAR_NOT_FOUND"
	ErrBadInput ErrCode = "BAD_INPUT"
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

// Patch = repository shape
type Patch = carrepo.Patch

type Repo interface {
	List(ctx context.Context) ([]model.Car, error)
	ListAvailable(ctx context.Context) ([]model.Car, error)
	ByID(ctx context.Context, id int64) (*model.Car, error)
	Create(ctx context.Context, c *model.Car) error
	Update(ctx context.Context, id int64, p Patch) (*model.Car, error)
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	List(ctx context.Context) ([]model.Car, error)
	ListAvailable(ctx context.Context) ([]model.Car, error)
	Detail(ctx context.Context, id int64) (*model.Car, error)
	Create(ctx context.Context, c *model.Car) error
	Update(ctx context.Context, id int64, p Patch) (*model.Car, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context) ([]model.Car, error) {
	return s.r.List(ctx)
}

func (s *service) ListAvailable(ctx context.Context) ([]model.Car, error) {
	return s.r.ListAvailable(ctx)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Car, error) {
	c, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, c *model.Car) error {
	if c.Make == "" || c.Model == "" || c.LicensePlate == "" || c.Year <= 0 || c.DailyRate <= 0 {
		return makeErr(ErrBadInput)
	}
	return s.r.Create(ctx, c)
}

func (s *service) Update(ctx context.Context, id int64, p Patch) (*model.Car, error) {
	if p.DailyRate != nil && *p.DailyRate <= 0 {
		return nil, makeErr(ErrBadInput)
	}
	if p.Year != nil && *p.Year <= 0 {
		return nil, makeErr(ErrBadInput)
	}
	c, err := s.r.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}
