package rental

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"carrental/model"
	carrepo "carrental/repository/car"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	mu      sync.Mutex
	rentals map[int64]*model.Rental
	nextID  int64

	insertErr error
}

func newRepoMock() *repoMock {
	return &repoMock{rentals: map[int64]*model.Rental{}, nextID: 1}
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Insert(ctx context.Context, tx *sql.Tx, r *model.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	m.nextID++
	cp := *r
	m.rentals[r.ID] = &cp
	return nil
}

func (m *repoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (m *repoMock) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.RentalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rentals[id]; ok {
		r.Status = status
	}
	return nil
}

func (m *repoMock) ByID(ctx context.Context, id int64) (*DetailRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &DetailRow{Rental: *r}, nil
}

func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]HistoryRow, error) {
	return nil, nil
}

func (m *repoMock) ListAll(ctx context.Context) ([]AdminRow, error) {
	return nil, nil
}

func (m *repoMock) confirmedFor(carID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rentals {
		if r.CarID == carID && r.Status == model.RentalConfirmed {
			n++
		}
	}
	return n
}

// carStoreMock enforces the same conditional-flip semantics as the real
// repository: a flip to the current state fails with ErrStale.
type carStoreMock struct {
	mu  sync.Mutex
	car *model.Car

	// reportAvailable, when set, overrides the flag the read path reports,
	// simulating a stale read ahead of the conditional flip.
	reportAvailable *bool
}

var _ CarStore = (*carStoreMock)(nil)

func (m *carStoreMock) ByID(ctx context.Context, id int64) (*model.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.car == nil || m.car.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *m.car
	if m.reportAvailable != nil {
		cp.Available = *m.reportAvailable
	}
	return &cp, nil
}

func (m *carStoreMock) SetAvailable(ctx context.Context, tx *sql.Tx, id int64, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.car == nil || m.car.ID != id || m.car.Available == available {
		return carrepo.ErrStale
	}
	m.car.Available = available
	return nil
}

func (m *carStoreMock) available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.car.Available
}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func testCar() *model.Car {
	return &model.Car{ID: 3, Make: "Toyota", Model: "Corolla", DailyRate: 50, Available: true}
}

// --- create ---

func TestCreate_CostAndInvariant(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	cars := &carStoreMock{car: testCar()}
	repo := newRepoMock()
	svc := New(db, repo, cars)

	r, err := svc.Create(context.Background(), 9, 3, date("2024-01-01"), date("2024-01-04"))
	require.NoError(t, err)
	require.Equal(t, float64(150), r.TotalCost)
	require.Equal(t, model.RentalConfirmed, r.Status)
	require.Equal(t, int64(9), r.UserID)
	require.NotZero(t, r.ID)

	require.False(t, cars.available())
	require.Equal(t, 1, repo.confirmedFor(3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PartialDayRoundsUp(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	cars := &carStoreMock{car: testCar()}
	svc := New(db, newRepoMock(), cars)

	start := date("2024-01-01")
	end := start.Add(36 * time.Hour)
	r, err := svc.Create(context.Background(), 9, 3, start, end)
	require.NoError(t, err)
	require.Equal(t, float64(100), r.TotalCost)
}

func TestCreate_CarNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	svc := New(db, newRepoMock(), &carStoreMock{})

	_, err := svc.Create(context.Background(), 9, 404, date("2024-01-01"), date("2024-01-02"))
	require.Error(t, err)
	require.Equal(t, ErrCarNotFound, Code(err))
}

func TestCreate_Unavailable(t *testing.T) {
	db, _ := newTestDB(t)
	car := testCar()
	car.Available = false
	cars := &carStoreMock{car: car}
	repo := newRepoMock()
	svc := New(db, repo, cars)

	_, err := svc.Create(context.Background(), 9, 3, date("2024-01-01"), date("2024-01-02"))
	require.Error(t, err)
	require.Equal(t, ErrNotAvailable, Code(err))
	require.Equal(t, 0, repo.confirmedFor(3))
}

func TestCreate_BadDates(t *testing.T) {
	db, _ := newTestDB(t)
	cars := &carStoreMock{car: testCar()}
	svc := New(db, newRepoMock(), cars)

	for _, end := range []string{"2024-01-01", "2023-12-31"} {
		_, err := svc.Create(context.Background(), 9, 3, date("2024-01-01"), date(end))
		require.Error(t, err, end)
		require.Equal(t, ErrBadDates, Code(err), end)
	}
	require.True(t, cars.available())
}

func TestCreate_LostRaceRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	// Another booking wins between the availability read and the flip.
	car := testCar()
	car.Available = false
	stale := true
	cars := &carStoreMock{car: car, reportAvailable: &stale}
	repo := newRepoMock()
	svc := New(db, repo, cars)

	_, err := svc.Create(context.Background(), 9, 3, date("2024-01-01"), date("2024-01-02"))
	require.Error(t, err)
	require.Equal(t, ErrNotAvailable, Code(err))
	require.Equal(t, 0, repo.confirmedFor(3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Concurrent(t *testing.T) {
	db, mock := newTestDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()

	// Both requests observe an available car before either one writes.
	stale := true
	cars := &carStoreMock{car: testCar(), reportAvailable: &stale}
	repo := newRepoMock()
	svc := New(db, repo, cars)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), uid, 3, date("2024-01-01"), date("2024-01-04"))
			errs <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	var ok, conflict int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.Equal(t, ErrNotAvailable, Code(err))
		conflict++
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflict)
	require.False(t, cars.available())
	require.Equal(t, 1, repo.confirmedFor(3))
	require.NoError(t, mock.ExpectationsWereMet())
}

// --- cancel ---

func seedRental(repo *repoMock, userID, carID int64, status model.RentalStatus) int64 {
	r := &model.Rental{UserID: userID, CarID: carID, Status: status}
	_ = repo.Insert(context.Background(), nil, r)
	repo.rentals[r.ID].Status = status
	return r.ID
}

func TestCancel_Success(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	car := testCar()
	car.Available = false
	cars := &carStoreMock{car: car}
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalConfirmed)
	svc := New(db, repo, cars)

	r, err := svc.Cancel(context.Background(), 9, id)
	require.NoError(t, err)
	require.Equal(t, model.RentalCancelled, r.Status)
	require.True(t, cars.available())
	require.Equal(t, 0, repo.confirmedFor(3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_NotOwner(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	car := testCar()
	car.Available = false
	cars := &carStoreMock{car: car}
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalConfirmed)
	svc := New(db, repo, cars)

	_, err := svc.Cancel(context.Background(), 10, id)
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))

	// Rental and car untouched.
	require.Equal(t, model.RentalConfirmed, repo.rentals[id].Status)
	require.False(t, cars.available())
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	cars := &carStoreMock{car: testCar()}
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalCancelled)
	svc := New(db, repo, cars)

	_, err := svc.Cancel(context.Background(), 9, id)
	require.Error(t, err)
	require.Equal(t, ErrNotCancellable, Code(err))
}

// Deleting a car leaves its outstanding rentals behind; releasing them must
// still work even though the availability flip has no row to hit.
func TestCancel_CarDeleted(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	cars := &carStoreMock{}
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalConfirmed)
	svc := New(db, repo, cars)

	r, err := svc.Cancel(context.Background(), 9, id)
	require.NoError(t, err)
	require.Equal(t, model.RentalCancelled, r.Status)
	require.Equal(t, 0, repo.confirmedFor(3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, newRepoMock(), &carStoreMock{car: testCar()})

	_, err := svc.Cancel(context.Background(), 9, 404)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

// --- admin status transitions ---

func TestSetStatus_CompleteFreesCar(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	car := testCar()
	car.Available = false
	cars := &carStoreMock{car: car}
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalConfirmed)
	svc := New(db, repo, cars)

	r, err := svc.SetStatus(context.Background(), id, model.RentalCompleted)
	require.NoError(t, err)
	require.Equal(t, model.RentalCompleted, r.Status)
	require.True(t, cars.available())
	require.Equal(t, 0, repo.confirmedFor(3))
}

func TestSetStatus_AdminCancelFreesCar(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	car := testCar()
	car.Available = false
	cars := &carStoreMock{car: car}
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalConfirmed)
	svc := New(db, repo, cars)

	r, err := svc.SetStatus(context.Background(), id, model.RentalCancelled)
	require.NoError(t, err)
	require.Equal(t, model.RentalCancelled, r.Status)
	require.True(t, cars.available())
}

func TestSetStatus_CompleteAfterCarDeleted(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	cars := &carStoreMock{}
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalConfirmed)
	svc := New(db, repo, cars)

	r, err := svc.SetStatus(context.Background(), id, model.RentalCompleted)
	require.NoError(t, err)
	require.Equal(t, model.RentalCompleted, r.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_TerminalStatesFrozen(t *testing.T) {
	for _, status := range []model.RentalStatus{model.RentalCancelled, model.RentalCompleted} {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		cars := &carStoreMock{car: testCar()}
		repo := newRepoMock()
		id := seedRental(repo, 9, 3, status)
		svc := New(db, repo, cars)

		_, err := svc.SetStatus(context.Background(), id, model.RentalConfirmed)
		require.Error(t, err, status)
		require.Equal(t, ErrTerminal, Code(err), status)
		require.Equal(t, status, repo.rentals[id].Status)
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	db, _ := newTestDB(t)
	svc := New(db, newRepoMock(), &carStoreMock{car: testCar()})

	_, err := svc.SetStatus(context.Background(), 1, model.RentalStatus("returned"))
	require.Error(t, err)
	require.Equal(t, ErrBadStatus, Code(err))
}

// --- reads ---

func TestDetail_Ownership(t *testing.T) {
	db, _ := newTestDB(t)
	repo := newRepoMock()
	id := seedRental(repo, 9, 3, model.RentalConfirmed)
	svc := New(db, repo, &carStoreMock{car: testCar()})

	_, err := svc.Detail(context.Background(), 9, false, id)
	require.NoError(t, err)

	_, err = svc.Detail(context.Background(), 10, false, id)
	require.Error(t, err)
	require.Equal(t, ErrNotOwner, Code(err))

	// Admins bypass ownership.
	_, err = svc.Detail(context.Background(), 10, true, id)
	require.NoError(t, err)

	_, err = svc.Detail(context.Background(), 9, false, 404)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}
