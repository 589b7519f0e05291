package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type noopTxProvider struct{}

func (noopTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider unavailable")
}

// rowLocks records row locks across stubs in acquisition order.
type rowLocks []string

func (l *rowLocks) add(entry string) {
	if l != nil {
		*l = append(*l, entry)
	}
}

type registrationRepoStub struct {
	registrations map[string]*models.Registration
	err           error
	locks         int
	journal       *rowLocks
}

func (s *registrationRepoStub) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Registration, error) {
	if s.err != nil {
		return nil, s.err
	}
	if reg, ok := s.registrations[id]; ok {
		clone := *reg
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *registrationRepoStub) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Registration, error) {
	s.locks++
	s.journal.add("registration:" + id)
	return s.FindByID(ctx, exec, id)
}

type offeringRepoStub struct {
	offerings map[string]*models.Offering
	lockOrder []string
	journal   *rowLocks
	createErr error
	updateErr error
	created   []*models.Offering
}

func (s *offeringRepoStub) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error) {
	if o, ok := s.offerings[id]; ok {
		clone := *o
		clone.Requirements = append([]string(nil), o.Requirements...)
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *offeringRepoStub) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error) {
	s.lockOrder = append(s.lockOrder, id)
	s.journal.add("offering:" + id)
	return s.FindByID(ctx, exec, id)
}

func (s *offeringRepoStub) ListByEvent(ctx context.Context, eventID string) ([]models.Offering, error) {
	var out []models.Offering
	for _, o := range s.offerings {
		if o.EventID == eventID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *offeringRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering) error {
	if s.createErr != nil {
		return s.createErr
	}
	if offering.ID == "" {
		offering.ID = "off-new"
	}
	s.created = append(s.created, offering)
	if s.offerings == nil {
		s.offerings = map[string]*models.Offering{}
	}
	clone := *offering
	s.offerings[offering.ID] = &clone
	return nil
}

func (s *offeringRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.offerings[offering.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *offering
	s.offerings[offering.ID] = &clone
	return nil
}

// assignmentRepoStub keeps assignments in memory. It is safe for concurrent use.
type assignmentRepoStub struct {
	mu          sync.Mutex
	items       []models.Assignment
	scouts      map[string]string
	prices      map[string]decimal.Decimal
	seq         int
	createErrAt map[string]error
	updateErr   error
	listErr     error
}

func (s *assignmentRepoStub) ListByOffering(ctx context.Context, exec sqlx.ExtContext, offeringID string) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Assignment
	for _, a := range s.items {
		if a.OfferingID == offeringID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *assignmentRepoStub) ListDetailsByOffering(ctx context.Context, offeringID string) ([]models.AssignmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AssignmentDetail
	for _, a := range s.items {
		if a.OfferingID == offeringID {
			out = append(out, models.AssignmentDetail{Assignment: a, ScoutID: s.scouts[a.RegistrationID]})
		}
	}
	return out, nil
}

func (s *assignmentRepoStub) ListByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Assignment
	for _, a := range s.items {
		if a.RegistrationID == registrationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *assignmentRepoStub) FindByRegistrationOffering(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.RegistrationID == registrationID && a.OfferingID == offeringID {
			clone := a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.createErrAt[assignment.OfferingID]; ok {
		return err
	}
	s.seq++
	if assignment.ID == "" {
		assignment.ID = fmt.Sprintf("asg-%d", s.seq)
	}
	s.items = append(s.items, *assignment)
	return nil
}

func (s *assignmentRepoStub) UpdatePeriods(ctx context.Context, exec sqlx.ExtContext, id string, periods models.Periods) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Periods = periods
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *assignmentRepoStub) UpdateCompletions(ctx context.Context, exec sqlx.ExtContext, id string, completions models.Completions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Completions = completions
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *assignmentRepoStub) DeleteByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []models.Assignment
	var removed []string
	for _, a := range s.items {
		if a.RegistrationID == registrationID {
			removed = append(removed, a.OfferingID)
			continue
		}
		kept = append(kept, a)
	}
	s.items = kept
	return removed, nil
}

func (s *assignmentRepoStub) Delete(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.items {
		if a.RegistrationID == registrationID && a.OfferingID == offeringID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *assignmentRepoStub) ListOfferingPrices(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []decimal.Decimal
	for _, a := range s.items {
		if a.RegistrationID == registrationID {
			out = append(out, s.prices[a.OfferingID])
		}
	}
	return out, nil
}

type preferenceRepoStub struct {
	items     []models.Preference
	prices    map[string]decimal.Decimal
	createErr error
}

func (s *preferenceRepoStub) ListByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.Preference, error) {
	var out []models.Preference
	for _, p := range s.items {
		if p.RegistrationID == registrationID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (s *preferenceRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, pref *models.Preference) error {
	if s.createErr != nil {
		return s.createErr
	}
	if pref.ID == "" {
		pref.ID = "pref-" + pref.OfferingID
	}
	s.items = append(s.items, *pref)
	return nil
}

func (s *preferenceRepoStub) DeleteByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) (int64, error) {
	var kept []models.Preference
	var n int64
	for _, p := range s.items {
		if p.RegistrationID == registrationID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	s.items = kept
	return n, nil
}

func (s *preferenceRepoStub) Delete(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) error {
	for i, p := range s.items {
		if p.RegistrationID == registrationID && p.OfferingID == offeringID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *preferenceRepoStub) ListOfferingPrices(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, p := range s.items {
		if p.RegistrationID == registrationID {
			out = append(out, s.prices[p.OfferingID])
		}
	}
	return out, nil
}

type eventRepoStub struct {
	events map[string]*models.Event
}

func (s eventRepoStub) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Event, error) {
	if e, ok := s.events[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

type purchaseRepoStub struct {
	lines map[string][]models.PurchaseLine
	err   error
}

func (s purchaseRepoStub) ListLinesByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.PurchaseLine, error) {
	return s.lines[registrationID], s.err
}

func requireCode(t *testing.T, err error, want *appErrors.Error) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, want.Code, appErr.Code, "unexpected error: %v", err)
	return appErr
}
