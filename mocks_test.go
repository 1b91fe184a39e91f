package accounts_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
	accounts "github.com/takes-jp/go-accounts"
)

// MockAccountStore implements accounts.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	account, _ := args.Get(0).(*accounts.Account)
	return account, args.Error(1)
}

func (m *MockAccountStore) FindByID(ctx context.Context, id int64) (*accounts.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*accounts.Account)
	return account, args.Error(1)
}

func (m *MockAccountStore) FindAll(ctx context.Context) ([]*accounts.Account, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*accounts.Account)
	return records, args.Error(1)
}

func (m *MockAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) ExistsByEmailExcludingID(ctx context.Context, email string, id int64) (bool, error) {
	args := m.Called(ctx, email, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) Create(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, account)
	created, _ := args.Get(0).(*accounts.Account)
	return created, args.Error(1)
}

func (m *MockAccountStore) Update(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// captureLogger records log lines so tests can assert swallowed failures
// were at least reported
type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprint(append([]any{format}, args...)...))
}

func (l *captureLogger) Debug(format string, args ...any) { l.record("DBG", format, args...) }
func (l *captureLogger) Info(format string, args ...any)  { l.record("INF", format, args...) }
func (l *captureLogger) Warn(format string, args ...any)  { l.record("WRN", format, args...) }
func (l *captureLogger) Error(format string, args ...any) { l.record("ERR", format, args...) }

func (l *captureLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// memoryStore is a map backed AccountStore for tests that exercise full
// flows without mock choreography
type memoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*accounts.Account

	failUpdate error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID:  1,
		records: map[int64]*accounts.Account{},
	}
}

func (s *memoryStore) seed(account *accounts.Account) *accounts.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == 0 {
		account.ID = s.nextID
	}
	if account.ID >= s.nextID {
		s.nextID = account.ID + 1
	}
	clone := *account
	s.records[account.ID] = &clone
	return account
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Email == email {
			clone := *record
			return &clone, nil
		}
	}
	return nil, accounts.NewAccountNotFound(email)
}

func (s *memoryStore) FindByID(ctx context.Context, id int64) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, accounts.NewAccountNotFound(id)
	}
	clone := *record
	return &clone, nil
}

func (s *memoryStore) FindAll(ctx context.Context) ([]*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*accounts.Account, 0, len(s.records))
	for _, record := range s.records {
		clone := *record
		out = append(out, &clone)
	}
	return out, nil
}

func (s *memoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) ExistsByEmailExcludingID(ctx context.Context, email string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Email == email && record.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) Create(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.Email == account.Email {
			return nil, accounts.NewEmailConflict(account.Email)
		}
	}
	account.EnsureRole()
	account.ID = s.nextID
	s.nextID++
	clone := *account
	s.records[account.ID] = &clone
	return account, nil
}

func (s *memoryStore) Update(ctx context.Context, account *accounts.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	if _, ok := s.records[account.ID]; !ok {
		return accounts.NewAccountNotFound(account.ID)
	}
	for _, record := range s.records {
		if record.Email == account.Email && record.ID != account.ID {
			return accounts.NewEmailConflict(account.Email)
		}
	}
	clone := *account
	s.records[account.ID] = &clone
	return nil
}

func (s *memoryStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *memoryStore) stored(id int64) *accounts.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := s.records[id]
	if record == nil {
		return nil
	}
	clone := *record
	return &clone
}

func mockStoreAnyAccount() any {
	return mock.AnythingOfType("*accounts.Account")
}

var _ accounts.AccountStore = (*MockAccountStore)(nil)
var _ accounts.AccountStore = (*memoryStore)(nil)
