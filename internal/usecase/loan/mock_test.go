package loan

import (
	"context"
	"errors"
	"sync"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	domain "github.com/LoganBuchanan/NBAD-Library-Project/internal/domain/loan"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

var errNotFound = errors.New("record not found")

// mockLoanRepository keeps books and loans in maps and mirrors the
// transactional rules of the real repository: CreateLoan re-validates
// availability, the duplicate rule and the per-user limit under a single
// lock, so concurrent borrows serialize the same way rows do under a
// row-level lock.
type mockLoanRepository struct {
	mu     sync.Mutex
	books  map[uint]*models.Book
	loans  map[uint]*models.Loan
	nextID uint

	failWith error
}

func newMockLoanRepository() *mockLoanRepository {
	return &mockLoanRepository{
		books: map[uint]*models.Book{},
		loans: map[uint]*models.Loan{},
	}
}

func (m *mockLoanRepository) addBook(b models.Book) {
	m.books[b.ID] = &b
}

func (m *mockLoanRepository) addLoan(l models.Loan) {
	if l.ID == 0 {
		m.nextID++
		l.ID = m.nextID
	} else if l.ID > m.nextID {
		m.nextID = l.ID
	}
	m.loans[l.ID] = &l
}

func (m *mockLoanRepository) availableCopies(bookID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[bookID].AvailableCopies
}

func (m *mockLoanRepository) activeLoans(userID uint) int {
	n := 0
	for _, l := range m.loans {
		if l.UserID == userID && l.ReturnedAt == nil {
			n++
		}
	}
	return n
}

func (m *mockLoanRepository) GetBook(_ context.Context, id uint) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.books[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockLoanRepository) CreateLoan(_ context.Context, l *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}

	b, ok := m.books[l.BookID]
	if !ok || b.AvailableCopies <= 0 {
		return httperr.ErrBusiness("book_not_available")
	}
	for _, existing := range m.loans {
		if existing.UserID == l.UserID && existing.BookID == l.BookID && existing.ReturnedAt == nil {
			return httperr.ErrBusiness("already_borrowed")
		}
	}
	if m.activeLoans(l.UserID) >= domain.MaxActiveLoans {
		return httperr.ErrBusiness("loan_limit_reached")
	}

	m.nextID++
	l.ID = m.nextID
	cp := *l
	m.loans[l.ID] = &cp
	b.AvailableCopies--
	return nil
}

func (m *mockLoanRepository) GetLoan(_ context.Context, id uint) (*models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	l, ok := m.loans[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockLoanRepository) ReturnLoan(_ context.Context, l *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	cp := *l
	m.loans[l.ID] = &cp
	if b, ok := m.books[l.BookID]; ok {
		b.AvailableCopies++
	}
	return nil
}

func (m *mockLoanRepository) UpdateLoan(_ context.Context, l *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	cp := *l
	m.loans[l.ID] = &cp
	return nil
}

func (m *mockLoanRepository) DeleteLoan(_ context.Context, l *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if l.ReturnedAt == nil {
		if b, ok := m.books[l.BookID]; ok {
			b.AvailableCopies++
		}
	}
	delete(m.loans, l.ID)
	return nil
}

func (m *mockLoanRepository) HasActiveLoan(_ context.Context, userID, bookID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	for _, l := range m.loans {
		if l.UserID == userID && l.BookID == bookID && l.ReturnedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLoanRepository) CountActiveLoans(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	return int64(m.activeLoans(userID)), nil
}

var _ domain.Repository = (*mockLoanRepository)(nil)

// sinkRecorder captures dispatched audit events for assertions.
type sinkRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *sinkRecorder) Dispatch(ev audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *sinkRecorder) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Action)
	}
	return out
}

func customer(id uint) domain.Principal {
	return domain.Principal{UserID: id, Role: models.RoleCustomer}
}

func librarian(id uint) domain.Principal {
	return domain.Principal{UserID: id, Role: models.RoleLibrarian}
}
