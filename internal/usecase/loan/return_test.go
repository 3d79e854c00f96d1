package loan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

func TestReturnLoan(t *testing.T) {
	now := time.Now()

	t.Run("owner returns their loan", func(t *testing.T) {
		repo := newMockLoanRepository()
		repo.addBook(models.Book{ID: 1, AvailableCopies: 0})
		repo.addLoan(models.Loan{ID: 5, UserID: 10, BookID: 1, BorrowedAt: now, DueAt: now.AddDate(0, 0, 14)})
		sink := &sinkRecorder{}
		uc := NewReturnLoan(repo, sink)

		l, err := uc.Execute(context.Background(), customer(10), 5)
		require.NoError(t, err)
		require.NotNil(t, l.ReturnedAt)
		require.Equal(t, 1, repo.availableCopies(1))
		require.Equal(t, []string{"loan_returned"}, sink.actions())
	})

	t.Run("librarian returns anyone's loan", func(t *testing.T) {
		repo := newMockLoanRepository()
		repo.addBook(models.Book{ID: 1, AvailableCopies: 0})
		repo.addLoan(models.Loan{ID: 5, UserID: 10, BookID: 1, BorrowedAt: now, DueAt: now})
		uc := NewReturnLoan(repo, &sinkRecorder{})

		_, err := uc.Execute(context.Background(), librarian(1), 5)
		require.NoError(t, err)
	})

	t.Run("customer cannot return a foreign loan", func(t *testing.T) {
		repo := newMockLoanRepository()
		repo.addBook(models.Book{ID: 1, AvailableCopies: 0})
		repo.addLoan(models.Loan{ID: 5, UserID: 10, BookID: 1, BorrowedAt: now, DueAt: now})
		uc := NewReturnLoan(repo, &sinkRecorder{})

		_, err := uc.Execute(context.Background(), customer(11), 5)
		require.Equal(t, "loan_access_denied", httperr.BusinessCode(err))
		require.Nil(t, repo.loans[5].ReturnedAt)
	})

	t.Run("second return fails and does not double-restock", func(t *testing.T) {
		repo := newMockLoanRepository()
		repo.addBook(models.Book{ID: 1, AvailableCopies: 0})
		repo.addLoan(models.Loan{ID: 5, UserID: 10, BookID: 1, BorrowedAt: now, DueAt: now})
		uc := NewReturnLoan(repo, &sinkRecorder{})

		_, err := uc.Execute(context.Background(), customer(10), 5)
		require.NoError(t, err)

		_, err = uc.Execute(context.Background(), customer(10), 5)
		require.Equal(t, "already_returned", httperr.BusinessCode(err))
		require.Equal(t, 1, repo.availableCopies(1))
	})

	t.Run("unknown loan", func(t *testing.T) {
		uc := NewReturnLoan(newMockLoanRepository(), &sinkRecorder{})
		_, err := uc.Execute(context.Background(), customer(10), 99)
		require.Equal(t, "loan_not_found", httperr.BusinessCode(err))
	})
}

// Borrow, return, borrow again: the copy freed by the return must be
// borrowable, and the duplicate rule must not see the returned loan.
func TestBorrowReturnBorrowRoundTrip(t *testing.T) {
	repo := newMockLoanRepository()
	repo.addBook(models.Book{ID: 1, AvailableCopies: 1})
	sink := &sinkRecorder{}
	create := NewCreateLoan(repo, sink)
	ret := NewReturnLoan(repo, sink)

	l, err := create.Execute(context.Background(), CreateLoanInput{Requester: customer(10), BookID: 1})
	require.NoError(t, err)
	require.Equal(t, 0, repo.availableCopies(1))

	_, err = ret.Execute(context.Background(), customer(10), l.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.availableCopies(1))

	_, err = create.Execute(context.Background(), CreateLoanInput{Requester: customer(10), BookID: 1})
	require.NoError(t, err)
	require.Equal(t, 0, repo.availableCopies(1))
	require.Equal(t, []string{"loan_created", "loan_returned", "loan_created"}, sink.actions())
}
