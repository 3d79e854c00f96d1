package loan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

func TestDeleteLoan(t *testing.T) {
	now := time.Now()

	t.Run("deleting an active loan restores the copy", func(t *testing.T) {
		repo := newMockLoanRepository()
		repo.addBook(models.Book{ID: 1, AvailableCopies: 0})
		repo.addLoan(models.Loan{ID: 5, UserID: 10, BookID: 1, BorrowedAt: now, DueAt: now.AddDate(0, 0, 14)})
		sink := &sinkRecorder{}
		uc := NewDeleteLoan(repo, sink)

		require.NoError(t, uc.Execute(context.Background(), 1, 5))
		require.Equal(t, 1, repo.availableCopies(1))
		require.Empty(t, repo.loans)

		require.Len(t, sink.events, 1)
		require.Equal(t, "loan_deleted", sink.events[0].Action)
		require.Equal(t, map[string]any{"was_active": true}, sink.events[0].Metadata)
	})

	t.Run("deleting a returned loan leaves availability alone", func(t *testing.T) {
		returned := now.Add(-time.Hour)
		repo := newMockLoanRepository()
		repo.addBook(models.Book{ID: 1, AvailableCopies: 2})
		repo.addLoan(models.Loan{ID: 5, UserID: 10, BookID: 1, BorrowedAt: now, DueAt: now, ReturnedAt: &returned})
		sink := &sinkRecorder{}
		uc := NewDeleteLoan(repo, sink)

		require.NoError(t, uc.Execute(context.Background(), 1, 5))
		require.Equal(t, 2, repo.availableCopies(1))
		require.Equal(t, map[string]any{"was_active": false}, sink.events[0].Metadata)
	})

	t.Run("unknown loan", func(t *testing.T) {
		uc := NewDeleteLoan(newMockLoanRepository(), &sinkRecorder{})
		err := uc.Execute(context.Background(), 1, 99)
		require.Equal(t, "loan_not_found", httperr.BusinessCode(err))
	})
}
