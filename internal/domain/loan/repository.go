package loan

import (
	"context"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

type Repository interface {
	// -------- Book --------
	GetBook(
		ctx context.Context,
		id uint,
	) (*models.Book, error)

	// -------- Loan (create) --------

	// CreateLoan inserts the loan and decrements the book's available copies
	// as one atomic unit. Availability, the duplicate-active-loan rule and
	// the per-user limit are re-validated inside the transaction so two
	// concurrent borrows of a last copy cannot both succeed.
	CreateLoan(
		ctx context.Context,
		l *models.Loan,
	) error

	// -------- Loan (state change) --------
	GetLoan(
		ctx context.Context,
		id uint,
	) (*models.Loan, error)

	// ReturnLoan persists a returned loan and increments the book's
	// available copies atomically.
	ReturnLoan(
		ctx context.Context,
		l *models.Loan,
	) error

	UpdateLoan(
		ctx context.Context,
		l *models.Loan,
	) error

	// DeleteLoan removes the row; when the loan is still active it first
	// restores the book's available copies, in the same transaction.
	DeleteLoan(
		ctx context.Context,
		l *models.Loan,
	) error

	// -------- Loan (rule checks) --------
	HasActiveLoan(
		ctx context.Context,
		userID uint,
		bookID uint,
	) (bool, error)

	CountActiveLoans(
		ctx context.Context,
		userID uint,
	) (int64, error)
}
