package loan

import (
	"context"
	"time"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	domain "github.com/LoganBuchanan/NBAD-Library-Project/internal/domain/loan"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateLoanInput struct {
	Requester domain.Principal

	// UserID is the borrower. Optional for customers (always themselves),
	// required for librarians.
	UserID  uint
	BookID  uint
	DueDays int
}

// ======================================================
// USE CASE
// ======================================================

type CreateLoan struct {
	repo  domain.Repository
	audit audit.Sink
}

func NewCreateLoan(
	repo domain.Repository,
	audit audit.Sink,
) *CreateLoan {
	return &CreateLoan{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateLoan) Execute(
	ctx context.Context,
	in CreateLoanInput,
) (*models.Loan, error) {

	borrowerID, err := domain.ResolveBorrower(in.Requester, in.UserID)
	if err != nil {
		return nil, err
	}

	book, err := uc.repo.GetBook(ctx, in.BookID)
	if err != nil {
		return nil, httperr.ErrBusiness("book_not_found")
	}

	if book.AvailableCopies <= 0 {
		return nil, httperr.ErrBusiness("book_not_available")
	}

	borrowed, err := uc.repo.HasActiveLoan(ctx, borrowerID, in.BookID)
	if err != nil {
		return nil, err
	}
	if borrowed {
		return nil, httperr.ErrBusiness("already_borrowed")
	}

	active, err := uc.repo.CountActiveLoans(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if active >= domain.MaxActiveLoans {
		return nil, httperr.ErrBusiness("loan_limit_reached")
	}

	l := domain.New(borrowerID, in.BookID, in.DueDays, time.Now())

	// The repository re-validates all three rules under a row lock; the
	// checks above only exist to fail fast with a friendly error before
	// opening a transaction.
	if err := uc.repo.CreateLoan(ctx, l); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.Requester.UserID,
		Action:   "loan_created",
		Entity:   "loan",
		EntityID: &l.ID,
		Metadata: map[string]any{"book_id": in.BookID, "borrower_id": borrowerID},
	})

	return l, nil
}
