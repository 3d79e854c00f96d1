package loan

import (
	"context"
	"time"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	domain "github.com/LoganBuchanan/NBAD-Library-Project/internal/domain/loan"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

type ReturnLoan struct {
	repo  domain.Repository
	audit audit.Sink
}

func NewReturnLoan(
	repo domain.Repository,
	audit audit.Sink,
) *ReturnLoan {
	return &ReturnLoan{
		repo:  repo,
		audit: audit,
	}
}

func (uc *ReturnLoan) Execute(
	ctx context.Context,
	requester domain.Principal,
	loanID uint,
) (*models.Loan, error) {

	l, err := uc.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, httperr.ErrBusiness("loan_not_found")
	}

	if err := domain.CanAccess(requester, l.UserID); err != nil {
		return nil, err
	}

	if err := domain.Return(l, time.Now()); err != nil {
		return nil, err
	}

	if err := uc.repo.ReturnLoan(ctx, l); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &requester.UserID,
		Action:   "loan_returned",
		Entity:   "loan",
		EntityID: &l.ID,
	})

	return l, nil
}
