package loan

import (
	"context"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	domain "github.com/LoganBuchanan/NBAD-Library-Project/internal/domain/loan"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

type ExtendLoan struct {
	repo  domain.Repository
	audit audit.Sink
}

func NewExtendLoan(
	repo domain.Repository,
	audit audit.Sink,
) *ExtendLoan {
	return &ExtendLoan{
		repo:  repo,
		audit: audit,
	}
}

func (uc *ExtendLoan) Execute(
	ctx context.Context,
	requesterID uint,
	loanID uint,
	extensionDays int,
) (*models.Loan, error) {

	l, err := uc.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, httperr.ErrBusiness("loan_not_found")
	}

	if err := domain.Extend(l, extensionDays); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateLoan(ctx, l); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "loan_extended",
		Entity:   "loan",
		EntityID: &l.ID,
		Metadata: map[string]any{"extension_days": extensionDays},
	})

	return l, nil
}
