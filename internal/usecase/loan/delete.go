package loan

import (
	"context"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	domain "github.com/LoganBuchanan/NBAD-Library-Project/internal/domain/loan"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
)

type DeleteLoan struct {
	repo  domain.Repository
	audit audit.Sink
}

func NewDeleteLoan(
	repo domain.Repository,
	audit audit.Sink,
) *DeleteLoan {
	return &DeleteLoan{
		repo:  repo,
		audit: audit,
	}
}

func (uc *DeleteLoan) Execute(
	ctx context.Context,
	requesterID uint,
	loanID uint,
) error {

	l, err := uc.repo.GetLoan(ctx, loanID)
	if err != nil {
		return httperr.ErrBusiness("loan_not_found")
	}

	wasActive := l.ReturnedAt == nil

	// An active loan still holds a copy; the repository restores it before
	// the row goes.
	if err := uc.repo.DeleteLoan(ctx, l); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "loan_deleted",
		Entity:   "loan",
		EntityID: &loanID,
		Metadata: map[string]any{"was_active": wasActive},
	})

	return nil
}
