package loan

import (
	"time"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

// ===============================
// Loan Status
// ===============================

type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
)

const (
	MaxActiveLoans       = 5
	DefaultDueDays       = 14
	DefaultExtensionDays = 7
)

func StatusOf(l *models.Loan) Status {
	if l.ReturnedAt == nil {
		return StatusActive
	}
	return StatusReturned
}

// IsOverdue reports whether an active loan is past its due date.
// A returned loan is never overdue.
func IsOverdue(l *models.Loan, now time.Time) bool {
	return l.ReturnedAt == nil && l.DueAt.Before(now)
}

// ===============================
// Validations
// ===============================

// CanReturn rejects loans that already left the active state. Returned is terminal.
func CanReturn(current Status) error {
	if current != StatusActive {
		return httperr.ErrBusiness("already_returned")
	}
	return nil
}

func CanExtend(current Status) error {
	if current != StatusActive {
		return httperr.ErrBusiness("already_returned")
	}
	return nil
}
