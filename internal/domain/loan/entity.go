package loan

import (
	"time"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// New builds an active loan: borrowed now, due dueDays from now.
func New(userID, bookID uint, dueDays int, now time.Time) *models.Loan {
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}
	return &models.Loan{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, dueDays),
	}
}

func Return(l *models.Loan, now time.Time) error {
	if err := CanReturn(StatusOf(l)); err != nil {
		return err
	}

	l.ReturnedAt = &now
	return nil
}

// Extend pushes the due date forward from the current due date, not from now,
// so repeated extensions accumulate.
func Extend(l *models.Loan, days int) error {
	if err := CanExtend(StatusOf(l)); err != nil {
		return err
	}

	if days <= 0 {
		days = DefaultExtensionDays
	}
	l.DueAt = l.DueAt.AddDate(0, 0, days)
	return nil
}
