package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/LoganBuchanan/NBAD-Library-Project/internal/domain/loan"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

type LoanGormRepository struct {
	db *gorm.DB
}

func NewLoanGormRepository(db *gorm.DB) *LoanGormRepository {
	return &LoanGormRepository{db: db}
}

// --------------------------------------------------
// Book
// --------------------------------------------------

func (r *LoanGormRepository) GetBook(
	ctx context.Context,
	id uint,
) (*models.Book, error) {

	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// --------------------------------------------------
// Loan (create)
// --------------------------------------------------

// CreateLoan re-validates every borrow rule with the book row locked, so a
// stale availability read taken before the transaction cannot slip through.
func (r *LoanGormRepository) CreateLoan(
	ctx context.Context,
	l *models.Loan,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var book models.Book
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&book, l.BookID).Error; err != nil {

			if err == gorm.ErrRecordNotFound {
				return httperr.ErrBusiness("book_not_found")
			}
			return err
		}

		if book.AvailableCopies <= 0 {
			return httperr.ErrBusiness("book_not_available")
		}

		var dup int64
		if err := tx.
			Model(&models.Loan{}).
			Where("user_id = ? AND book_id = ? AND returned_at IS NULL", l.UserID, l.BookID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return httperr.ErrBusiness("already_borrowed")
		}

		var active int64
		if err := tx.
			Model(&models.Loan{}).
			Where("user_id = ? AND returned_at IS NULL", l.UserID).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= domain.MaxActiveLoans {
			return httperr.ErrBusiness("loan_limit_reached")
		}

		if err := tx.Create(l).Error; err != nil {
			return err
		}

		return tx.
			Model(&models.Book{}).
			Where("id = ?", l.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1")).
			Error
	})
}

// --------------------------------------------------
// Loan (state change)
// --------------------------------------------------

func (r *LoanGormRepository) GetLoan(
	ctx context.Context,
	id uint,
) (*models.Loan, error) {

	var l models.Loan
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanGormRepository) ReturnLoan(
	ctx context.Context,
	l *models.Loan,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(l).Error; err != nil {
			return err
		}

		return tx.
			Model(&models.Book{}).
			Where("id = ?", l.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).
			Error
	})
}

func (r *LoanGormRepository) UpdateLoan(
	ctx context.Context,
	l *models.Loan,
) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanGormRepository) DeleteLoan(
	ctx context.Context,
	l *models.Loan,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if l.ReturnedAt == nil {
			if err := tx.
				Model(&models.Book{}).
				Where("id = ?", l.BookID).
				UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).
				Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Loan{}, l.ID).Error
	})
}

// --------------------------------------------------
// Loan (rule checks)
// --------------------------------------------------

func (r *LoanGormRepository) HasActiveLoan(
	ctx context.Context,
	userID uint,
	bookID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ? AND book_id = ? AND returned_at IS NULL", userID, bookID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *LoanGormRepository) CountActiveLoans(
	ctx context.Context,
	userID uint,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ? AND returned_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Compile-time check
var _ domain.Repository = (*LoanGormRepository)(nil)
