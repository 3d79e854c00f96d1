package handlers

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/LoganBuchanan/NBAD-Library-Project/internal/domain/loan"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/dto"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httpresp"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/middleware"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
	ucLoan "github.com/LoganBuchanan/NBAD-Library-Project/internal/usecase/loan"
)

// ======================================================
// HANDLER
// ======================================================

type LoanHandler struct {
	db *gorm.DB

	createUC *ucLoan.CreateLoan
	returnUC *ucLoan.ReturnLoan
	extendUC *ucLoan.ExtendLoan
	deleteUC *ucLoan.DeleteLoan
}

func NewLoanHandler(
	db *gorm.DB,
	createUC *ucLoan.CreateLoan,
	returnUC *ucLoan.ReturnLoan,
	extendUC *ucLoan.ExtendLoan,
	deleteUC *ucLoan.DeleteLoan,
) *LoanHandler {
	return &LoanHandler{
		db:       db,
		createUC: createUC,
		returnUC: returnUC,
		extendUC: extendUC,
		deleteUC: deleteUC,
	}
}

func principalFrom(c *gin.Context) domain.Principal {
	return domain.Principal{
		UserID: c.MustGet(middleware.ContextUserID).(uint),
		Role:   c.MustGet(middleware.ContextUserRole).(string),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateLoanRequest struct {
	BookID  uint `json:"book_id" binding:"required"`
	UserID  uint `json:"user_id"`
	DueDays int  `json:"due_days"`
}

type ExtendLoanRequest struct {
	ExtensionDays int `json:"extension_days"`
}

// ======================================================
// CREATE (borrow)
// ======================================================

func (h *LoanHandler) Create(c *gin.Context) {
	requester := principalFrom(c)

	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Book ID is required")
		return
	}

	l, err := h.createUC.Execute(c.Request.Context(), ucLoan.CreateLoanInput{
		Requester: requester,
		UserID:    req.UserID,
		BookID:    req.BookID,
		DueDays:   req.DueDays,
	})
	if err != nil {
		writeBusiness(c, err)
		return
	}

	loanDTO, err := h.decorate(l)
	if err != nil {
		httperr.Internal(c, "failed_to_load_loan", "Failed to load the created loan.")
		return
	}

	c.JSON(201, gin.H{
		"message": "Book borrowed successfully",
		"loan":    loanDTO,
	})
}

// ======================================================
// LIST
// ======================================================

func (h *LoanHandler) List(c *gin.Context) {
	requester := principalFrom(c)
	page, limit, offset := parsePagination(c)

	q := h.db.Model(&models.Loan{})

	// Customers only ever see their own loans.
	if !requester.IsLibrarian() {
		q = q.Where("user_id = ?", requester.UserID)
	} else if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := strconv.ParseUint(userIDStr, 10, 32); err == nil {
			q = q.Where("user_id = ?", uint(userID))
		}
	}

	switch c.Query("status") {
	case "active":
		q = q.Where("returned_at IS NULL")
	case "returned":
		q = q.Where("returned_at IS NOT NULL")
	}

	if c.Query("overdue") == "true" {
		q = q.Where("returned_at IS NULL AND due_at < ?", time.Now())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_count_loans", "Failed to list loans.")
		return
	}

	var loans []models.Loan
	if err := q.
		Preload("User").
		Preload("Book").
		Order("borrowed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&loans).Error; err != nil {

		httperr.Internal(c, "failed_to_list_loans", "Failed to list loans.")
		return
	}

	bookIDs := make([]uint, 0, len(loans))
	for _, l := range loans {
		bookIDs = append(bookIDs, l.BookID)
	}

	authors, err := authorsByBook(h.db, bookIDs)
	if err != nil {
		httperr.Internal(c, "failed_to_list_loans", "Failed to list loans.")
		return
	}

	now := time.Now()
	result := make([]dto.LoanDTO, 0, len(loans))
	for _, l := range loans {
		result = append(result, buildLoanDTO(l, authors[l.BookID], now))
	}

	httpresp.Paged(c, "loans", result, httpresp.NewPagination(total, page, limit))
}

// ======================================================
// GET BY ID
// ======================================================

func (h *LoanHandler) GetByID(c *gin.Context) {
	requester := principalFrom(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var l models.Loan
	if err := h.db.
		Preload("User").
		Preload("Book").
		First(&l, id).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "loan_not_found", "Loan not found")
			return
		}
		httperr.Internal(c, "failed_to_get_loan", "Failed to load loan.")
		return
	}

	// Forbidden, not hidden: existence is visible to the authorization check.
	if err := domain.CanAccess(requester, l.UserID); err != nil {
		writeBusiness(c, err)
		return
	}

	authors, err := authorsByBook(h.db, []uint{l.BookID})
	if err != nil {
		httperr.Internal(c, "failed_to_get_loan", "Failed to load loan.")
		return
	}

	c.JSON(200, buildLoanDTO(l, authors[l.BookID], time.Now()))
}

// ======================================================
// RETURN
// ======================================================

func (h *LoanHandler) Return(c *gin.Context) {
	requester := principalFrom(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	l, err := h.returnUC.Execute(c.Request.Context(), requester, id)
	if err != nil {
		writeBusiness(c, err)
		return
	}

	loanDTO, err := h.decorate(l)
	if err != nil {
		httperr.Internal(c, "failed_to_load_loan", "Failed to load the returned loan.")
		return
	}

	c.JSON(200, gin.H{
		"message": "Book returned successfully",
		"loan":    loanDTO,
	})
}

// ======================================================
// EXTEND
// ======================================================

func (h *LoanHandler) Extend(c *gin.Context) {
	requester := principalFrom(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// The body is optional; an absent body means the default extension.
	var req ExtendLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	l, err := h.extendUC.Execute(c.Request.Context(), requester.UserID, id, req.ExtensionDays)
	if err != nil {
		writeBusiness(c, err)
		return
	}

	loanDTO, err := h.decorate(l)
	if err != nil {
		httperr.Internal(c, "failed_to_load_loan", "Failed to load the extended loan.")
		return
	}

	c.JSON(200, gin.H{
		"message": "Loan extended successfully",
		"loan":    loanDTO,
	})
}

// ======================================================
// DELETE
// ======================================================

func (h *LoanHandler) Delete(c *gin.Context) {
	requester := principalFrom(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), requester.UserID, id); err != nil {
		writeBusiness(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Loan record deleted successfully"})
}

// ======================================================
// STATS
// ======================================================

func (h *LoanHandler) Stats(c *gin.Context) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var totalLoans, activeLoans, overdueLoans, loansToday, returnsToday int64
	h.db.Model(&models.Loan{}).Count(&totalLoans)
	h.db.Model(&models.Loan{}).Where("returned_at IS NULL").Count(&activeLoans)
	h.db.Model(&models.Loan{}).Where("returned_at IS NULL AND due_at < ?", now).Count(&overdueLoans)
	h.db.Model(&models.Loan{}).Where("borrowed_at >= ?", startOfDay).Count(&loansToday)
	h.db.Model(&models.Loan{}).Where("returned_at >= ?", startOfDay).Count(&returnsToday)

	var mostActive []struct {
		ID        uint   `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		LoanCount int64  `json:"loan_count"`
	}
	if err := h.db.
		Table("users").
		Select("users.id, users.name, users.email, COUNT(loans.id) AS loan_count").
		Joins("LEFT JOIN loans ON loans.user_id = users.id").
		Group("users.id, users.name, users.email").
		Order("loan_count DESC").
		Limit(10).
		Find(&mostActive).Error; err != nil {

		httperr.Internal(c, "failed_to_get_loan_stats", "Failed to load loan stats.")
		return
	}

	c.JSON(200, gin.H{
		"totalLoans":      totalLoans,
		"activeLoans":     activeLoans,
		"returnedLoans":   totalLoans - activeLoans,
		"overdueLoans":    overdueLoans,
		"loansToday":      loansToday,
		"returnsToday":    returnsToday,
		"mostActiveUsers": mostActive,
	})
}

// ======================================================
// RESPONSE SHAPING
// ======================================================

// decorate reloads the loan with its relations and flattens authors, for
// the single-loan payloads returned by mutations.
func (h *LoanHandler) decorate(l *models.Loan) (*dto.LoanDTO, error) {
	var full models.Loan
	if err := h.db.
		Preload("User").
		Preload("Book").
		First(&full, l.ID).Error; err != nil {
		return nil, err
	}

	authors, err := authorsByBook(h.db, []uint{full.BookID})
	if err != nil {
		return nil, err
	}

	d := buildLoanDTO(full, authors[full.BookID], time.Now())
	return &d, nil
}

func buildLoanDTO(l models.Loan, authors []dto.AuthorRef, now time.Time) dto.LoanDTO {
	if authors == nil {
		authors = []dto.AuthorRef{}
	}

	return dto.LoanDTO{
		Loan: l,
		User: dto.UserRef{
			ID:    l.User.ID,
			Name:  l.User.Name,
			Email: l.User.Email,
		},
		Book: dto.BookRef{
			ID:      l.Book.ID,
			Title:   l.Book.Title,
			ISBN:    l.Book.ISBN,
			Authors: authors,
		},
		IsOverdue: domain.IsOverdue(&l, now),
	}
}
