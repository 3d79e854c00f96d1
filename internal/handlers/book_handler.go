package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/dto"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httpresp"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/middleware"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/storage"
)

type BookHandler struct {
	db     *gorm.DB
	covers storage.CoverStore
	audit  *audit.Dispatcher
}

func NewBookHandler(db *gorm.DB, covers storage.CoverStore, auditD *audit.Dispatcher) *BookHandler {
	return &BookHandler{db: db, covers: covers, audit: auditD}
}

// --------- Requests ---------

type CreateBookRequest struct {
	Title           string `json:"title" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	PublishedYear   int    `json:"published_year" binding:"required"`
	AvailableCopies int    `json:"available_copies" binding:"required,min=1"`
	AuthorIDs       []uint `json:"authorIds" binding:"required"`
}

type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	PublishedYear   *int    `json:"published_year,omitempty"`
	AvailableCopies *int    `json:"available_copies,omitempty"`
	AuthorIDs       []uint  `json:"authorIds,omitempty"`
}

// --------- Handlers ---------

func (h *BookHandler) Create(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Title, ISBN, published year, and available copies are required")
		return
	}

	if len(req.AuthorIDs) == 0 {
		httperr.BadRequest(c, "authors_required", "At least one author ID is required")
		return
	}

	var isbnCount int64
	h.db.Model(&models.Book{}).Where("isbn = ?", req.ISBN).Count(&isbnCount)
	if isbnCount > 0 {
		httperr.Conflict(c, "isbn_exists", "Book with this ISBN already exists")
		return
	}

	var authorCount int64
	h.db.Model(&models.Author{}).Where("id IN ?", req.AuthorIDs).Count(&authorCount)
	if authorCount != int64(len(req.AuthorIDs)) {
		httperr.BadRequest(c, "invalid_author_ids", "One or more author IDs are invalid")
		return
	}

	book := models.Book{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublishedYear:   req.PublishedYear,
		AvailableCopies: req.AvailableCopies,
	}

	// Book and its join rows land together or not at all.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&book).Error; err != nil {
			return err
		}

		for _, authorID := range req.AuthorIDs {
			if err := tx.Create(&models.BookAuthor{
				BookID:   book.ID,
				AuthorID: authorID,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_create_book", "Failed to create book.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "book_created",
		Entity:   "book",
		EntityID: &book.ID,
	})

	authors, err := authorsByBook(h.db, []uint{book.ID})
	if err != nil {
		httperr.Internal(c, "failed_to_create_book", "Failed to load created book.")
		return
	}

	c.JSON(201, gin.H{
		"message": "Book created successfully",
		"book":    dto.BookDTO{Book: book, Authors: authors[book.ID]},
	})
}

func (h *BookHandler) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	q := h.db.Model(&models.Book{})

	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(isbn) LIKE ?", like, like)
	}

	if author := strings.ToLower(strings.TrimSpace(c.Query("author"))); author != "" {
		q = q.Where(
			`id IN (
				SELECT book_authors.book_id FROM book_authors
				JOIN authors ON authors.id = book_authors.author_id
				WHERE LOWER(authors.name) LIKE ?
			)`,
			"%"+author+"%",
		)
	}

	switch c.Query("available") {
	case "true":
		q = q.Where("available_copies > 0")
	case "false":
		q = q.Where("available_copies <= 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_count_books", "Failed to list books.")
		return
	}

	var books []models.Book
	if err := q.
		Order("title ASC").
		Limit(limit).
		Offset(offset).
		Find(&books).Error; err != nil {

		httperr.Internal(c, "failed_to_list_books", "Failed to list books.")
		return
	}

	ids := make([]uint, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	authors, err := authorsByBook(h.db, ids)
	if err != nil {
		httperr.Internal(c, "failed_to_list_books", "Failed to list books.")
		return
	}
	loanCounts, err := loanCountsByBook(h.db, ids)
	if err != nil {
		httperr.Internal(c, "failed_to_list_books", "Failed to list books.")
		return
	}

	result := make([]dto.BookDTO, 0, len(books))
	for _, b := range books {
		bookAuthors := authors[b.ID]
		if bookAuthors == nil {
			bookAuthors = []dto.AuthorRef{}
		}
		result = append(result, dto.BookDTO{
			Book:      b,
			Authors:   bookAuthors,
			LoanCount: loanCounts[b.ID],
		})
	}

	httpresp.Paged(c, "books", result, httpresp.NewPagination(total, page, limit))
}

func (h *BookHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var book models.Book
	if err := h.db.First(&book, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "book_not_found", "Book not found")
			return
		}
		httperr.Internal(c, "failed_to_get_book", "Failed to load book.")
		return
	}

	var links []models.BookAuthor
	if err := h.db.
		Preload("Author").
		Where("book_id = ?", id).
		Find(&links).Error; err != nil {
		httperr.Internal(c, "failed_to_get_book", "Failed to load book.")
		return
	}

	authors := make([]gin.H, 0, len(links))
	for _, link := range links {
		authors = append(authors, gin.H{
			"id":   link.Author.ID,
			"name": link.Author.Name,
			"bio":  link.Author.Bio,
		})
	}

	var activeLoans []models.Loan
	if err := h.db.
		Preload("User").
		Where("book_id = ? AND returned_at IS NULL", id).
		Find(&activeLoans).Error; err != nil {
		httperr.Internal(c, "failed_to_get_book", "Failed to load book.")
		return
	}

	currentLoans := make([]dto.ActiveLoanDTO, 0, len(activeLoans))
	for _, l := range activeLoans {
		entry := dto.ActiveLoanDTO{
			ID:         l.ID,
			BorrowedAt: l.BorrowedAt,
			DueAt:      l.DueAt,
		}
		entry.User.ID = l.User.ID
		entry.User.Name = l.User.Name
		currentLoans = append(currentLoans, entry)
	}

	var loanCount int64
	h.db.Model(&models.Loan{}).Where("book_id = ?", id).Count(&loanCount)

	c.JSON(200, gin.H{
		"id":               book.ID,
		"title":            book.Title,
		"isbn":             book.ISBN,
		"published_year":   book.PublishedYear,
		"available_copies": book.AvailableCopies,
		"cover_url":        book.CoverURL,
		"created_at":       book.CreatedAt,
		"updated_at":       book.UpdatedAt,
		"authors":          authors,
		"currentLoans":     currentLoans,
		"loan_count":       loanCount,
	})
}

func (h *BookHandler) Update(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var book models.Book
	if err := h.db.First(&book, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "book_not_found", "Book not found")
			return
		}
		httperr.Internal(c, "failed_to_get_book", "Failed to load book.")
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.ISBN != nil && *req.ISBN != book.ISBN {
		var count int64
		h.db.Model(&models.Book{}).
			Where("isbn = ? AND id <> ?", *req.ISBN, id).
			Count(&count)
		if count > 0 {
			httperr.Conflict(c, "isbn_exists", "Another book with this ISBN already exists")
			return
		}
		book.ISBN = *req.ISBN
	}

	if req.AuthorIDs != nil {
		if len(req.AuthorIDs) == 0 {
			httperr.BadRequest(c, "authors_required", "At least one author ID is required")
			return
		}

		var authorCount int64
		h.db.Model(&models.Author{}).Where("id IN ?", req.AuthorIDs).Count(&authorCount)
		if authorCount != int64(len(req.AuthorIDs)) {
			httperr.BadRequest(c, "invalid_author_ids", "One or more author IDs are invalid")
			return
		}
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.AvailableCopies != nil {
		book.AvailableCopies = *req.AvailableCopies
	}

	// The author list is replaced wholesale, inside the same transaction as
	// the field update.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&book).Error; err != nil {
			return err
		}

		if req.AuthorIDs != nil {
			if err := tx.Where("book_id = ?", id).Delete(&models.BookAuthor{}).Error; err != nil {
				return err
			}
			for _, authorID := range req.AuthorIDs {
				if err := tx.Create(&models.BookAuthor{
					BookID:   id,
					AuthorID: authorID,
				}).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_update_book", "Failed to update book.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "book_updated",
		Entity:   "book",
		EntityID: &book.ID,
	})

	authors, err := authorsByBook(h.db, []uint{book.ID})
	if err != nil {
		httperr.Internal(c, "failed_to_update_book", "Failed to load updated book.")
		return
	}

	c.JSON(200, gin.H{
		"message": "Book updated successfully",
		"book":    dto.BookDTO{Book: book, Authors: authors[book.ID]},
	})
}

func (h *BookHandler) Delete(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var book models.Book
	if err := h.db.First(&book, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "book_not_found", "Book not found")
			return
		}
		httperr.Internal(c, "failed_to_get_book", "Failed to delete book.")
		return
	}

	var activeLoans int64
	h.db.Model(&models.Loan{}).
		Where("book_id = ? AND returned_at IS NULL", id).
		Count(&activeLoans)
	if activeLoans > 0 {
		httperr.BadRequest(c, "book_has_active_loans", "Cannot delete book with active loans")
		return
	}

	if err := h.db.Delete(&models.Book{}, id).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_book", "Failed to delete book.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "book_deleted",
		Entity:   "book",
		EntityID: &id,
	})

	c.JSON(200, gin.H{"message": "Book deleted successfully"})
}

// UploadCover accepts a multipart image, re-encodes it to webp and stores it.
func (h *BookHandler) UploadCover(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var book models.Book
	if err := h.db.First(&book, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "book_not_found", "Book not found")
			return
		}
		httperr.Internal(c, "failed_to_get_book", "Failed to load book.")
		return
	}

	file, err := c.FormFile("cover")
	if err != nil {
		httperr.BadRequest(c, "cover_required", "A cover image file is required.")
		return
	}

	src, err := file.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_cover", "Could not read the uploaded file.")
		return
	}
	defer src.Close()

	url, err := h.covers.Put(c.Request.Context(), book.ID, src)
	if err != nil {
		if err == storage.ErrUnsupportedImage {
			httperr.BadRequest(c, "invalid_cover", "Unsupported image format.")
			return
		}
		httperr.Internal(c, "failed_to_store_cover", "Failed to store the cover image.")
		return
	}

	book.CoverURL = url
	if err := h.db.Save(&book).Error; err != nil {
		httperr.Internal(c, "failed_to_store_cover", "Failed to save the cover URL.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "book_cover_uploaded",
		Entity:   "book",
		EntityID: &book.ID,
	})

	c.JSON(200, gin.H{
		"message":   "Cover uploaded successfully",
		"cover_url": url,
	})
}

func (h *BookHandler) Stats(c *gin.Context) {
	var totalBooks int64
	h.db.Model(&models.Book{}).Count(&totalBooks)

	var availableBooks int64
	h.db.Model(&models.Book{}).Where("available_copies > 0").Count(&availableBooks)

	var mostBorrowed []struct {
		ID        uint   `json:"id"`
		Title     string `json:"title"`
		ISBN      string `json:"isbn"`
		LoanCount int64  `json:"loan_count"`
	}
	if err := h.db.
		Table("books").
		Select("books.id, books.title, books.isbn, COUNT(loans.id) AS loan_count").
		Joins("LEFT JOIN loans ON loans.book_id = books.id").
		Group("books.id, books.title, books.isbn").
		Order("loan_count DESC").
		Limit(10).
		Find(&mostBorrowed).Error; err != nil {

		httperr.Internal(c, "failed_to_get_book_stats", "Failed to load book stats.")
		return
	}

	var withActiveLoans []struct {
		ID              uint   `json:"id"`
		Title           string `json:"title"`
		AvailableCopies int    `json:"available_copies"`
		ActiveLoans     int64  `json:"active_loans"`
	}
	if err := h.db.
		Table("books").
		Select("books.id, books.title, books.available_copies, COUNT(loans.id) AS active_loans").
		Joins("JOIN loans ON loans.book_id = books.id AND loans.returned_at IS NULL").
		Group("books.id, books.title, books.available_copies").
		Find(&withActiveLoans).Error; err != nil {

		httperr.Internal(c, "failed_to_get_book_stats", "Failed to load book stats.")
		return
	}

	c.JSON(200, gin.H{
		"totalBooks":           totalBooks,
		"availableBooks":       availableBooks,
		"unavailableBooks":     totalBooks - availableBooks,
		"mostBorrowedBooks":    mostBorrowed,
		"booksWithActiveLoans": len(withActiveLoans),
		"activeLoanDetails":    withActiveLoans,
	})
}
