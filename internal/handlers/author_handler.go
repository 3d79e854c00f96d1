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
)

type AuthorHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAuthorHandler(db *gorm.DB, auditD *audit.Dispatcher) *AuthorHandler {
	return &AuthorHandler{db: db, audit: auditD}
}

// --------- Requests ---------

type CreateAuthorRequest struct {
	Name string  `json:"name" binding:"required"`
	Bio  *string `json:"bio"`
}

type UpdateAuthorRequest struct {
	Name *string `json:"name,omitempty"`
	Bio  *string `json:"bio,omitempty"`
}

// --------- Handlers ---------

func (h *AuthorHandler) Create(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Author name is required")
		return
	}

	// Name collisions are case-sensitive, matching the unique index.
	var count int64
	h.db.Model(&models.Author{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		httperr.Conflict(c, "author_name_exists", "Author with this name already exists")
		return
	}

	author := models.Author{
		Name: req.Name,
		Bio:  req.Bio,
	}

	if err := h.db.Create(&author).Error; err != nil {
		httperr.Internal(c, "failed_to_create_author", "Failed to create author.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "author_created",
		Entity:   "author",
		EntityID: &author.ID,
	})

	c.JSON(201, gin.H{
		"message": "Author created successfully",
		"author":  dto.AuthorDTO{Author: author, BookCount: 0},
	})
}

func (h *AuthorHandler) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	q := h.db.Model(&models.Author{})

	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_count_authors", "Failed to list authors.")
		return
	}

	var authors []models.Author
	if err := q.
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error; err != nil {

		httperr.Internal(c, "failed_to_list_authors", "Failed to list authors.")
		return
	}

	result := make([]dto.AuthorDTO, 0, len(authors))
	for _, a := range authors {
		var bookCount int64
		h.db.Model(&models.BookAuthor{}).Where("author_id = ?", a.ID).Count(&bookCount)
		result = append(result, dto.AuthorDTO{Author: a, BookCount: bookCount})
	}

	httpresp.Paged(c, "authors", result, httpresp.NewPagination(total, page, limit))
}

func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var author models.Author
	if err := h.db.First(&author, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "author_not_found", "Author not found")
			return
		}
		httperr.Internal(c, "failed_to_get_author", "Failed to load author.")
		return
	}

	var links []models.BookAuthor
	if err := h.db.
		Preload("Book").
		Where("author_id = ?", id).
		Find(&links).Error; err != nil {
		httperr.Internal(c, "failed_to_get_author", "Failed to load author.")
		return
	}

	books := make([]models.Book, 0, len(links))
	for _, link := range links {
		books = append(books, link.Book)
	}

	c.JSON(200, gin.H{
		"id":         author.ID,
		"name":       author.Name,
		"bio":        author.Bio,
		"created_at": author.CreatedAt,
		"updated_at": author.UpdatedAt,
		"books":      books,
		"book_count": len(books),
	})
}

func (h *AuthorHandler) Update(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var author models.Author
	if err := h.db.First(&author, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "author_not_found", "Author not found")
			return
		}
		httperr.Internal(c, "failed_to_get_author", "Failed to load author.")
		return
	}

	var req UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Name != nil && *req.Name != author.Name {
		var count int64
		h.db.Model(&models.Author{}).
			Where("name = ? AND id <> ?", *req.Name, id).
			Count(&count)
		if count > 0 {
			httperr.Conflict(c, "author_name_exists", "Another author with this name already exists")
			return
		}
		author.Name = *req.Name
	}
	if req.Bio != nil {
		author.Bio = req.Bio
	}

	if err := h.db.Save(&author).Error; err != nil {
		httperr.Internal(c, "failed_to_update_author", "Failed to update author.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "author_updated",
		Entity:   "author",
		EntityID: &author.ID,
	})

	c.JSON(200, gin.H{
		"message": "Author updated successfully",
		"author":  author,
	})
}

func (h *AuthorHandler) Delete(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var author models.Author
	if err := h.db.First(&author, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "author_not_found", "Author not found")
			return
		}
		httperr.Internal(c, "failed_to_get_author", "Failed to load author.")
		return
	}

	var bookCount int64
	h.db.Model(&models.BookAuthor{}).Where("author_id = ?", id).Count(&bookCount)
	if bookCount > 0 {
		httperr.BadRequest(c, "author_has_books", "Cannot delete author with associated books. Remove book associations first.")
		return
	}

	if err := h.db.Delete(&models.Author{}, id).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_author", "Failed to delete author.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "author_deleted",
		Entity:   "author",
		EntityID: &id,
	})

	c.JSON(200, gin.H{"message": "Author deleted successfully"})
}

// Stats is the librarian dashboard payload.
func (h *AuthorHandler) Stats(c *gin.Context) {
	var totalAuthors int64
	h.db.Model(&models.Author{}).Count(&totalAuthors)

	var authorsWithBooks int64
	h.db.Model(&models.BookAuthor{}).Distinct("author_id").Count(&authorsWithBooks)

	var top []struct {
		ID        uint   `json:"id"`
		Name      string `json:"name"`
		BookCount int64  `json:"book_count"`
	}
	if err := h.db.
		Table("authors").
		Select("authors.id, authors.name, COUNT(book_authors.book_id) AS book_count").
		Joins("LEFT JOIN book_authors ON book_authors.author_id = authors.id").
		Group("authors.id, authors.name").
		Order("book_count DESC").
		Limit(10).
		Find(&top).Error; err != nil {

		httperr.Internal(c, "failed_to_get_author_stats", "Failed to load author stats.")
		return
	}

	c.JSON(200, gin.H{
		"totalAuthors":        totalAuthors,
		"authorsWithBooks":    authorsWithBooks,
		"authorsWithoutBooks": totalAuthors - authorsWithBooks,
		"topAuthorsByBooks":   top,
	})
}

// Popular ranks authors by how often their books have been borrowed and
// returned (completed loans only).
func (h *AuthorHandler) Popular(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := parseLimit(v); err == nil {
			limit = n
		}
	}

	var rows []struct {
		ID         uint    `json:"id"`
		Name       string  `json:"name"`
		Bio        *string `json:"bio"`
		TotalBooks int64   `json:"totalBooks"`
		TotalLoans int64   `json:"totalLoans"`
	}
	if err := h.db.
		Table("authors").
		Select(`authors.id, authors.name, authors.bio,
			COUNT(DISTINCT book_authors.book_id) AS total_books,
			COUNT(loans.id) AS total_loans`).
		Joins("LEFT JOIN book_authors ON book_authors.author_id = authors.id").
		Joins("LEFT JOIN loans ON loans.book_id = book_authors.book_id AND loans.returned_at IS NOT NULL").
		Group("authors.id, authors.name, authors.bio").
		Order("total_loans DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {

		httperr.Internal(c, "failed_to_get_popular_authors", "Failed to load popular authors.")
		return
	}

	type popularAuthor struct {
		ID         uint    `json:"id"`
		Name       string  `json:"name"`
		Bio        *string `json:"bio"`
		TotalBooks int64   `json:"totalBooks"`
		TotalLoans int64   `json:"totalLoans"`
		Popularity float64 `json:"popularity"`
	}

	result := make([]popularAuthor, 0, len(rows))
	for _, row := range rows {
		books := row.TotalBooks
		if books == 0 {
			books = 1
		}
		result = append(result, popularAuthor{
			ID:         row.ID,
			Name:       row.Name,
			Bio:        row.Bio,
			TotalBooks: row.TotalBooks,
			TotalLoans: row.TotalLoans,
			Popularity: float64(row.TotalLoans) / float64(books),
		})
	}

	c.JSON(200, gin.H{
		"authors": result,
		"total":   len(result),
	})
}
