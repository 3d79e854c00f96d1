package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/dto"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

func parsePagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	return page, limit, (page - 1) * limit
}

func parseLimit(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 || n > 100 {
		n = 10
	}
	return n, nil
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid id parameter.")
		return 0, false
	}
	return uint(id), true
}

// authorsByBook flattens the join table for a set of books.
func authorsByBook(db *gorm.DB, bookIDs []uint) (map[uint][]dto.AuthorRef, error) {
	result := make(map[uint][]dto.AuthorRef, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	var rows []models.BookAuthor
	if err := db.
		Preload("Author").
		Where("book_id IN ?", bookIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.BookID] = append(result[row.BookID], dto.AuthorRef{
			ID:   row.Author.ID,
			Name: row.Author.Name,
		})
	}

	return result, nil
}

func loanCountsByBook(db *gorm.DB, bookIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		BookID uint
		Count  int64
	}
	if err := db.
		Model(&models.Loan{}).
		Select("book_id, COUNT(*) AS count").
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.BookID] = row.Count
	}

	return result, nil
}
