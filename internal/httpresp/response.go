package httpresp

import "github.com/gin-gonic/gin"

// Pagination is the envelope every paginated listing carries.
type Pagination struct {
	Total       int64 `json:"total"`
	Pages       int   `json:"pages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

func NewPagination(total int64, page, limit int) Pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return Pagination{
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
		Limit:       limit,
	}
}

func OK(c *gin.Context, data any) {
	c.JSON(200, data)
}

// Paged writes a listing under the given key with its pagination envelope,
// e.g. {"books": [...], "pagination": {...}}.
func Paged(c *gin.Context, key string, items any, p Pagination) {
	c.JSON(200, gin.H{
		key:          items,
		"pagination": p,
	})
}
