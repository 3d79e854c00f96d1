package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
)

var businessMessages = map[string]string{
	"book_not_found":                  "Book not found",
	"loan_not_found":                  "Loan not found",
	"book_not_available":              "Book is not available for borrowing",
	"already_borrowed":                "User already has this book borrowed",
	"loan_limit_reached":              "User has reached maximum loan limit (5 books)",
	"already_returned":                "Book has already been returned",
	"loan_access_denied":              "Access denied - you can only view your own loans",
	"customers_borrow_for_themselves": "Customers can only borrow books for themselves",
	"user_id_required":                "User ID is required for librarian-created loans",
}

// writeBusiness maps a use-case error onto the HTTP taxonomy; anything that
// is not a BusinessError is an internal failure.
func writeBusiness(c *gin.Context, err error) {
	code := httperr.BusinessCode(err)
	if code == "" {
		httperr.Internal(c, "internal_error", "Internal server error")
		return
	}

	msg, ok := businessMessages[code]
	if !ok {
		msg = code
	}

	switch code {
	case "book_not_found", "loan_not_found":
		httperr.NotFound(c, code, msg)
	case "loan_access_denied", "customers_borrow_for_themselves":
		httperr.Forbidden(c, code, msg)
	default:
		httperr.BadRequest(c, code, msg)
	}
}
