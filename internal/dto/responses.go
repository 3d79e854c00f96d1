package dto

import (
	"time"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

// AuthorRef is the flattened author entry carried by book and loan payloads.
type AuthorRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type UserRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookRef struct {
	ID      uint        `json:"id"`
	Title   string      `json:"title"`
	ISBN    string      `json:"isbn"`
	Authors []AuthorRef `json:"authors"`
}

// BookDTO is a book row with its join table flattened into an authors list.
type BookDTO struct {
	models.Book
	Authors   []AuthorRef `json:"authors"`
	LoanCount int64       `json:"loan_count"`
}

type AuthorDTO struct {
	models.Author
	BookCount int64 `json:"book_count"`
}

type LoanDTO struct {
	models.Loan
	User      UserRef `json:"user"`
	Book      BookRef `json:"book"`
	IsOverdue bool    `json:"isOverdue"`
}

// ActiveLoanDTO appears under a book detail as current_loans.
type ActiveLoanDTO struct {
	ID         uint      `json:"id"`
	BorrowedAt time.Time `json:"borrowed_at"`
	DueAt      time.Time `json:"due_at"`
	User       struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
}
