package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/config"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/handlers"
	infraRepo "github.com/LoganBuchanan/NBAD-Library-Project/internal/infra/repository"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/middleware"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/storage"
	ucLoan "github.com/LoganBuchanan/NBAD-Library-Project/internal/usecase/loan"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	loanRepo := infraRepo.NewLoanGormRepository(db)
	coverStore := storage.NewS3CoverStore(cfg)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// USE CASES — LOANS
	// ======================================================
	createLoanUC := ucLoan.NewCreateLoan(loanRepo, auditDispatcher)
	returnLoanUC := ucLoan.NewReturnLoan(loanRepo, auditDispatcher)
	extendLoanUC := ucLoan.NewExtendLoan(loanRepo, auditDispatcher)
	deleteLoanUC := ucLoan.NewDeleteLoan(loanRepo, auditDispatcher)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, auditDispatcher)
	userHandler := handlers.NewUserHandler(db, auditDispatcher)
	authorHandler := handlers.NewAuthorHandler(db, auditDispatcher)
	bookHandler := handlers.NewBookHandler(db, coverStore, auditDispatcher)

	loanHandler := handlers.NewLoanHandler(
		db,
		createLoanUC,
		returnLoanUC,
		extendLoanUC,
		deleteLoanUC,
	)

	authRequired := middleware.AuthMiddleware(cfg)
	librarianOnly := middleware.RequireLibrarian()
	authLimiter := middleware.RateLimit(rdb, 5, 15*time.Minute)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// USERS
		// ------------------------------
		users := api.Group("/users")
		{
			users.POST("/signup", authLimiter, authHandler.Signup)
			users.POST("/login", authLimiter, authHandler.Login)

			users.GET("/profile", authRequired, userHandler.GetProfile)
			users.PUT("/profile", authRequired, userHandler.UpdateProfile)
			users.PUT("/change-password", authRequired, userHandler.ChangePassword)

			users.GET("", authRequired, librarianOnly, userHandler.List)
			users.DELETE("/:id", authRequired, librarianOnly, userHandler.Delete)
		}

		// ------------------------------
		// AUTHORS
		// ------------------------------
		authors := api.Group("/authors")
		{
			authors.GET("", authorHandler.List)
			authors.GET("/popular", authorHandler.Popular)
			authors.GET("/:id", authorHandler.GetByID)

			authors.POST("", authRequired, librarianOnly, authorHandler.Create)
			authors.PUT("/:id", authRequired, librarianOnly, authorHandler.Update)
			authors.DELETE("/:id", authRequired, librarianOnly, authorHandler.Delete)
			authors.GET("/admin/stats", authRequired, librarianOnly, authorHandler.Stats)
		}

		// ------------------------------
		// BOOKS
		// ------------------------------
		books := api.Group("/books")
		{
			books.GET("", bookHandler.List)
			books.GET("/:id", bookHandler.GetByID)

			books.POST("", authRequired, librarianOnly, bookHandler.Create)
			books.PUT("/:id", authRequired, librarianOnly, bookHandler.Update)
			books.DELETE("/:id", authRequired, librarianOnly, bookHandler.Delete)
			books.PUT("/:id/cover", authRequired, librarianOnly, bookHandler.UploadCover)
			books.GET("/admin/stats", authRequired, librarianOnly, bookHandler.Stats)
		}

		// ------------------------------
		// LOANS
		// ------------------------------
		loans := api.Group("/loans")
		loans.Use(authRequired)
		{
			loans.POST("", loanHandler.Create)
			loans.GET("", loanHandler.List)
			loans.GET("/:id", loanHandler.GetByID)
			loans.PUT("/:id/return", loanHandler.Return)

			loans.PUT("/:id/extend", librarianOnly, loanHandler.Extend)
			loans.DELETE("/:id", librarianOnly, loanHandler.Delete)
			loans.GET("/admin/stats", librarianOnly, loanHandler.Stats)
		}
	}
}
