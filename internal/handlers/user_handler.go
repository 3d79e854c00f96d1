package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/LoganBuchanan/NBAD-Library-Project/internal/audit"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httperr"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/httpresp"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/middleware"
	"github.com/LoganBuchanan/NBAD-Library-Project/internal/models"
)

type UserHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewUserHandler(db *gorm.DB, auditD *audit.Dispatcher) *UserHandler {
	return &UserHandler{db: db, audit: auditD}
}

// --------- Requests ---------

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// --------- Handlers ---------

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.Internal(c, "user_not_found", "Failed to load profile.")
		return
	}

	var activeLoans int64
	h.db.Model(&models.Loan{}).
		Where("user_id = ? AND returned_at IS NULL", userID).
		Count(&activeLoans)

	c.JSON(200, gin.H{
		"user":         user,
		"active_loans": activeLoans,
	})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.Internal(c, "user_not_found", "Failed to load profile.")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			var count int64
			h.db.Model(&models.User{}).
				Where("email = ? AND id <> ?", email, userID).
				Count(&count)
			if count > 0 {
				httperr.Conflict(c, "email_already_exists", "Another user with this email already exists.")
				return
			}
			user.Email = email
		}
	}

	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_profile", "Failed to update profile.")
		return
	}

	c.JSON(200, gin.H{"user": user})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.Internal(c, "user_not_found", "Failed to load profile.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		httperr.BadRequest(c, "invalid_current_password", "Current password is incorrect.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Failed to change password.")
		return
	}

	user.PasswordHash = string(hashed)
	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_change_password", "Failed to change password.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "password_changed",
		Entity:   "user",
		EntityID: &userID,
	})

	c.JSON(200, gin.H{"message": "Password changed successfully"})
}

// List is librarian-only: paginated, optional role filter and name/email search.
func (h *UserHandler) List(c *gin.Context) {
	page, limit, offset := parsePagination(c)

	q := h.db.Model(&models.User{})

	if role := strings.ToUpper(strings.TrimSpace(c.Query("role"))); role != "" {
		q = q.Where("role = ?", role)
	}

	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_count_users", "Failed to list users.")
		return
	}

	var users []models.User
	if err := q.
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {

		httperr.Internal(c, "failed_to_list_users", "Failed to list users.")
		return
	}

	httpresp.Paged(c, "users", users, httpresp.NewPagination(total, page, limit))
}

// Delete refuses while the user still holds books; mirrors the book and
// author deletion guards.
func (h *UserHandler) Delete(c *gin.Context) {
	requesterID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "user_not_found", "User not found")
			return
		}
		httperr.Internal(c, "failed_to_get_user", "Failed to delete user.")
		return
	}

	var activeLoans int64
	h.db.Model(&models.Loan{}).
		Where("user_id = ? AND returned_at IS NULL", id).
		Count(&activeLoans)
	if activeLoans > 0 {
		httperr.BadRequest(c, "user_has_active_loans", "Cannot delete user with active loans")
		return
	}

	if err := h.db.Delete(&models.User{}, id).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_user", "Failed to delete user.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &requesterID,
		Action:   "user_deleted",
		Entity:   "user",
		EntityID: &id,
	})

	c.JSON(200, gin.H{"message": "User deleted successfully"})
}
