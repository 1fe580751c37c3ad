package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/models"
)

// ======================================================
// HANDLER (PLATFORM ADMIN)
// ======================================================

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	role := strings.TrimSpace(c.Query("role"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "50")

	page, _ := strconv.Atoi(pageStr)
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	q := h.db.Model(&models.User{})

	if role != "" {
		q = q.Where("role = ?", role)
	}
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "users_count_failed", "Could not count users.")
		return
	}

	var users []models.User
	if err := q.
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {

		httperr.Internal(c, "users_list_failed", "Could not list users.")
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":            u.ID,
			"name":          u.Name,
			"email":         u.Email,
			"phone":         u.Phone,
			"role":          u.Role,
			"active":        u.Active,
			"barbershop_id": u.BarbershopID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"users": out,
	})
}

func (h *AdminHandler) ListBarbershops(c *gin.Context) {
	var shops []models.Barbershop
	if err := h.db.Order("id ASC").Find(&shops).Error; err != nil {
		httperr.Internal(c, "barbershops_list_failed", "Could not list barbershops.")
		return
	}

	c.JSON(http.StatusOK, shops)
}

func (h *AdminHandler) SetUserActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid user id.")
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "user_not_found", "User not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_user", "Could not load the user.")
		return
	}

	user.Active = *req.Active
	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_user", "Could not update the user.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     user.ID,
		"active": user.Active,
	})
}
