package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/middleware"
	"github.com/barberbook/barberbook-api/internal/models"
	"github.com/barberbook/barberbook-api/internal/validators"
)

// ======================================================
// HANDLER (OWNER MANAGES THE SHOP'S BARBERS)
// ======================================================

type WorkerHandler struct {
	db *gorm.DB
}

func NewWorkerHandler(db *gorm.DB) *WorkerHandler {
	return &WorkerHandler{db: db}
}

// --------- Requests ---------

type CreateWorkerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

// --------- Handlers ---------

func (h *WorkerHandler) List(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var workers []models.User
	if err := h.db.
		Where("barbershop_id = ? AND role IN ?", barbershopID,
			[]string{models.RoleOwner, models.RoleBarber}).
		Order("id ASC").
		Find(&workers).Error; err != nil {

		httperr.Internal(c, "failed_to_list_workers", "Could not list the shop's barbers.")
		return
	}

	out := make([]gin.H, 0, len(workers))
	for _, w := range workers {
		out = append(out, gin.H{
			"id":     w.ID,
			"name":   w.Name,
			"email":  w.Email,
			"phone":  w.Phone,
			"role":   w.Role,
			"active": w.Active,
		})
	}

	c.JSON(http.StatusOK, out)
}

func (h *WorkerHandler) Create(c *gin.Context) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not hash the password.")
		return
	}

	worker := models.User{
		BarbershopID: &barbershopID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleBarber,
		Active:       true,
	}

	if err := h.db.Create(&worker).Error; err != nil {
		httperr.Internal(c, "failed_to_create_worker", "Could not create the barber.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     worker.ID,
		"name":   worker.Name,
		"email":  worker.Email,
		"phone":  worker.Phone,
		"role":   worker.Role,
		"active": worker.Active,
	})
}

func (h *WorkerHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *WorkerHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *WorkerHandler) setActive(c *gin.Context, active bool) {
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid barber id.")
		return
	}

	var worker models.User
	if err := h.db.
		Where("id = ? AND barbershop_id = ? AND role = ?", id, barbershopID, models.RoleBarber).
		First(&worker).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "worker_not_found", "Barber not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_worker", "Could not load the barber.")
		return
	}

	worker.Active = active
	if err := h.db.Save(&worker).Error; err != nil {
		httperr.Internal(c, "failed_to_update_worker", "Could not update the barber.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     worker.ID,
		"active": worker.Active,
	})
}
