package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/barberbook/barberbook-api/internal/domain/appointment"
	"github.com/barberbook/barberbook-api/internal/httperr"
	"github.com/barberbook/barberbook-api/internal/middleware"
	"github.com/barberbook/barberbook-api/internal/models"
	uc "github.com/barberbook/barberbook-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER (LOGGED-IN CUSTOMERS)
// ======================================================

type CustomerHandler struct {
	db *gorm.DB

	create *uc.CreateAppointment
	repo   domain.Repository
}

func NewCustomerHandler(
	db *gorm.DB,
	create *uc.CreateAppointment,
	repo domain.Repository,
) *CustomerHandler {
	return &CustomerHandler{
		db:     db,
		create: create,
		repo:   repo,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CustomerBookRequest struct {
	BarbershopSlug string `json:"barbershop_slug" binding:"required"`
	BarberID       uint   `json:"barber_id"`
	ServiceID      uint   `json:"service_id" binding:"required"`
	Date           string `json:"date" binding:"required"` // YYYY-MM-DD
	Time           string `json:"time" binding:"required"` // HH:mm
	Notes          string `json:"notes"`
}

// ======================================================
// BOOK
// ======================================================

func (h *CustomerHandler) Book(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CustomerBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.Internal(c, "user_not_found", "Could not load customer profile.")
		return
	}

	shop, err := h.repo.GetBarbershopBySlug(c.Request.Context(), req.BarbershopSlug)
	if err != nil {
		httperr.NotFound(c, "barbershop_not_found", "Barbershop not found.")
		return
	}

	var barber *models.User
	if req.BarberID != 0 {
		barber, err = h.repo.GetBarber(c.Request.Context(), shop.ID, req.BarberID)
	} else {
		barber, err = h.repo.GetShopOwner(c.Request.Context(), shop.ID)
	}
	if err != nil {
		httperr.BadRequest(c, "barber_not_found", "Barber not found.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), uc.CreateAppointmentInput{
		BarbershopID: shop.ID,
		BarberID:     barber.ID,
		ClientName:   user.Name,
		ClientPhone:  user.Phone,
		ClientEmail:  user.Email,
		CustomerID:   &user.ID,
		ServiceID:    req.ServiceID,
		Date:         req.Date,
		Time:         req.Time,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// MY APPOINTMENTS
// ======================================================

func (h *CustomerHandler) ListMyAppointments(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	aps, err := h.repo.ListAppointmentsForCustomer(c.Request.Context(), userID)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not list appointments.")
		return
	}

	c.JSON(http.StatusOK, aps)
}

// ======================================================
// CANCEL
// ======================================================

func (h *CustomerHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := h.repo.GetAppointmentForCustomer(c.Request.Context(), uint(id), userID)
	if err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}

	shop, err := h.repo.GetBarbershopByID(c.Request.Context(), ap.BarbershopID)
	if err != nil {
		httperr.Internal(c, "barbershop_not_found", "Could not load barbershop.")
		return
	}

	now := nowInShop(shop)
	if err := domain.Cancel(ap, now); err != nil {
		writeError(c, err)
		return
	}

	if err := h.repo.UpdateAppointment(c.Request.Context(), ap); err != nil {
		httperr.Internal(c, "failed_to_cancel", "Could not cancel the appointment.")
		return
	}

	c.JSON(http.StatusOK, ap)
}
