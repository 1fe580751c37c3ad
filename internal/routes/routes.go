package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/barberbook/barberbook-api/internal/audit"
	"github.com/barberbook/barberbook-api/internal/config"
	"github.com/barberbook/barberbook-api/internal/gateway"
	"github.com/barberbook/barberbook-api/internal/handlers"
	infraRepo "github.com/barberbook/barberbook-api/internal/infra/repository"
	"github.com/barberbook/barberbook-api/internal/middleware"
	"github.com/barberbook/barberbook-api/internal/models"
	ucAppointment "github.com/barberbook/barberbook-api/internal/usecase/appointment"
	ucWallet "github.com/barberbook/barberbook-api/internal/usecase/wallet"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	walletRepo := infraRepo.NewWalletGormRepository(db, cfg.PayoutMode == config.PayoutInstant)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	confirmer := &gateway.SimulatedConfirmer{}

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	availabilityUC := ucAppointment.NewGetAvailability(
		appointmentRepo,
		cfg.SlotGranularityMin,
	)

	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	confirmAppointmentUC := ucAppointment.NewConfirmAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	startAppointmentUC := ucAppointment.NewStartAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	completeAppointmentUC := ucAppointment.NewCompleteAppointment(
		appointmentRepo,
		walletRepo,
		auditDispatcher,
		cfg.LoyaltyCoins,
	)

	cancelAppointmentUC := ucAppointment.NewCancelAppointment(
		appointmentRepo,
		auditDispatcher,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		appointmentRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		appointmentRepo,
	)

	// ======================================================
	// USE CASES — WALLET
	// ======================================================
	payFromWalletUC := ucWallet.NewPayFromWallet(walletRepo, auditDispatcher)
	recordGatewayUC := ucWallet.NewRecordGatewayPayment(walletRepo, confirmer, auditDispatcher)
	topUpFromCoinsUC := ucWallet.NewTopUpFromCoins(walletRepo, auditDispatcher)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	barbershopHandler := handlers.NewBarbershopHandler(db)

	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)
	workerHandler := handlers.NewWorkerHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		confirmAppointmentUC,
		startAppointmentUC,
		completeAppointmentUC,
		cancelAppointmentUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(
		db,
		availabilityUC,
		createAppointmentUC,
		appointmentRepo,
	)

	customerHandler := handlers.NewCustomerHandler(
		db,
		createAppointmentUC,
		appointmentRepo,
	)

	walletHandler := handlers.NewWalletHandler(
		walletRepo,
		payFromWalletUC,
		recordGatewayUC,
		topUpFromCoinsUC,
	)

	adminHandler := handlers.NewAdminHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API (RATE LIMITED)
		// ------------------------------
		publicAPI := api.Group("/public")
		publicAPI.Use(middleware.RateLimitMiddleware(
			rdb,
			cfg.RateLimit,
			time.Duration(cfg.RateWindowSec)*time.Second,
		))
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
			publicAPI.POST("/:slug/appointments/:id/rate", publicHandler.Rate)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/register-customer", authHandler.RegisterCustomer)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API (SHOP STAFF)
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		secured.Use(middleware.RequireRole(models.RoleOwner, models.RoleBarber))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/barbershop", barbershopHandler.GetMeBarbershop)
			secured.PATCH("/me/barbershop", barbershopHandler.UpdateMeBarbershop)

			secured.GET("/me/clients", clientHandler.List)
			secured.GET("/me/clients/:id", clientHandler.Get)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Update)

			secured.GET("/me/workers", workerHandler.List)
			secured.POST("/me/workers", workerHandler.Create)
			secured.PATCH("/me/workers/:id/activate", workerHandler.Activate)
			secured.PATCH("/me/workers/:id/deactivate", workerHandler.Deactivate)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.PATCH("/me/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/me/appointments/:id/start", appointmentHandler.Start)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)

			secured.GET("/me/wallet", walletHandler.GetWallet)
			secured.GET("/me/wallet/transactions", walletHandler.ListTransactions)
			secured.POST("/me/wallet/topup-coins", walletHandler.TopUpCoins)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}

		// ------------------------------
		// CUSTOMER API
		// ------------------------------
		customer := api.Group("/customer")
		customer.Use(middleware.AuthMiddleware(cfg))
		customer.Use(middleware.RequireRole(models.RoleCustomer))
		{
			customer.POST("/appointments", customerHandler.Book)
			customer.GET("/appointments", customerHandler.ListMyAppointments)
			customer.PATCH("/appointments/:id/cancel", customerHandler.Cancel)

			customer.GET("/wallet", walletHandler.GetWallet)
			customer.GET("/wallet/transactions", walletHandler.ListTransactions)
			customer.POST("/wallet/topup-coins", walletHandler.TopUpCoins)
			customer.POST("/payments", walletHandler.Pay)
		}

		// ------------------------------
		// PLATFORM ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/barbershops", adminHandler.ListBarbershops)
			admin.PATCH("/users/:id/active", adminHandler.SetUserActive)
		}
	}
}
