package api

import (
	"net/http"

	"gymdesk/membership-app/internal/auth"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the routes are served from.
type Services struct {
	Clients      service.ClientService
	Plans        service.PlanService
	Payments     service.PaymentService
	Renewals     service.RenewalService
	Fees         service.FeeService
	Measurements service.MeasurementService
	Dashboard    service.DashboardService
	WhatsApp     service.WhatsAppService
	Statements   service.StatementService
	Sessions     service.SessionService
}

// RouteOptions carries the non-service settings of the router.
type RouteOptions struct {
	Signer        *auth.CookieSigner
	SecureCookies bool
	PostLoginPath string

	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

func SetupRoutes(router *gin.Engine, services Services, opts RouteOptions, log *logger.Logger) {
	authHandler := NewAuthHandler(services.Sessions, opts.Signer, log, opts.SecureCookies, opts.PostLoginPath)
	clientHandler := NewClientHandler(services.Clients, log)
	planHandler := NewPlanHandler(services.Plans, log)
	paymentHandler := NewPaymentHandler(services.Payments, services.Renewals, services.Statements, log)
	feeHandler := NewFeeHandler(services.Fees, log)
	measurementHandler := NewMeasurementHandler(services.Measurements, log)
	statsHandler := NewStatsHandler(services.Dashboard)
	whatsAppHandler := NewWhatsAppHandler(services.WhatsApp, log)

	sessionGuard := SessionGuard(services.Sessions, opts.Signer, log)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/signin", authHandler.SignIn)
		authGroup.GET("/callback", authHandler.Callback)
		authGroup.GET("/signout", authHandler.SignOut)
		authGroup.GET("/session", sessionGuard, authHandler.Me)
	}

	protected := router.Group("/api/v1")
	protected.Use(sessionGuard)
	{
		protected.GET("/me", authHandler.Me)

		clients := protected.Group("/clientes")
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.POST("/registro", clientHandler.RegisterClient)
			clients.GET("/chequeoCI/:cedula", clientHandler.CheckNationalID)
			clients.GET("/cedula/:cedula", clientHandler.GetClientByNationalID)
			clients.GET("/:id", clientHandler.GetClient)
			clients.PUT("/:id", clientHandler.UpdateClient)
			clients.PATCH("/:id", clientHandler.UpdateClient)
			clients.DELETE("/:id", clientHandler.DeleteClient)

			clients.GET("/:id/pagos", paymentHandler.ListClientPayments)
			clients.GET("/:id/renovacion", paymentHandler.PreviewRenewal)
			clients.GET("/:id/estados-cuenta", paymentHandler.ListStatements)
			clients.POST("/:id/estados-cuenta", paymentHandler.ExportStatement)
			clients.GET("/:id/cuotas", feeHandler.ListClientFees)
			clients.GET("/:id/cuotas/pendientes", feeHandler.PendingFees)
			clients.GET("/:id/medidas", measurementHandler.ListClientMeasurements)
			clients.GET("/:id/medidas/ultima", measurementHandler.LatestMeasurement)
		}

		plans := protected.Group("/planes")
		{
			plans.GET("", planHandler.ListPlans)
			plans.GET("/:id", planHandler.GetPlan)
		}

		payments := protected.Group("/pagos")
		{
			payments.GET("", paymentHandler.ListPayments)
			payments.POST("", paymentHandler.CreatePayment)
			payments.POST("/renovar", paymentHandler.RenewMembership)
			payments.GET("/:id", paymentHandler.GetPayment)
			payments.PUT("/:id", paymentHandler.UpdatePayment)
			payments.PATCH("/:id", paymentHandler.UpdatePayment)
			payments.POST("/:id/completar", paymentHandler.CompletePayment)
			payments.DELETE("/:id", paymentHandler.DeletePayment)
		}

		fees := protected.Group("/cuotas")
		{
			fees.POST("", feeHandler.CreateFee)
			fees.PUT("/:id", feeHandler.UpdateFee)
			fees.POST("/:id/pagar", feeHandler.MarkFeePaid)
			fees.DELETE("/:id", feeHandler.DeleteFee)
		}

		measurements := protected.Group("/medidas")
		{
			measurements.GET("", measurementHandler.ListMeasurements)
			measurements.POST("", measurementHandler.CreateMeasurement)
			measurements.GET("/:id", measurementHandler.GetMeasurement)
			measurements.PUT("/:id", measurementHandler.UpdateMeasurement)
			measurements.DELETE("/:id", measurementHandler.DeleteMeasurement)
		}

		stats := protected.Group("/estadisticas")
		{
			stats.GET("/dashboard", statsHandler.Summary)
			stats.GET("/distribucion-planes", statsHandler.Distribution)
			stats.GET("/tendencia-mensual", statsHandler.Trend)
			stats.GET("/actividad-semanal", statsHandler.Weekly)
			stats.GET("/comparar-meses", statsHandler.Compare)
			stats.GET("/completo", statsHandler.Complete)
			stats.GET("/health-check", statsHandler.Health)
		}

		whatsapp := protected.Group("/whatsapp")
		{
			whatsapp.GET("/status", whatsAppHandler.Status)
			whatsapp.GET("/check-connection", whatsAppHandler.CheckConnection)
			whatsapp.POST("/reset", whatsAppHandler.Reset)
			whatsapp.POST("/test-message", whatsAppHandler.SendTestMessage)
		}

		protected.GET("/estados-cuenta/:statementId", paymentHandler.GetStatement)
	}
}
