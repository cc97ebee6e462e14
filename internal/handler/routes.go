package handler

import (
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	Auth        *AuthHandler
	Client      *ClientHandler
	Transaction *TransactionHandler
	Category    *CategoryHandler
	Goal        *GoalHandler
	Reminder    *ReminderHandler
	Report      *ReportHandler
	Checkout    *CheckoutHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, scope middleware.ClientScopeResolver, checkoutLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Token comes from the query string; see WebSocketHandler
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")
	authenticated := api.Group("", authMiddleware.Authenticate())

	// Routes that act on the caller's own account
	auth := authenticated.Group("/auth")
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)

	clients := authenticated.Group("/clients")
	clients.GET("", h.Client.ListConsulted)
	clients.GET("/me", h.Client.GetMe)
	clients.PUT("/me", h.Client.UpdateMe)
	clients.POST("/link", h.Client.LinkConsultant)
	clients.DELETE("/link", h.Client.UnlinkConsultant)

	authenticated.POST("/checkout", h.Checkout.Checkout, middleware.RateLimitMiddleware(checkoutLimiter))

	// Routes scoped to one client, optionally chosen by a consultant
	scoped := authenticated.Group("", middleware.ClientScope(scope))

	transactions := scoped.Group("/transactions")
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.PATCH("/batch", h.Transaction.BatchUpdate)
	transactions.POST("/import", h.Transaction.ImportCSV)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)
	transactions.POST("/:id/receipt", h.Transaction.UploadReceipt)
	transactions.GET("/:id/receipt", h.Transaction.GetReceipt)
	transactions.DELETE("/:id/receipt", h.Transaction.DeleteReceipt)

	categories := scoped.Group("/categories")
	categories.GET("", h.Category.GetCategories)
	categories.POST("", h.Category.CreateCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	goals := scoped.Group("/goals")
	goals.GET("", h.Goal.GetGoals)
	goals.POST("", h.Goal.CreateGoal)
	goals.PUT("/:id", h.Goal.UpdateGoal)
	goals.DELETE("/:id", h.Goal.DeleteGoal)

	reminders := scoped.Group("/reminders")
	reminders.GET("", h.Reminder.GetReminders)
	reminders.POST("", h.Reminder.CreateReminder)
	reminders.PUT("/:id", h.Reminder.UpdateReminder)
	reminders.DELETE("/:id", h.Reminder.DeleteReminder)

	reports := scoped.Group("/reports")
	reports.GET("/summary", h.Report.GetSummary)
	reports.GET("/goals", h.Report.GetGoalProgress)
	reports.GET("/transactions.csv", h.Report.DownloadCSV)
	reports.POST("/exports", h.Report.PublishExport)
}
