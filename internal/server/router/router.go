package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted on the engine.
type Handlers struct {
	Attendance   *handlers.AttendanceHandler
	Reports      *handlers.ReportHandler
	Provisioning *handlers.ProvisioningHandler
	Employees    *handlers.EmployeeHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	attendance := api.Group("/attendance")
	attendance.POST("/checkin", h.Attendance.CheckIn)
	attendance.POST("/checkout", h.Attendance.CheckOut)
	attendance.POST("/apply-leave", h.Attendance.ApplyLeave)
	attendance.POST("/clear-leave", h.Attendance.ClearLeave)

	reports := api.Group("/reports")
	reports.POST("/daily", h.Reports.Daily)
	reports.POST("/monthly", h.Reports.Monthly)
	reports.GET("/payroll/:year/:month", h.Reports.Payroll)
	reports.POST("/payroll/:year/:month/export", h.Reports.ExportPayroll)
	reports.GET("/dashboard/:year/:month", h.Reports.Dashboard)

	prov := api.Group("/provisioning")
	prov.POST("/run-weekly", h.Provisioning.RunWeekly)
	prov.POST("/employees/:id", h.Provisioning.ProvisionEmployee)
	prov.POST("/employees/:id/days/:date", h.Provisioning.ProvisionDay)

	api.POST("/shifts", h.Employees.CreateShift)
	api.POST("/employees", h.Employees.Onboard)
	api.PATCH("/employees/:id/salary", h.Employees.UpdateSalary)

	logger.Info("router initialized")

	return r
}

// requestIDMiddleware keeps the caller's request id or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
