package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/service/export"
)

// ReportService is the aggregation engine as seen by HTTP.
type ReportService interface {
	DailyReport(ctx context.Context, employeeID string, year, month int) (models.EmployeeReport, error)
	MonthlyReport(ctx context.Context, employeeID string, year, month int) (models.EmployeeReport, error)
	PayrollReport(ctx context.Context, year, month int) (models.PayrollReport, error)
	Dashboard(ctx context.Context, year, month int) (models.DashboardReport, error)
}

// PayrollExporter pushes a month of payroll to the spreadsheet.
type PayrollExporter interface {
	ExportPayroll(ctx context.Context, year, month int) (export.Result, error)
}

type employeeMonthRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

// ReportHandler exposes the reports. exporter may be nil when Sheets is not configured.
type ReportHandler struct {
	svc      ReportService
	exporter PayrollExporter
	logger   *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc ReportService, exporter PayrollExporter, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, exporter: exporter, logger: logger}
}

// Daily handles POST /api/reports/daily.
func (h *ReportHandler) Daily(c *gin.Context) {
	var req employeeMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	report, err := h.svc.DailyReport(c.Request.Context(), req.EmployeeID, req.Year, req.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Monthly handles POST /api/reports/monthly.
func (h *ReportHandler) Monthly(c *gin.Context) {
	var req employeeMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	report, err := h.svc.MonthlyReport(c.Request.Context(), req.EmployeeID, req.Year, req.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Payroll handles GET /api/reports/payroll/:year/:month.
func (h *ReportHandler) Payroll(c *gin.Context) {
	year, month, err := yearMonthParams(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	report, err := h.svc.PayrollReport(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Dashboard handles GET /api/reports/dashboard/:year/:month.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	year, month, err := yearMonthParams(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	report, err := h.svc.Dashboard(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportPayroll handles POST /api/reports/payroll/:year/:month/export.
func (h *ReportHandler) ExportPayroll(c *gin.Context) {
	if h.exporter == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{
			Error:   "export_disabled",
			Message: "payroll export is not configured",
		})
		return
	}

	year, month, err := yearMonthParams(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	res, err := h.exporter.ExportPayroll(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func yearMonthParams(c *gin.Context) (int, int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: year %q", models.ErrInvalidMonth, c.Param("year"))
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: month %q", models.ErrInvalidMonth, c.Param("month"))
	}
	return year, month, nil
}
