package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/service/directory"
)

// DirectoryService maintains employees and shifts.
type DirectoryService interface {
	CreateShift(ctx context.Context, name, checkIn, checkOut string) (models.Shift, error)
	Onboard(ctx context.Context, in directory.NewEmployee) (directory.Onboarded, error)
	UpdateSalary(ctx context.Context, employeeID string, salary float64) (models.Employee, error)
}

type shiftRequest struct {
	Name         string `json:"name"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
}

type salaryRequest struct {
	Salary float64 `json:"salary"`
}

// EmployeeHandler exposes onboarding and salary changes.
type EmployeeHandler struct {
	svc    DirectoryService
	logger *zap.Logger
}

// NewEmployeeHandler constructs the HTTP handler adapter.
func NewEmployeeHandler(svc DirectoryService, logger *zap.Logger) *EmployeeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeHandler{svc: svc, logger: logger}
}

// CreateShift handles POST /api/shifts.
func (h *EmployeeHandler) CreateShift(c *gin.Context) {
	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	shift, err := h.svc.CreateShift(c.Request.Context(), req.Name, req.CheckInTime, req.CheckOutTime)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// Onboard handles POST /api/employees.
func (h *EmployeeHandler) Onboard(c *gin.Context) {
	var req directory.NewEmployee
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	out, err := h.svc.Onboard(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// UpdateSalary handles PATCH /api/employees/:id/salary.
func (h *EmployeeHandler) UpdateSalary(c *gin.Context) {
	var req salaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	emp, err := h.svc.UpdateSalary(c.Request.Context(), c.Param("id"), req.Salary)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}
