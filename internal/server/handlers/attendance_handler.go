package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

// AttendanceService is the attendance state machine as seen by HTTP.
type AttendanceService interface {
	CheckIn(ctx context.Context, employeeID, checkInTime string) (models.AttendanceRecord, error)
	CheckOut(ctx context.Context, employeeID, checkOutTime string) (models.AttendanceRecord, error)
	ApplyLeave(ctx context.Context, recordID, kind, reason string) (models.AttendanceRecord, error)
	ClearLeave(ctx context.Context, recordID string) (models.AttendanceRecord, error)
}

type checkInRequest struct {
	EmployeeID  string `json:"employee_id"`
	CheckInTime string `json:"check_in_time"`
}

type checkOutRequest struct {
	EmployeeID   string `json:"employee_id"`
	CheckOutTime string `json:"check_out_time"`
}

type leaveRequest struct {
	RecordID  string `json:"record_id"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason"`
}

// AttendanceHandler exposes check-in, check-out and leave operations.
type AttendanceHandler struct {
	svc    AttendanceService
	logger *zap.Logger
}

// NewAttendanceHandler constructs the HTTP handler adapter.
func NewAttendanceHandler(svc AttendanceService, logger *zap.Logger) *AttendanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceHandler{svc: svc, logger: logger}
}

// CheckIn handles POST /api/attendance/checkin.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rec, err := h.svc.CheckIn(c.Request.Context(), req.EmployeeID, req.CheckInTime)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CheckOut handles POST /api/attendance/checkout.
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req checkOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rec, err := h.svc.CheckOut(c.Request.Context(), req.EmployeeID, req.CheckOutTime)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ApplyLeave handles POST /api/attendance/apply-leave.
func (h *AttendanceHandler) ApplyLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rec, err := h.svc.ApplyLeave(c.Request.Context(), req.RecordID, req.LeaveType, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ClearLeave handles POST /api/attendance/clear-leave.
func (h *AttendanceHandler) ClearLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rec, err := h.svc.ClearLeave(c.Request.Context(), req.RecordID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
