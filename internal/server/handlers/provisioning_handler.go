package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
	"github.com/mamadbah2/shiftpay/internal/service/provisioning"
)

// WeeklyRunner runs the weekly provisioning the same way the cron job does.
type WeeklyRunner interface {
	RunProvisioning(ctx context.Context) (provisioning.Summary, error)
}

// Provisioner provisions single employees.
type Provisioner interface {
	ProvisionEmployee(ctx context.Context, employeeID string) (provisioning.Summary, error)
	ProvisionDay(ctx context.Context, employeeID string, day time.Time) (models.AttendanceRecord, error)
}

// ProvisioningHandler exposes manual provisioning triggers.
type ProvisioningHandler struct {
	weekly   WeeklyRunner
	svc      Provisioner
	location *time.Location
	logger   *zap.Logger
}

// NewProvisioningHandler constructs the HTTP handler adapter. Dates in paths are
// parsed in loc.
func NewProvisioningHandler(weekly WeeklyRunner, svc Provisioner, loc *time.Location, logger *zap.Logger) *ProvisioningHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningHandler{weekly: weekly, svc: svc, location: loc, logger: logger}
}

// RunWeekly handles POST /api/provisioning/run-weekly.
func (h *ProvisioningHandler) RunWeekly(c *gin.Context) {
	summary, err := h.weekly.RunProvisioning(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ProvisionEmployee handles POST /api/provisioning/employees/:id.
func (h *ProvisioningHandler) ProvisionEmployee(c *gin.Context) {
	summary, err := h.svc.ProvisionEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ProvisionDay handles POST /api/provisioning/employees/:id/days/:date.
func (h *ProvisioningHandler) ProvisionDay(c *gin.Context) {
	day, err := time.ParseInLocation(calendar.DateLayout, c.Param("date"), h.location)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: date must be %s", models.ErrInvalidTimeFormat, calendar.DateLayout))
		return
	}

	rec, err := h.svc.ProvisionDay(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
