// Package directory maintains the employee and shift master data the engine prices against.
package directory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
	"github.com/mamadbah2/shiftpay/internal/service/provisioning"
)

// Store persists master data. SaveEmployee and UpdateSalary must derive the rates.
type Store interface {
	GetEmployee(ctx context.Context, id string) (models.Employee, error)
	SaveEmployee(ctx context.Context, emp models.Employee) (models.Employee, error)
	UpdateSalary(ctx context.Context, id string, salary float64) (models.Employee, error)
	GetShift(ctx context.Context, id string) (models.Shift, error)
	SaveShift(ctx context.Context, shift models.Shift) (models.Shift, error)
}

// Onboarder provisions a newly created employee.
type Onboarder interface {
	ProvisionEmployee(ctx context.Context, employeeID string) (provisioning.Summary, error)
}

// NewEmployee is the input for onboarding.
type NewEmployee struct {
	EmpID   string  `json:"emp_id"`
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Salary  float64 `json:"salary"`
	ShiftID string  `json:"shift_id"`
}

// Onboarded is a stored employee with the records provisioned for it.
type Onboarded struct {
	Employee     models.Employee      `json:"employee"`
	Provisioning provisioning.Summary `json:"provisioning"`
}

// Service validates and stores master data.
type Service struct {
	store     Store
	onboarder Onboarder
	logger    *zap.Logger
}

// NewService wires the directory service.
func NewService(store Store, onboarder Onboarder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, onboarder: onboarder, logger: logger}
}

// CreateShift stores a shift after checking both wall-clock times.
func (s *Service) CreateShift(ctx context.Context, name, checkIn, checkOut string) (models.Shift, error) {
	if strings.TrimSpace(name) == "" {
		return models.Shift{}, fmt.Errorf("%w: name is required", models.ErrMissingField)
	}
	in, err := calendar.ParseClock(checkIn)
	if err != nil {
		return models.Shift{}, err
	}
	out, err := calendar.ParseClock(checkOut)
	if err != nil {
		return models.Shift{}, err
	}

	shift, err := s.store.SaveShift(ctx, models.Shift{
		Name:         strings.TrimSpace(name),
		CheckInTime:  in.String(),
		CheckOutTime: out.String(),
	})
	if err != nil {
		return models.Shift{}, fmt.Errorf("save shift: %w", err)
	}
	s.logger.Info("shift created", zap.String("shift_id", shift.ID), zap.String("timing", shift.Timing()))
	return shift, nil
}

// Onboard stores a new active employee and provisions the rest of the week.
func (s *Service) Onboard(ctx context.Context, in NewEmployee) (Onboarded, error) {
	if strings.TrimSpace(in.EmpID) == "" || strings.TrimSpace(in.Name) == "" {
		return Onboarded{}, fmt.Errorf("%w: emp_id and name are required", models.ErrMissingField)
	}
	if in.Salary <= 0 {
		return Onboarded{}, fmt.Errorf("%w: salary must be positive", models.ErrMissingField)
	}

	emp := models.Employee{
		EmpID:  strings.TrimSpace(in.EmpID),
		Name:   strings.TrimSpace(in.Name),
		Role:   strings.TrimSpace(in.Role),
		Salary: in.Salary,
		Active: true,
	}
	if in.ShiftID != "" {
		if _, err := s.store.GetShift(ctx, in.ShiftID); err != nil {
			return Onboarded{}, err
		}
		emp.ShiftID = models.StringPtr(in.ShiftID)
	}

	saved, err := s.store.SaveEmployee(ctx, emp)
	if err != nil {
		return Onboarded{}, fmt.Errorf("save employee: %w", err)
	}
	s.logger.Info("employee onboarded", zap.String("employee_id", saved.ID), zap.String("emp_id", saved.EmpID))

	summary, err := s.onboarder.ProvisionEmployee(ctx, saved.ID)
	if err != nil {
		return Onboarded{}, fmt.Errorf("provision onboarded employee %s: %w", saved.ID, err)
	}
	return Onboarded{Employee: saved, Provisioning: summary}, nil
}

// UpdateSalary changes the monthly salary. Both derived rates move with it.
func (s *Service) UpdateSalary(ctx context.Context, employeeID string, salary float64) (models.Employee, error) {
	if salary <= 0 {
		return models.Employee{}, fmt.Errorf("%w: salary must be positive", models.ErrMissingField)
	}
	emp, err := s.store.UpdateSalary(ctx, employeeID, salary)
	if err != nil {
		return models.Employee{}, err
	}
	s.logger.Info("salary updated",
		zap.String("employee_id", emp.ID),
		zap.Float64("salary", emp.Salary),
		zap.Float64("per_day_salary", emp.PerDaySalary))
	return emp, nil
}
