package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
)

const (
	// CheckInGraceMinutes is tolerated before lateness accrues.
	CheckInGraceMinutes = 5
	// CheckOutGraceMinutes is tolerated past shift end before overtime accrues.
	CheckOutGraceMinutes = 30
)

// RecordStore is the part of the record store the state machine mutates.
type RecordStore interface {
	FindRecord(ctx context.Context, employeeID string, day time.Time) (models.AttendanceRecord, error)
	FindRecordByID(ctx context.Context, id string) (models.AttendanceRecord, error)
	InsertIfAbsent(ctx context.Context, rec models.AttendanceRecord) (bool, error)
	UpdateRecord(ctx context.Context, id string, expectedVersion int64, tally models.Tally) (models.AttendanceRecord, error)
}

// Directory provides employee and shift master data.
type Directory interface {
	GetEmployee(ctx context.Context, id string) (models.Employee, error)
	GetShift(ctx context.Context, id string) (models.Shift, error)
}

// Service owns the lifecycle of one employee's one-day attendance record.
type Service struct {
	records   RecordStore
	directory Directory
	calendar  *calendar.Resolver
	logger    *zap.Logger
}

// NewService wires the attendance state machine.
func NewService(records RecordStore, directory Directory, resolver *calendar.Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records:   records,
		directory: directory,
		calendar:  resolver,
		logger:    logger,
	}
}

// CheckIn records today's arrival and prices any lateness. Checking in again the same
// day replaces the previous computation.
func (s *Service) CheckIn(ctx context.Context, employeeID, checkInTime string) (models.AttendanceRecord, error) {
	if strings.TrimSpace(employeeID) == "" || strings.TrimSpace(checkInTime) == "" {
		return models.AttendanceRecord{}, fmt.Errorf("%w: employee_id and check_in_time are required", models.ErrMissingField)
	}

	emp, shift, err := s.employeeWithShift(ctx, employeeID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	lateMinutes, err := calendar.DiffMinutes(checkInTime, shift.CheckInTime, CheckInGraceMinutes)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	tally := checkInTally(emp, shift, strings.TrimSpace(checkInTime), lateMinutes)
	today := s.calendar.Today().Start

	rec, err := s.records.FindRecord(ctx, employeeID, today)
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		rec, inserted, err := s.insertToday(ctx, employeeID, today, tally)
		if err != nil {
			return models.AttendanceRecord{}, err
		}
		if inserted {
			s.logCheckIn(rec, "created")
			return rec, nil
		}
		// Someone provisioned the day between our read and insert; fall through to an update.
		return s.updateCheckIn(ctx, rec, tally)
	case err != nil:
		return models.AttendanceRecord{}, fmt.Errorf("load today's record: %w", err)
	}

	return s.updateCheckIn(ctx, rec, tally)
}

func (s *Service) updateCheckIn(ctx context.Context, rec models.AttendanceRecord, tally models.Tally) (models.AttendanceRecord, error) {
	if rec.Leave != nil {
		return models.AttendanceRecord{}, fmt.Errorf("%w: record %s has %s leave", models.ErrRecordOnLeave, rec.ID, rec.Leave.Kind)
	}
	updated, err := s.records.UpdateRecord(ctx, rec.ID, rec.Version, tally)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	s.logCheckIn(updated, "updated")
	return updated, nil
}

func (s *Service) insertToday(ctx context.Context, employeeID string, today time.Time, tally models.Tally) (models.AttendanceRecord, bool, error) {
	rec := models.AttendanceRecord{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		ExecutionDate: today,
		Tally:         tally,
	}
	inserted, err := s.records.InsertIfAbsent(ctx, rec)
	if err != nil {
		return models.AttendanceRecord{}, false, fmt.Errorf("create today's record: %w", err)
	}
	if inserted {
		stored, err := s.records.FindRecordByID(ctx, rec.ID)
		if err != nil {
			return models.AttendanceRecord{}, false, fmt.Errorf("reload created record: %w", err)
		}
		return stored, true, nil
	}
	existing, err := s.records.FindRecord(ctx, employeeID, today)
	if err != nil {
		return models.AttendanceRecord{}, false, fmt.Errorf("reload today's record: %w", err)
	}
	return existing, false, nil
}

func (s *Service) logCheckIn(rec models.AttendanceRecord, action string) {
	s.logger.Info("check-in recorded",
		zap.String("action", action),
		zap.String("employee_id", rec.EmployeeID),
		zap.String("record_id", rec.ID),
		zap.Int("late_minutes", rec.LateMinutes),
		zap.Float64("deduction", rec.DeductionAmount),
		zap.Float64("net_day_salary", rec.NetDaySalary))
}

// CheckOut records today's departure and prices overtime.
func (s *Service) CheckOut(ctx context.Context, employeeID, checkOutTime string) (models.AttendanceRecord, error) {
	if strings.TrimSpace(employeeID) == "" || strings.TrimSpace(checkOutTime) == "" {
		return models.AttendanceRecord{}, fmt.Errorf("%w: employee_id and check_out_time are required", models.ErrMissingField)
	}

	emp, shift, err := s.employeeWithShift(ctx, employeeID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	rec, err := s.records.FindRecord(ctx, employeeID, s.calendar.Today().Start)
	if errors.Is(err, models.ErrRecordNotFound) {
		return models.AttendanceRecord{}, models.ErrNoCheckInFound
	}
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("load today's record: %w", err)
	}
	if rec.Leave != nil {
		return models.AttendanceRecord{}, fmt.Errorf("%w: record %s has %s leave", models.ErrRecordOnLeave, rec.ID, rec.Leave.Kind)
	}
	if !rec.HasCheckIn() {
		return models.AttendanceRecord{}, models.ErrNoCheckInFound
	}

	tally, err := checkOutTally(rec.Tally, emp, shift, strings.TrimSpace(checkOutTime))
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	updated, err := s.records.UpdateRecord(ctx, rec.ID, rec.Version, tally)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	s.logger.Info("check-out recorded",
		zap.String("employee_id", employeeID),
		zap.String("record_id", updated.ID),
		zap.Int("overtime_minutes", updated.OvertimeMinutes),
		zap.Float64("overtime_pay", updated.OvertimePay),
		zap.Float64("net_day_salary", updated.NetDaySalary))

	return updated, nil
}

// ApplyLeave marks a record as paid or unpaid leave. Leave replaces any late or
// overtime computation on that day.
func (s *Service) ApplyLeave(ctx context.Context, recordID, kind, reason string) (models.AttendanceRecord, error) {
	if strings.TrimSpace(recordID) == "" || strings.TrimSpace(kind) == "" {
		return models.AttendanceRecord{}, fmt.Errorf("%w: record_id and leave_type are required", models.ErrMissingField)
	}
	leaveKind, err := models.ParseLeaveKind(kind)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	rec, emp, err := s.recordWithEmployee(ctx, recordID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	tally := rec.Tally
	tally.Leave = &models.Leave{
		Kind:      leaveKind,
		Reason:    strings.TrimSpace(reason),
		AppliedAt: s.calendar.Now(),
	}
	tally.Settle(emp.PerDaySalary)

	updated, err := s.records.UpdateRecord(ctx, rec.ID, rec.Version, tally)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	s.logger.Info("leave applied",
		zap.String("employee_id", updated.EmployeeID),
		zap.String("record_id", updated.ID),
		zap.String("leave_kind", string(leaveKind)),
		zap.Float64("deduction", updated.DeductionAmount))

	return updated, nil
}

// ClearLeave removes a leave override and recomputes the day from its stored
// check-in and check-out times, if any.
func (s *Service) ClearLeave(ctx context.Context, recordID string) (models.AttendanceRecord, error) {
	if strings.TrimSpace(recordID) == "" {
		return models.AttendanceRecord{}, fmt.Errorf("%w: record_id is required", models.ErrMissingField)
	}

	rec, emp, err := s.recordWithEmployee(ctx, recordID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if rec.Leave == nil {
		return rec, nil
	}

	tally, err := s.recompute(ctx, rec, emp)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	updated, err := s.records.UpdateRecord(ctx, rec.ID, rec.Version, tally)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	s.logger.Info("leave cleared",
		zap.String("employee_id", updated.EmployeeID),
		zap.String("record_id", updated.ID),
		zap.String("state", string(updated.State())))

	return updated, nil
}

func (s *Service) recompute(ctx context.Context, rec models.AttendanceRecord, emp models.Employee) (models.Tally, error) {
	if !rec.HasCheckIn() {
		return models.BlankTally(emp.PerDaySalary), nil
	}

	shift, err := s.shiftOf(ctx, emp)
	if err != nil {
		return models.Tally{}, err
	}

	lateMinutes, err := calendar.DiffMinutes(*rec.CheckInTime, shift.CheckInTime, CheckInGraceMinutes)
	if err != nil {
		return models.Tally{}, err
	}
	tally := checkInTally(emp, shift, *rec.CheckInTime, lateMinutes)
	if !rec.HasCheckOut() {
		return tally, nil
	}
	return checkOutTally(tally, emp, shift, *rec.CheckOutTime)
}

func (s *Service) recordWithEmployee(ctx context.Context, recordID string) (models.AttendanceRecord, models.Employee, error) {
	rec, err := s.records.FindRecordByID(ctx, recordID)
	if err != nil {
		return models.AttendanceRecord{}, models.Employee{}, err
	}
	emp, err := s.directory.GetEmployee(ctx, rec.EmployeeID)
	if err != nil {
		return models.AttendanceRecord{}, models.Employee{}, err
	}
	if err := emp.CheckRates(); err != nil {
		return models.AttendanceRecord{}, models.Employee{}, err
	}
	return rec, emp, nil
}

func (s *Service) employeeWithShift(ctx context.Context, employeeID string) (models.Employee, models.Shift, error) {
	emp, err := s.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return models.Employee{}, models.Shift{}, err
	}
	if err := emp.CheckRates(); err != nil {
		return models.Employee{}, models.Shift{}, err
	}
	shift, err := s.shiftOf(ctx, emp)
	if err != nil {
		return models.Employee{}, models.Shift{}, err
	}
	return emp, shift, nil
}

func (s *Service) shiftOf(ctx context.Context, emp models.Employee) (models.Shift, error) {
	if emp.ShiftID == nil || *emp.ShiftID == "" {
		return models.Shift{}, fmt.Errorf("%w: employee %s", models.ErrShiftNotAssigned, emp.ID)
	}
	return s.directory.GetShift(ctx, *emp.ShiftID)
}

func checkInTally(emp models.Employee, shift models.Shift, checkInTime string, lateMinutes int) models.Tally {
	tally := models.Tally{
		CheckInTime:     models.StringPtr(checkInTime),
		ShiftTiming:     shift.Timing(),
		LateMinutes:     lateMinutes,
		DeductionAmount: float64(lateMinutes) * emp.PerMinuteSalary,
	}
	tally.Settle(emp.PerDaySalary)
	return tally
}

func checkOutTally(prev models.Tally, emp models.Employee, shift models.Shift, checkOutTime string) (models.Tally, error) {
	overtimeMinutes, err := calendar.DiffMinutes(checkOutTime, shift.CheckOutTime, CheckOutGraceMinutes)
	if err != nil {
		return models.Tally{}, err
	}
	tally := prev
	tally.CheckOutTime = models.StringPtr(checkOutTime)
	tally.OvertimeMinutes = overtimeMinutes
	tally.OvertimePay = float64(overtimeMinutes) * emp.PerMinuteSalary
	tally.Settle(emp.PerDaySalary)
	return tally, nil
}
