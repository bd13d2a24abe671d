package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
)

// RecordStore creates blank records without ever touching existing ones.
type RecordStore interface {
	InsertIfAbsent(ctx context.Context, rec models.AttendanceRecord) (bool, error)
	InsertManyIfAbsent(ctx context.Context, recs []models.AttendanceRecord) (int, error)
}

// Roster lists the employees to provision for.
type Roster interface {
	GetEmployee(ctx context.Context, id string) (models.Employee, error)
	ListActiveEmployees(ctx context.Context) ([]models.Employee, error)
}

// Summary describes one provisioning run.
type Summary struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Employees int       `json:"employees"`
	Days      int       `json:"days"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
}

// Message renders the summary for the HR notification.
func (s Summary) Message() string {
	if s.Days == 0 {
		return "Attendance provisioning: nothing to provision."
	}
	return fmt.Sprintf("Attendance provisioning %s to %s: %d employees, %d new records, %d already present.",
		s.From.Format(calendar.DateLayout), s.To.Format(calendar.DateLayout),
		s.Employees, s.Inserted, s.Skipped)
}

// Service pre-creates blank attendance records.
type Service struct {
	records  RecordStore
	roster   Roster
	calendar *calendar.Resolver
	logger   *zap.Logger
}

// NewService wires the provisioning job.
func NewService(records RecordStore, roster Roster, resolver *calendar.Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records:  records,
		roster:   roster,
		calendar: resolver,
		logger:   logger,
	}
}

// ProvisionWeek provisions every active employee for the current Monday to Sunday week.
func (s *Service) ProvisionWeek(ctx context.Context) (Summary, error) {
	employees, err := s.roster.ListActiveEmployees(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list active employees: %w", err)
	}
	return s.ProvisionRange(ctx, employees, s.calendar.CurrentWeek())
}

// ProvisionEmployee provisions a newly onboarded employee from today through Sunday.
func (s *Service) ProvisionEmployee(ctx context.Context, employeeID string) (Summary, error) {
	emp, err := s.roster.GetEmployee(ctx, employeeID)
	if err != nil {
		return Summary{}, err
	}
	return s.ProvisionRange(ctx, []models.Employee{emp}, s.calendar.RestOfWeek())
}

// ProvisionRange inserts a blank record for every (employee, day) pair that has none.
// Rates are checked for every employee before anything is written.
func (s *Service) ProvisionRange(ctx context.Context, employees []models.Employee, days []time.Time) (Summary, error) {
	summary := Summary{Employees: len(employees), Days: len(days)}
	if len(days) > 0 {
		summary.From = days[0]
		summary.To = days[len(days)-1]
	}
	if len(employees) == 0 || len(days) == 0 {
		return summary, nil
	}

	for _, emp := range employees {
		if err := emp.CheckRates(); err != nil {
			return Summary{}, err
		}
	}

	recs := make([]models.AttendanceRecord, 0, len(employees)*len(days))
	for _, emp := range employees {
		for _, day := range days {
			recs = append(recs, s.blankRecord(emp, day))
		}
	}

	inserted, err := s.records.InsertManyIfAbsent(ctx, recs)
	if err != nil {
		return Summary{}, fmt.Errorf("provision attendance records: %w", err)
	}
	summary.Inserted = inserted
	summary.Skipped = len(recs) - inserted

	s.logger.Info("attendance provisioned",
		zap.String("from", summary.From.Format(calendar.DateLayout)),
		zap.String("to", summary.To.Format(calendar.DateLayout)),
		zap.Int("employees", summary.Employees),
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

// ProvisionDay back-fills a single day for one employee.
func (s *Service) ProvisionDay(ctx context.Context, employeeID string, date time.Time) (models.AttendanceRecord, error) {
	emp, err := s.roster.GetEmployee(ctx, employeeID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if err := emp.CheckRates(); err != nil {
		return models.AttendanceRecord{}, err
	}

	rec := s.blankRecord(emp, s.calendar.DayOf(date))
	inserted, err := s.records.InsertIfAbsent(ctx, rec)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("provision attendance record: %w", err)
	}
	if !inserted {
		return models.AttendanceRecord{}, fmt.Errorf("%w: employee %s on %s",
			models.ErrAlreadyProvisioned, employeeID, rec.ExecutionDate.Format(calendar.DateLayout))
	}
	rec.Version = 1
	return rec, nil
}

func (s *Service) blankRecord(emp models.Employee, day time.Time) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:            uuid.NewString(),
		EmployeeID:    emp.ID,
		ExecutionDate: day,
		Tally:         models.BlankTally(emp.PerDaySalary),
	}
}

