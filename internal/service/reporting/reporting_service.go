package reporting

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
)

// RecordReader streams attendance records for a date range.
type RecordReader interface {
	QueryRange(ctx context.Context, filter models.RecordFilter) (models.RecordSeq, error)
}

// Directory joins reports against employee master data.
type Directory interface {
	GetEmployees(ctx context.Context, ids []string) (map[string]models.Employee, error)
	CountEmployees(ctx context.Context) (int64, error)
}

// Service folds attendance records into reports.
type Service struct {
	records   RecordReader
	directory Directory
	calendar  *calendar.Resolver
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(records RecordReader, directory Directory, resolver *calendar.Resolver, logger *zap.Logger) *Service {
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

// Fold sums every record of seq. When row is non-nil each record is also mapped
// through it and collected in order. seq is consumed exactly once.
func Fold(seq models.RecordSeq, row func(models.AttendanceRecord) models.DayRow) (models.Totals, []models.DayRow, error) {
	var (
		totals models.Totals
		rows   []models.DayRow
	)
	for rec, err := range seq {
		if err != nil {
			return models.Totals{}, nil, err
		}
		totals.AddRecord(rec)
		if row != nil {
			rows = append(rows, row(rec))
		}
	}
	if row != nil && rows == nil {
		rows = []models.DayRow{}
	}
	return totals, rows, nil
}

// DailyReport lists every day of the month for an employee with month totals.
func (s *Service) DailyReport(ctx context.Context, employeeID string, year, month int) (models.EmployeeReport, error) {
	report, err := s.monthReport(ctx, employeeID, year, month)
	if err != nil {
		return models.EmployeeReport{}, err
	}
	s.logger.Debug("daily report built",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("days", report.Totals.TotalDays))
	return report, nil
}

// MonthlyReport rolls up an employee's month.
func (s *Service) MonthlyReport(ctx context.Context, employeeID string, year, month int) (models.EmployeeReport, error) {
	report, err := s.monthReport(ctx, employeeID, year, month)
	if err != nil {
		return models.EmployeeReport{}, err
	}
	s.logger.Debug("monthly report built",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Float64("net_salary", report.Totals.TotalNetSalary))
	return report, nil
}

// DayReport rolls up the single civil day containing day.
func (s *Service) DayReport(ctx context.Context, employeeID string, day time.Time) (models.EmployeeReport, error) {
	if strings.TrimSpace(employeeID) == "" {
		return models.EmployeeReport{}, fmt.Errorf("%w: employee_id is required", models.ErrMissingField)
	}
	rng := s.calendar.DayRange(day)
	report, err := s.employeeReport(ctx, employeeID, rng)
	if err != nil {
		return models.EmployeeReport{}, err
	}
	report.Year = rng.Start.Year()
	report.Month = int(rng.Start.Month())
	return report, nil
}

func (s *Service) monthReport(ctx context.Context, employeeID string, year, month int) (models.EmployeeReport, error) {
	if strings.TrimSpace(employeeID) == "" {
		return models.EmployeeReport{}, fmt.Errorf("%w: employee_id is required", models.ErrMissingField)
	}
	rng, err := s.calendar.MonthRange(year, month)
	if err != nil {
		return models.EmployeeReport{}, err
	}
	report, err := s.employeeReport(ctx, employeeID, rng)
	if err != nil {
		return models.EmployeeReport{}, err
	}
	report.Year = year
	report.Month = month
	return report, nil
}

func (s *Service) employeeReport(ctx context.Context, employeeID string, rng calendar.Range) (models.EmployeeReport, error) {
	seq, err := s.records.QueryRange(ctx, rng.Filter(employeeID))
	if err != nil {
		return models.EmployeeReport{}, fmt.Errorf("query attendance: %w", err)
	}
	totals, rows, err := Fold(seq, s.dayRow)
	if err != nil {
		return models.EmployeeReport{}, fmt.Errorf("read attendance: %w", err)
	}
	return models.EmployeeReport{
		EmployeeID: employeeID,
		From:       rng.Start,
		To:         rng.End,
		Totals:     totals,
		Records:    rows,
	}, nil
}

func (s *Service) dayRow(rec models.AttendanceRecord) models.DayRow {
	return models.DayRow{
		AttendanceRecord: rec,
		State:            rec.State(),
		ShowApply:        !rec.HasCheckIn() && s.calendar.IsAfterToday(rec.ExecutionDate),
	}
}

// PayrollReport groups the month's records by employee and joins master data.
// Records of employees that no longer exist still count, with blank details.
func (s *Service) PayrollReport(ctx context.Context, year, month int) (models.PayrollReport, error) {
	rng, err := s.calendar.MonthRange(year, month)
	if err != nil {
		return models.PayrollReport{}, err
	}

	seq, err := s.records.QueryRange(ctx, rng.Filter(""))
	if err != nil {
		return models.PayrollReport{}, fmt.Errorf("query attendance: %w", err)
	}

	perEmployee := make(map[string]*models.Totals)
	for rec, err := range seq {
		if err != nil {
			return models.PayrollReport{}, fmt.Errorf("read attendance: %w", err)
		}
		t, ok := perEmployee[rec.EmployeeID]
		if !ok {
			t = &models.Totals{}
			perEmployee[rec.EmployeeID] = t
		}
		t.AddRecord(rec)
	}

	ids := make([]string, 0, len(perEmployee))
	for id := range perEmployee {
		ids = append(ids, id)
	}
	employees, err := s.directory.GetEmployees(ctx, ids)
	if err != nil {
		return models.PayrollReport{}, fmt.Errorf("load employees: %w", err)
	}

	lines := make([]models.PayrollLine, 0, len(ids))
	for _, id := range ids {
		t := perEmployee[id]
		emp := employees[id]
		lines = append(lines, models.PayrollLine{
			EmployeeID:      id,
			EmpID:           emp.EmpID,
			Name:            emp.Name,
			Role:            emp.Role,
			Salary:          emp.Salary,
			Days:            t.TotalDays,
			DeductionAmount: t.TotalDeduction,
			OvertimePay:     t.TotalOvertimePay,
			NetSalary:       t.TotalNetSalary,
		})
	}
	slices.SortFunc(lines, func(a, b models.PayrollLine) int {
		return cmp.Or(strings.Compare(a.EmpID, b.EmpID), strings.Compare(a.EmployeeID, b.EmployeeID))
	})

	report := models.PayrollReport{Year: year, Month: month, Employees: lines}
	for _, line := range lines {
		report.TotalDeduction += line.DeductionAmount
		report.TotalOvertimePay += line.OvertimePay
		report.TotalNetSalary += line.NetSalary
	}

	s.logger.Info("payroll report built",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("employees", len(lines)),
		zap.Float64("total_net_salary", report.TotalNetSalary))

	return report, nil
}

// Dashboard summarizes today and every recorded day of the month.
// A shift violation is a day with a late deduction; present means checked in.
func (s *Service) Dashboard(ctx context.Context, year, month int) (models.DashboardReport, error) {
	rng, err := s.calendar.MonthRange(year, month)
	if err != nil {
		return models.DashboardReport{}, err
	}

	total, err := s.directory.CountEmployees(ctx)
	if err != nil {
		return models.DashboardReport{}, fmt.Errorf("count employees: %w", err)
	}
	today, err := s.todaySummary(ctx)
	if err != nil {
		return models.DashboardReport{}, err
	}
	today.TotalEmployees = total

	seq, err := s.records.QueryRange(ctx, rng.Filter(""))
	if err != nil {
		return models.DashboardReport{}, fmt.Errorf("query attendance: %w", err)
	}
	byDay := make(map[int]*models.DayStats)
	for rec, err := range seq {
		if err != nil {
			return models.DashboardReport{}, fmt.Errorf("read attendance: %w", err)
		}
		day := rec.ExecutionDate.In(s.calendar.Location()).Day()
		stats, ok := byDay[day]
		if !ok {
			stats = &models.DayStats{Day: day}
			byDay[day] = stats
		}
		if rec.HasCheckIn() {
			stats.PresentCount++
		}
		if rec.Leave == nil && rec.LateMinutes > 0 {
			stats.ShiftViolations++
		}
		if rec.OvertimePay > 0 {
			stats.OvertimeCount++
		}
	}

	monthly := make([]models.DayStats, 0, len(byDay))
	for _, stats := range byDay {
		monthly = append(monthly, *stats)
	}
	slices.SortFunc(monthly, func(a, b models.DayStats) int { return cmp.Compare(a.Day, b.Day) })

	return models.DashboardReport{
		Year:    year,
		Month:   month,
		Today:   today,
		Monthly: monthly,
	}, nil
}

func (s *Service) todaySummary(ctx context.Context) (models.TodaySummary, error) {
	seq, err := s.records.QueryRange(ctx, s.calendar.Today().Filter(""))
	if err != nil {
		return models.TodaySummary{}, fmt.Errorf("query today's attendance: %w", err)
	}

	var summary models.TodaySummary
	for rec, err := range seq {
		if err != nil {
			return models.TodaySummary{}, fmt.Errorf("read today's attendance: %w", err)
		}
		switch {
		case rec.Leave != nil:
			summary.OnLeaveToday++
		case rec.HasCheckIn():
			summary.CheckedInToday++
			if rec.LateMinutes > 0 {
				summary.ShiftViolations++
			}
		}
	}
	return summary, nil
}
