package export

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

const (
	payrollRange      = "Payroll!A:I"
	payrollMonthRange = "Payroll!A:A"
	totalsLabel       = "TOTAL"
)

// PayrollSource builds the organization-wide payroll for a month.
type PayrollSource interface {
	PayrollReport(ctx context.Context, year, month int) (models.PayrollReport, error)
}

// SheetWriter is the spreadsheet the payroll is appended to.
type SheetWriter interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Result describes one export run.
type Result struct {
	Month           string `json:"month"`
	Rows            int    `json:"rows"`
	AlreadyExported bool   `json:"already_exported"`
}

// Service writes monthly payroll to a spreadsheet.
type Service struct {
	source PayrollSource
	sheet  SheetWriter
	logger *zap.Logger
}

// NewService wires the payroll exporter.
func NewService(source PayrollSource, sheet SheetWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, sheet: sheet, logger: logger}
}

// ExportPayroll appends one row per employee and a totals row for the month. A month
// whose label is already in column A is left alone so reruns do not duplicate rows.
func (s *Service) ExportPayroll(ctx context.Context, year, month int) (Result, error) {
	report, err := s.source.PayrollReport(ctx, year, month)
	if err != nil {
		return Result{}, err
	}
	label := monthLabel(year, month)

	exported, err := s.alreadyExported(ctx, label)
	if err != nil {
		return Result{}, err
	}
	if exported {
		s.logger.Info("payroll already exported", zap.String("month", label))
		return Result{Month: label, AlreadyExported: true}, nil
	}

	rows := PayrollRows(label, report)
	if err := s.sheet.AppendRows(ctx, payrollRange, rows); err != nil {
		return Result{}, fmt.Errorf("export payroll %s: %w", label, err)
	}

	s.logger.Info("payroll exported",
		zap.String("month", label),
		zap.Int("employees", len(report.Employees)),
		zap.Float64("total_net_salary", report.TotalNetSalary))

	return Result{Month: label, Rows: len(rows)}, nil
}

func (s *Service) alreadyExported(ctx context.Context, label string) (bool, error) {
	cells, err := s.sheet.ReadRange(ctx, payrollMonthRange)
	if err != nil {
		return false, fmt.Errorf("read exported months: %w", err)
	}
	for _, row := range cells {
		if len(row) > 0 && fmt.Sprint(row[0]) == label {
			return true, nil
		}
	}
	return false, nil
}

// PayrollRows renders the report as sheet rows: month, EmpID, name, role, base salary,
// days, overtime pay, deduction, net pay. Money is rounded to 2 decimals here.
func PayrollRows(label string, report models.PayrollReport) [][]interface{} {
	rows := make([][]interface{}, 0, len(report.Employees)+1)
	days := 0
	for _, line := range report.Employees {
		days += line.Days
		rows = append(rows, []interface{}{
			label,
			line.EmpID,
			line.Name,
			line.Role,
			round2(line.Salary),
			line.Days,
			round2(line.OvertimePay),
			round2(line.DeductionAmount),
			round2(line.NetSalary),
		})
	}
	rows = append(rows, []interface{}{
		label, totalsLabel, "", "", "", days,
		round2(report.TotalOvertimePay),
		round2(report.TotalDeduction),
		round2(report.TotalNetSalary),
	})
	return rows
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
