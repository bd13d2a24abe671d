package export

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

type stubSource struct {
	report models.PayrollReport
	err    error
}

func (s stubSource) PayrollReport(_ context.Context, year, month int) (models.PayrollReport, error) {
	r := s.report
	r.Year, r.Month = year, month
	return r, s.err
}

type fakeSheet struct {
	existing [][]interface{}
	appended [][]interface{}
	ranges   []string
	err      error
}

func (f *fakeSheet) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.ranges = append(f.ranges, sheetRange)
	f.appended = append(f.appended, rows...)
	return nil
}

func (f *fakeSheet) ReadRange(_ context.Context, _ string) ([][]interface{}, error) {
	return append(f.existing, f.appended...), nil
}

var march = models.PayrollReport{
	Employees: []models.PayrollLine{
		{EmployeeID: "a", EmpID: "E001", Name: "Asha", Role: "Operator", Salary: 15000, Days: 2,
			DeductionAmount: 15.625, OvertimePay: 15.625, NetSalary: 1000},
		{EmployeeID: "b", EmpID: "E002", Name: "Ravi", Role: "Lead", Salary: 20000, Days: 1,
			DeductionAmount: 0, OvertimePay: 2.0833333, NetSalary: 668.7499999},
	},
	TotalDeduction:   15.625,
	TotalOvertimePay: 17.7083333,
	TotalNetSalary:   1668.7499999,
}

func TestExportPayroll_WritesRoundedRows(t *testing.T) {
	sheet := &fakeSheet{existing: [][]interface{}{{"Month"}, {"2025-02"}}}
	svc := NewService(stubSource{report: march}, sheet, nil)

	res, err := svc.ExportPayroll(context.Background(), 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, Result{Month: "2025-03", Rows: 3}, res)
	assert.Equal(t, []string{"Payroll!A:I"}, sheet.ranges)
	require.Len(t, sheet.appended, 3)
	assert.Equal(t, []interface{}{"2025-03", "E001", "Asha", "Operator", 15000.0, 2, 15.63, 15.63, 1000.0}, sheet.appended[0])
	assert.Equal(t, []interface{}{"2025-03", "E002", "Ravi", "Lead", 20000.0, 1, 2.08, 0.0, 668.75}, sheet.appended[1])
	assert.Equal(t, []interface{}{"2025-03", "TOTAL", "", "", "", 3, 17.71, 15.63, 1668.75}, sheet.appended[2])
}

func TestExportPayroll_SkipsExportedMonth(t *testing.T) {
	sheet := &fakeSheet{}
	svc := NewService(stubSource{report: march}, sheet, nil)
	ctx := context.Background()

	_, err := svc.ExportPayroll(ctx, 2025, 3)
	require.NoError(t, err)

	res, err := svc.ExportPayroll(ctx, 2025, 3)
	require.NoError(t, err)
	assert.True(t, res.AlreadyExported)
	assert.Len(t, sheet.appended, 3)
}

func TestExportPayroll_EmptyMonthStillWritesTotals(t *testing.T) {
	sheet := &fakeSheet{}
	svc := NewService(stubSource{}, sheet, nil)

	res, err := svc.ExportPayroll(context.Background(), 2024, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, []interface{}{"2024-12", "TOTAL", "", "", "", 0, 0.0, 0.0, 0.0}, sheet.appended[0])
}

func TestExportPayroll_Errors(t *testing.T) {
	_, err := NewService(stubSource{err: models.ErrInvalidMonth}, &fakeSheet{}, nil).ExportPayroll(context.Background(), 2025, 13)
	assert.ErrorIs(t, err, models.ErrInvalidMonth)

	boom := errors.New("quota exceeded")
	_, err = NewService(stubSource{report: march}, &fakeSheet{err: boom}, nil).ExportPayroll(context.Background(), 2025, 3)
	assert.ErrorIs(t, err, boom)
}
