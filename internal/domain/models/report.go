package models

import "time"

// Totals are plain sums over a set of attendance records.
type Totals struct {
	TotalDays            int     `json:"total_days"`
	TotalLateMinutes     int     `json:"total_late_minutes"`
	TotalOvertimeMinutes int     `json:"total_overtime_minutes"`
	TotalDeduction       float64 `json:"total_deduction"`
	TotalOvertimePay     float64 `json:"total_overtime_pay"`
	TotalNetSalary       float64 `json:"total_net_salary"`
}

// AddRecord folds a single record into the totals.
func (t *Totals) AddRecord(r AttendanceRecord) {
	t.TotalDays++
	t.TotalLateMinutes += r.LateMinutes
	t.TotalOvertimeMinutes += r.OvertimeMinutes
	t.TotalDeduction += r.DeductionAmount
	t.TotalOvertimePay += r.OvertimePay
	t.TotalNetSalary += r.NetDaySalary
}

// Add combines totals of two disjoint record sets.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		TotalDays:            t.TotalDays + o.TotalDays,
		TotalLateMinutes:     t.TotalLateMinutes + o.TotalLateMinutes,
		TotalOvertimeMinutes: t.TotalOvertimeMinutes + o.TotalOvertimeMinutes,
		TotalDeduction:       t.TotalDeduction + o.TotalDeduction,
		TotalOvertimePay:     t.TotalOvertimePay + o.TotalOvertimePay,
		TotalNetSalary:       t.TotalNetSalary + o.TotalNetSalary,
	}
}

// DayRow is a record as shown on a report.
type DayRow struct {
	AttendanceRecord
	State RecordState `json:"state"`
	// ShowApply marks future days without a check-in, eligible for a leave pre-application.
	ShowApply bool `json:"show_apply"`
}

// EmployeeReport is the per-employee rollup over a day or month.
type EmployeeReport struct {
	EmployeeID string    `json:"employee_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Totals     Totals    `json:"totals"`
	Records    []DayRow  `json:"records"`
}

// PayrollLine is one employee's month on the payroll.
type PayrollLine struct {
	EmployeeID      string  `json:"employee_id"`
	EmpID           string  `json:"emp_id"`
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	Salary          float64 `json:"salary"`
	Days            int     `json:"days"`
	DeductionAmount float64 `json:"deduction_amount"`
	OvertimePay     float64 `json:"overtime_pay"`
	NetSalary       float64 `json:"net_salary"`
}

// PayrollReport is the organization-wide month.
type PayrollReport struct {
	Year             int           `json:"year"`
	Month            int           `json:"month"`
	Employees        []PayrollLine `json:"employees"`
	TotalDeduction   float64       `json:"total_deduction"`
	TotalOvertimePay float64       `json:"total_overtime_pay"`
	TotalNetSalary   float64       `json:"total_net_salary"`
}

// TodaySummary is the headline block of the dashboard.
type TodaySummary struct {
	TotalEmployees  int64 `json:"total_employees"`
	CheckedInToday  int   `json:"checked_in_today"`
	OnLeaveToday    int   `json:"on_leave_today"`
	ShiftViolations int   `json:"shift_violations"`
}

// DayStats counts activity on one day of the month.
type DayStats struct {
	Day             int `json:"day"`
	PresentCount    int `json:"present_count"`
	ShiftViolations int `json:"shift_violations"`
	OvertimeCount   int `json:"overtime_count"`
}

// DashboardReport combines today's summary with per-day month statistics.
type DashboardReport struct {
	Year    int          `json:"year"`
	Month   int          `json:"month"`
	Today   TodaySummary `json:"today"`
	Monthly []DayStats   `json:"monthly"`
}
