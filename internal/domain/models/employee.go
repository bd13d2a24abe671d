package models

import (
	"fmt"
	"math"
	"time"
)

const (
	// DaysPerMonth is the divisor used to derive the per-day rate from the monthly salary.
	DaysPerMonth = 30
	// MinutesPerWorkday assumes an eight hour working day.
	MinutesPerWorkday = 8 * 60

	rateTolerance = 1e-9
)

// Employee is the master data the engine needs to price a working day.
type Employee struct {
	ID              string    `bson:"_id" json:"id"`
	EmpID           string    `bson:"emp_id" json:"emp_id"`
	Name            string    `bson:"name" json:"name"`
	Role            string    `bson:"role" json:"role"`
	Salary          float64   `bson:"salary" json:"salary"`
	PerDaySalary    float64   `bson:"per_day_salary" json:"per_day_salary"`
	PerMinuteSalary float64   `bson:"per_minute_salary" json:"per_minute_salary"`
	ShiftID         *string   `bson:"shift_id" json:"shift_id,omitempty"`
	Active          bool      `bson:"active" json:"active"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// SalaryRates holds a monthly salary and the two rates derived from it.
type SalaryRates struct {
	Salary          float64 `bson:"salary"`
	PerDaySalary    float64 `bson:"per_day_salary"`
	PerMinuteSalary float64 `bson:"per_minute_salary"`
}

// DeriveRates computes the per-day and per-minute rates for a monthly salary.
func DeriveRates(salary float64) SalaryRates {
	perDay := salary / DaysPerMonth
	return SalaryRates{
		Salary:          salary,
		PerDaySalary:    perDay,
		PerMinuteSalary: perDay / MinutesPerWorkday,
	}
}

// ApplyRates overwrites salary and both derived rates together.
func (e *Employee) ApplyRates(r SalaryRates) {
	e.Salary = r.Salary
	e.PerDaySalary = r.PerDaySalary
	e.PerMinuteSalary = r.PerMinuteSalary
}

// CheckRates reports ErrStaleSalaryRates when the stored rates drifted from the salary.
func (e Employee) CheckRates() error {
	want := DeriveRates(e.Salary)
	if !closeEnough(want.PerDaySalary, e.PerDaySalary) || !closeEnough(want.PerMinuteSalary, e.PerMinuteSalary) {
		return fmt.Errorf("%w: employee %s salary=%.2f per_day=%.6f per_minute=%.6f",
			ErrStaleSalaryRates, e.ID, e.Salary, e.PerDaySalary, e.PerMinuteSalary)
	}
	return nil
}

func closeEnough(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= rateTolerance {
		return true
	}
	return diff <= rateTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// Shift is a named pair of wall-clock times in the engine's civil timezone.
type Shift struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	CheckInTime  string    `bson:"check_in_time" json:"check_in_time"`
	CheckOutTime string    `bson:"check_out_time" json:"check_out_time"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Timing renders the snapshot string stored on attendance records.
func (s Shift) Timing() string {
	return s.CheckInTime + " - " + s.CheckOutTime
}
