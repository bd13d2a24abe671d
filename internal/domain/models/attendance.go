package models

import (
	"fmt"
	"iter"
	"strings"
	"sync/atomic"
	"time"
)

// LeaveKind decides how a leave day is priced.
type LeaveKind string

const (
	LeavePaid   LeaveKind = "paid"
	LeaveUnpaid LeaveKind = "unpaid"
)

// ParseLeaveKind validates a user supplied leave kind.
func ParseLeaveKind(value string) (LeaveKind, error) {
	switch LeaveKind(strings.ToLower(strings.TrimSpace(value))) {
	case LeavePaid:
		return LeavePaid, nil
	case LeaveUnpaid:
		return LeaveUnpaid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLeaveKind, value)
	}
}

// Leave overrides the late/overtime computation for a day.
type Leave struct {
	Kind      LeaveKind `bson:"kind" json:"kind"`
	Reason    string    `bson:"reason" json:"reason"`
	AppliedAt time.Time `bson:"applied_at" json:"applied_at"`
}

// Tally is the mutable part of an attendance record. The store replaces it as a whole
// on every conditional update.
type Tally struct {
	CheckInTime     *string `bson:"check_in_time" json:"check_in_time"`
	CheckOutTime    *string `bson:"check_out_time" json:"check_out_time"`
	ShiftTiming     string  `bson:"shift_timing" json:"shift_timing"`
	LateMinutes     int     `bson:"late_minutes" json:"late_minutes"`
	OvertimeMinutes int     `bson:"overtime_minutes" json:"overtime_minutes"`
	DeductionAmount float64 `bson:"deduction_amount" json:"deduction_amount"`
	OvertimePay     float64 `bson:"overtime_pay" json:"overtime_pay"`
	NetDaySalary    float64 `bson:"net_day_salary" json:"net_day_salary"`
	Leave           *Leave  `bson:"leave" json:"leave,omitempty"`
}

// Settle recomputes the net day salary from the other fields. A leave forces the
// deduction from its kind and zeroes the late and overtime figures.
func (t *Tally) Settle(perDaySalary float64) {
	if t.Leave != nil {
		t.LateMinutes = 0
		t.OvertimeMinutes = 0
		t.OvertimePay = 0
		if t.Leave.Kind == LeaveUnpaid {
			t.DeductionAmount = perDaySalary
		} else {
			t.DeductionAmount = 0
		}
	}
	t.NetDaySalary = perDaySalary - t.DeductionAmount + t.OvertimePay
}

// BlankTally is the state of a provisioned day nobody has touched yet.
func BlankTally(perDaySalary float64) Tally {
	t := Tally{}
	t.Settle(perDaySalary)
	return t
}

// RecordState is derived from which tally fields are filled in.
type RecordState string

const (
	StateProvisioned RecordState = "provisioned"
	StateCheckedIn   RecordState = "checked_in"
	StateCheckedOut  RecordState = "checked_out"
	StateOnLeave     RecordState = "on_leave"
)

// AttendanceRecord is one employee's one civil day.
type AttendanceRecord struct {
	ID            string    `bson:"_id" json:"id"`
	EmployeeID    string    `bson:"employee_id" json:"employee_id"`
	ExecutionDate time.Time `bson:"execution_date" json:"execution_date"`
	Tally         `bson:",inline"`
	Version       int64     `bson:"version" json:"version"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// HasCheckIn reports whether a non-empty check-in time is stored.
func (r AttendanceRecord) HasCheckIn() bool {
	return r.CheckInTime != nil && *r.CheckInTime != ""
}

// HasCheckOut reports whether a non-empty check-out time is stored.
func (r AttendanceRecord) HasCheckOut() bool {
	return r.CheckOutTime != nil && *r.CheckOutTime != ""
}

// State returns the lifecycle position of the record.
func (r AttendanceRecord) State() RecordState {
	switch {
	case r.Leave != nil:
		return StateOnLeave
	case r.HasCheckOut():
		return StateCheckedOut
	case r.HasCheckIn():
		return StateCheckedIn
	default:
		return StateProvisioned
	}
}

// RecordFilter selects records for an employee (or everyone when EmployeeID is empty)
// whose execution date falls in [From, To).
type RecordFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

// RecordSeq is a lazily evaluated, finite stream of records.
type RecordSeq = iter.Seq2[AttendanceRecord, error]

// SingleUse guards seq so that a second range over it yields ErrSequenceConsumed.
func SingleUse(seq RecordSeq) RecordSeq {
	var used atomic.Bool
	return func(yield func(AttendanceRecord, error) bool) {
		if used.Swap(true) {
			yield(AttendanceRecord{}, ErrSequenceConsumed)
			return
		}
		seq(yield)
	}
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
