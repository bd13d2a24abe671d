// Package memory is a process-local record store with the same semantics as the
// MongoDB repository. It backs the test suites and STORE_DRIVER=memory runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

type recordKey struct {
	employeeID string
	day        int64
}

// Store keeps employees, shifts and attendance records in maps guarded by one mutex.
type Store struct {
	mu        sync.Mutex
	employees map[string]models.Employee
	shifts    map[string]models.Shift
	records   map[string]models.AttendanceRecord
	byDay     map[recordKey]string
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		employees: make(map[string]models.Employee),
		shifts:    make(map[string]models.Shift),
		records:   make(map[string]models.AttendanceRecord),
		byDay:     make(map[recordKey]string),
		now:       time.Now,
	}
}

func keyOf(employeeID string, day time.Time) recordKey {
	return recordKey{employeeID: employeeID, day: day.UTC().Unix()}
}

// FindRecord returns the record for the employee on the given execution date.
func (s *Store) FindRecord(_ context.Context, employeeID string, day time.Time) (models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byDay[keyOf(employeeID, day)]
	if !ok {
		return models.AttendanceRecord{}, models.ErrRecordNotFound
	}
	return s.records[id], nil
}

// FindRecordByID returns the record with the given id.
func (s *Store) FindRecordByID(_ context.Context, id string) (models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return models.AttendanceRecord{}, models.ErrRecordNotFound
	}
	return rec, nil
}

// InsertIfAbsent stores rec unless a record already exists for its employee and day.
func (s *Store) InsertIfAbsent(_ context.Context, rec models.AttendanceRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(rec), nil
}

// InsertManyIfAbsent inserts every record whose (employee, day) slot is still free.
func (s *Store) InsertManyIfAbsent(_ context.Context, recs []models.AttendanceRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, rec := range recs {
		if s.insertLocked(rec) {
			inserted++
		}
	}
	return inserted, nil
}

func (s *Store) insertLocked(rec models.AttendanceRecord) bool {
	key := keyOf(rec.EmployeeID, rec.ExecutionDate)
	if _, exists := s.byDay[key]; exists {
		return false
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := s.now()
	rec.Version = 1
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = rec
	s.byDay[key] = rec.ID
	return true
}

// UpdateRecord replaces the tally when the stored version still equals expectedVersion.
func (s *Store) UpdateRecord(_ context.Context, id string, expectedVersion int64, tally models.Tally) (models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return models.AttendanceRecord{}, models.ErrRecordNotFound
	}
	if rec.Version != expectedVersion {
		return models.AttendanceRecord{}, fmt.Errorf("%w: record %s at version %d, expected %d",
			models.ErrConcurrentUpdate, id, rec.Version, expectedVersion)
	}
	rec.Tally = tally
	rec.Version++
	rec.UpdatedAt = s.now()
	s.records[id] = rec
	return rec, nil
}

// QueryRange snapshots the matching records, ordered by execution date then id.
func (s *Store) QueryRange(_ context.Context, filter models.RecordFilter) (models.RecordSeq, error) {
	s.mu.Lock()
	matched := make([]models.AttendanceRecord, 0)
	for _, rec := range s.records {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if rec.ExecutionDate.Before(filter.From) || !rec.ExecutionDate.Before(filter.To) {
			continue
		}
		matched = append(matched, rec)
	}
	s.mu.Unlock()

	slices.SortFunc(matched, func(a, b models.AttendanceRecord) int {
		if c := a.ExecutionDate.Compare(b.ExecutionDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return models.SingleUse(func(yield func(models.AttendanceRecord, error) bool) {
		for _, rec := range matched {
			if !yield(rec, nil) {
				return
			}
		}
	}), nil
}

// GetEmployee returns the employee with the given id.
func (s *Store) GetEmployee(_ context.Context, id string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[id]
	if !ok {
		return models.Employee{}, models.ErrEmployeeNotFound
	}
	return emp, nil
}

// GetEmployees returns the known employees among ids. Unknown ids are left out.
func (s *Store) GetEmployees(_ context.Context, ids []string) (map[string]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]models.Employee, len(ids))
	for _, id := range ids {
		if emp, ok := s.employees[id]; ok {
			found[id] = emp
		}
	}
	return found, nil
}

// ListActiveEmployees returns active employees ordered by EmpID.
func (s *Store) ListActiveEmployees(_ context.Context) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []models.Employee
	for _, emp := range s.employees {
		if emp.Active {
			active = append(active, emp)
		}
	}
	slices.SortFunc(active, func(a, b models.Employee) int {
		if c := strings.Compare(a.EmpID, b.EmpID); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return active, nil
}

// CountEmployees returns the number of stored employees.
func (s *Store) CountEmployees(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.employees)), nil
}

// SaveEmployee inserts or replaces an employee, deriving the salary rates.
func (s *Store) SaveEmployee(_ context.Context, emp models.Employee) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	emp.ApplyRates(models.DeriveRates(emp.Salary))
	now := s.now()
	if existing, ok := s.employees[emp.ID]; ok {
		emp.CreatedAt = existing.CreatedAt
	} else {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now
	s.employees[emp.ID] = emp
	return emp, nil
}

// PutEmployeeRaw stores emp exactly as given, skipping rate derivation.
func (s *Store) PutEmployeeRaw(emp models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees[emp.ID] = emp
}

// UpdateSalary sets the salary and both derived rates together.
func (s *Store) UpdateSalary(_ context.Context, id string, salary float64) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[id]
	if !ok {
		return models.Employee{}, models.ErrEmployeeNotFound
	}
	emp.ApplyRates(models.DeriveRates(salary))
	emp.UpdatedAt = s.now()
	s.employees[id] = emp
	return emp, nil
}

// GetShift returns the shift with the given id.
func (s *Store) GetShift(_ context.Context, id string) (models.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, ok := s.shifts[id]
	if !ok {
		return models.Shift{}, models.ErrShiftNotFound
	}
	return shift, nil
}

// SaveShift inserts or replaces a shift.
func (s *Store) SaveShift(_ context.Context, shift models.Shift) (models.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	now := s.now()
	if existing, ok := s.shifts[shift.ID]; ok {
		shift.CreatedAt = existing.CreatedAt
	} else {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now
	s.shifts[shift.ID] = shift
	return shift, nil
}
