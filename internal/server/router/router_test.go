package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shiftpay/internal/config"
	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/repository/memory"
	"github.com/mamadbah2/shiftpay/internal/scheduler"
	"github.com/mamadbah2/shiftpay/internal/server/handlers"
	"github.com/mamadbah2/shiftpay/internal/service/attendance"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
	"github.com/mamadbah2/shiftpay/internal/service/directory"
	"github.com/mamadbah2/shiftpay/internal/service/provisioning"
	"github.com/mamadbah2/shiftpay/internal/service/reporting"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	// Wednesday 12 March 2025, 10:00 in Kolkata.
	resolver := calendar.NewResolverIn(loc, calendar.WithClock(func() time.Time {
		return time.Date(2025, 3, 12, 10, 0, 0, 0, loc)
	}))

	store := memory.NewStore()
	attendanceSvc := attendance.NewService(store, store, resolver, nil)
	provisioningSvc := provisioning.NewService(store, store, resolver, nil)
	reportingSvc := reporting.NewService(store, store, resolver, nil)
	directorySvc := directory.NewService(store, provisioningSvc, nil)
	sched := scheduler.NewScheduler(config.SchedulerConfig{}, resolver, provisioningSvc, nil, nil, nil)

	engine := New(Handlers{
		Attendance:   handlers.NewAttendanceHandler(attendanceSvc, nil),
		Reports:      handlers.NewReportHandler(reportingSvc, nil, nil),
		Provisioning: handlers.NewProvisioningHandler(sched, provisioningSvc, loc, nil),
		Employees:    handlers.NewEmployeeHandler(directorySvc, nil),
	}, nil)

	return testServer{t: t, handler: engine}
}

func (s testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// onboard creates a 09:00-18:00 shift and an employee earning 14400 a month,
// so one minute of pay is exactly 1.
func (s testServer) onboard() string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/shifts", map[string]string{
		"name": "Day", "check_in_time": "09:00", "check_out_time": "18:00",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	shift := decode[models.Shift](s.t, rec)

	rec = s.do(http.MethodPost, "/api/employees", map[string]any{
		"emp_id": "E001", "name": "Asha", "role": "Operator", "salary": 14400, "shift_id": shift.ID,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[directory.Onboarded](s.t, rec)
	assert.Equal(s.t, 5, out.Provisioning.Inserted)
	return out.Employee.ID
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestAttendanceDayOverHTTP(t *testing.T) {
	s := newTestServer(t)
	empID := s.onboard()

	rec := s.do(http.MethodPost, "/api/attendance/checkin", map[string]string{
		"employee_id": empID, "check_in_time": "09:20",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkedIn := decode[models.AttendanceRecord](t, rec)
	assert.Equal(t, 15, checkedIn.LateMinutes)
	assert.Equal(t, 465.0, checkedIn.NetDaySalary)

	rec = s.do(http.MethodPost, "/api/attendance/checkout", map[string]string{
		"employee_id": empID, "check_out_time": "19:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkedOut := decode[models.AttendanceRecord](t, rec)
	assert.Equal(t, 30, checkedOut.OvertimeMinutes)
	assert.Equal(t, 495.0, checkedOut.NetDaySalary)

	rec = s.do(http.MethodPost, "/api/attendance/apply-leave", map[string]string{
		"record_id": checkedIn.ID, "leave_type": "unpaid", "reason": "family",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Zero(t, decode[models.AttendanceRecord](t, rec).NetDaySalary)

	rec = s.do(http.MethodPost, "/api/attendance/checkin", map[string]string{
		"employee_id": empID, "check_in_time": "09:00",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "record_on_leave", decode[errorBody](t, rec).Error)

	rec = s.do(http.MethodPost, "/api/attendance/clear-leave", map[string]string{"record_id": checkedIn.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 495.0, decode[models.AttendanceRecord](t, rec).NetDaySalary)

	rec = s.do(http.MethodPost, "/api/reports/monthly", map[string]any{
		"employee_id": empID, "year": 2025, "month": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[models.EmployeeReport](t, rec)
	assert.Equal(t, 5, report.Totals.TotalDays)
	assert.Equal(t, 15, report.Totals.TotalLateMinutes)
	assert.Equal(t, 495.0+4*480.0, report.Totals.TotalNetSalary)

	rec = s.do(http.MethodGet, "/api/reports/payroll/2025/3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payroll := decode[models.PayrollReport](t, rec)
	require.Len(t, payroll.Employees, 1)
	assert.Equal(t, "E001", payroll.Employees[0].EmpID)

	rec = s.do(http.MethodGet, "/api/reports/dashboard/2025/3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[models.DashboardReport](t, rec).Today.CheckedInToday)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	empID := s.onboard()

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown employee", http.MethodPost, "/api/attendance/checkin",
			map[string]string{"employee_id": "nobody", "check_in_time": "09:00"}, http.StatusNotFound, "employee_not_found"},
		{"bad time", http.MethodPost, "/api/attendance/checkin",
			map[string]string{"employee_id": empID, "check_in_time": "nine"}, http.StatusBadRequest, "invalid_time_format"},
		{"missing field", http.MethodPost, "/api/attendance/checkin",
			map[string]string{"employee_id": empID}, http.StatusBadRequest, "missing_field"},
		{"checkout first", http.MethodPost, "/api/attendance/checkout",
			map[string]string{"employee_id": empID, "check_out_time": "18:00"}, http.StatusConflict, "no_check_in_found"},
		{"bad leave kind", http.MethodPost, "/api/attendance/apply-leave",
			map[string]string{"record_id": "x", "leave_type": "sabbatical"}, http.StatusBadRequest, "invalid_leave_kind"},
		{"month 13", http.MethodGet, "/api/reports/payroll/2025/13", nil, http.StatusBadRequest, "invalid_month"},
		{"month not a number", http.MethodGet, "/api/reports/dashboard/2025/march", nil, http.StatusBadRequest, "invalid_month"},
		{"export disabled", http.MethodPost, "/api/reports/payroll/2025/3/export", nil, http.StatusServiceUnavailable, "export_disabled"},
		{"already provisioned", http.MethodPost, "/api/provisioning/employees/" + empID + "/days/2025-03-12", nil,
			http.StatusConflict, "already_provisioned"},
		{"bad date", http.MethodPost, "/api/provisioning/employees/" + empID + "/days/12-03-2025", nil,
			http.StatusBadRequest, "invalid_time_format"},
		{"unknown salary target", http.MethodPatch, "/api/employees/nobody/salary",
			map[string]float64{"salary": 1000}, http.StatusNotFound, "employee_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[errorBody](t, rec).Error)
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/attendance/checkin", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode[errorBody](t, rec).Error)
}

func TestProvisioningOverHTTP(t *testing.T) {
	s := newTestServer(t)
	empID := s.onboard()

	rec := s.do(http.MethodPost, "/api/provisioning/run-weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[provisioning.Summary](t, rec)
	assert.Equal(t, 2, summary.Inserted, "Monday and Tuesday were missing")
	assert.Equal(t, 5, summary.Skipped)

	rec = s.do(http.MethodPost, "/api/provisioning/employees/"+empID+"/days/2025-03-01", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPatch, "/api/employees/"+empID+"/salary", map[string]float64{"salary": 28800})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2.0, decode[models.Employee](t, rec).PerMinuteSalary)
}
