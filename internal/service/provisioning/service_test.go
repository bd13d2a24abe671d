package provisioning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
	"github.com/mamadbah2/shiftpay/internal/repository/memory"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
)

func setup(t *testing.T) (*Service, *memory.Store, *calendar.Resolver) {
	t.Helper()
	ctx := context.Background()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	// Wednesday.
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, loc)
	resolver := calendar.NewResolverIn(loc, calendar.WithClock(func() time.Time { return now }))

	store := memory.NewStore()
	for _, emp := range []models.Employee{
		{ID: "emp-1", EmpID: "E001", Name: "Asha", Salary: 14400, Active: true},
		{ID: "emp-2", EmpID: "E002", Name: "Ravi", Salary: 30000, Active: true},
		{ID: "emp-3", EmpID: "E003", Name: "Gone", Salary: 9000, Active: false},
	} {
		_, err := store.SaveEmployee(ctx, emp)
		require.NoError(t, err)
	}

	return NewService(store, store, resolver, nil), store, resolver
}

func countRecords(t *testing.T, store *memory.Store, rng calendar.Range) []models.AttendanceRecord {
	t.Helper()
	seq, err := store.QueryRange(context.Background(), rng.Filter(""))
	require.NoError(t, err)
	var out []models.AttendanceRecord
	for rec, err := range seq {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestProvisionWeek_ActiveEmployeesOnly(t *testing.T) {
	svc, store, resolver := setup(t)

	summary, err := svc.ProvisionWeek(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Employees)
	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, 14, summary.Inserted)
	assert.Zero(t, summary.Skipped)
	assert.Equal(t, "2025-03-10", summary.From.Format(calendar.DateLayout))
	assert.Equal(t, "2025-03-16", summary.To.Format(calendar.DateLayout))

	week := calendar.Range{Start: summary.From, End: summary.To.AddDate(0, 0, 1)}
	recs := countRecords(t, store, week)
	require.Len(t, recs, 14)
	for _, rec := range recs {
		assert.NotEqual(t, "emp-3", rec.EmployeeID)
		assert.Equal(t, models.StateProvisioned, rec.State())
		assert.Zero(t, rec.DeductionAmount)
		assert.Equal(t, resolver.DayOf(rec.ExecutionDate), rec.ExecutionDate)
		switch rec.EmployeeID {
		case "emp-1":
			assert.Equal(t, 480.0, rec.NetDaySalary)
		case "emp-2":
			assert.Equal(t, 1000.0, rec.NetDaySalary)
		}
	}
}

func TestProvisionWeek_IsIdempotent(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	first, err := svc.ProvisionWeek(ctx)
	require.NoError(t, err)
	week := calendar.Range{Start: first.From, End: first.To.AddDate(0, 0, 1)}
	before := countRecords(t, store, week)

	second, err := svc.ProvisionWeek(ctx)
	require.NoError(t, err)

	assert.Zero(t, second.Inserted)
	assert.Equal(t, 14, second.Skipped)
	assert.Equal(t, before, countRecords(t, store, week))
}

func TestProvisionWeek_DoesNotOverwriteCheckedInDay(t *testing.T) {
	svc, store, resolver := setup(t)
	ctx := context.Background()

	today := resolver.Today().Start
	_, err := store.InsertIfAbsent(ctx, models.AttendanceRecord{
		ID:            "checked-in",
		EmployeeID:    "emp-1",
		ExecutionDate: today,
		Tally: models.Tally{
			CheckInTime:     models.StringPtr("09:30"),
			LateMinutes:     25,
			DeductionAmount: 25,
			NetDaySalary:    455,
		},
	})
	require.NoError(t, err)

	summary, err := svc.ProvisionWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)

	rec, err := store.FindRecord(ctx, "emp-1", today)
	require.NoError(t, err)
	assert.Equal(t, "checked-in", rec.ID)
	assert.Equal(t, 455.0, rec.NetDaySalary)
	assert.Equal(t, models.StateCheckedIn, rec.State())
}

func TestProvisionEmployee_RestOfWeek(t *testing.T) {
	svc, _, _ := setup(t)

	summary, err := svc.ProvisionEmployee(context.Background(), "emp-2")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Employees)
	assert.Equal(t, 5, summary.Days)
	assert.Equal(t, 5, summary.Inserted)
	assert.Equal(t, "2025-03-12", summary.From.Format(calendar.DateLayout))
	assert.Contains(t, summary.Message(), "5 new records")

	_, err = svc.ProvisionEmployee(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrEmployeeNotFound)
}

func TestProvisionDay_AlreadyProvisioned(t *testing.T) {
	svc, _, resolver := setup(t)
	ctx := context.Background()
	day := resolver.Today().Start.AddDate(0, 0, -3)

	rec, err := svc.ProvisionDay(ctx, "emp-1", day.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, day, rec.ExecutionDate)
	assert.Equal(t, 480.0, rec.NetDaySalary)

	_, err = svc.ProvisionDay(ctx, "emp-1", day)
	assert.ErrorIs(t, err, models.ErrAlreadyProvisioned)
	assert.Equal(t, models.KindPreconditionFailed, models.KindOf(err))
}

func TestProvisionRange_StaleRatesWriteNothing(t *testing.T) {
	svc, store, resolver := setup(t)

	stale := models.Employee{ID: "emp-stale", Salary: 12000, PerDaySalary: 100, PerMinuteSalary: 1, Active: true}
	store.PutEmployeeRaw(stale)
	good, err := store.GetEmployee(context.Background(), "emp-1")
	require.NoError(t, err)

	_, err = svc.ProvisionRange(context.Background(), []models.Employee{good, stale}, resolver.CurrentWeek())
	assert.ErrorIs(t, err, models.ErrStaleSalaryRates)

	week := resolver.CurrentWeek()
	assert.Empty(t, countRecords(t, store, calendar.Range{Start: week[0], End: week[len(week)-1].AddDate(0, 0, 1)}))
}

func TestSummary_MessageWhenEmpty(t *testing.T) {
	summary, err := (&Service{}).ProvisionRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Attendance provisioning: nothing to provision.", summary.Message())
}
