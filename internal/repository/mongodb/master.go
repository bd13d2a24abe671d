package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

// GetEmployee loads an employee by id.
func (r *MongoDBRepository) GetEmployee(ctx context.Context, id string) (models.Employee, error) {
	var emp models.Employee
	err := r.employees.FindOne(ctx, bson.M{"_id": id}).Decode(&emp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Employee{}, models.ErrEmployeeNotFound
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("find employee %s: %w", id, err)
	}
	return emp, nil
}

// GetEmployees loads the employees among ids, keyed by id.
func (r *MongoDBRepository) GetEmployees(ctx context.Context, ids []string) (map[string]models.Employee, error) {
	found := make(map[string]models.Employee, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cur, err := r.employees.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}
	var emps []models.Employee
	if err := cur.All(ctx, &emps); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	for _, emp := range emps {
		found[emp.ID] = emp
	}
	return found, nil
}

// ListActiveEmployees returns active employees ordered by EmpID.
func (r *MongoDBRepository) ListActiveEmployees(ctx context.Context) ([]models.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "emp_id", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.employees.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find active employees: %w", err)
	}
	var emps []models.Employee
	if err := cur.All(ctx, &emps); err != nil {
		return nil, fmt.Errorf("decode active employees: %w", err)
	}
	return emps, nil
}

// CountEmployees returns the total number of employees.
func (r *MongoDBRepository) CountEmployees(ctx context.Context) (int64, error) {
	n, err := r.employees.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

// SaveEmployee inserts or replaces an employee after deriving its salary rates.
func (r *MongoDBRepository) SaveEmployee(ctx context.Context, emp models.Employee) (models.Employee, error) {
	now := time.Now().UTC()
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now
	emp.ApplyRates(models.DeriveRates(emp.Salary))

	_, err := r.employees.ReplaceOne(ctx, bson.M{"_id": emp.ID}, emp, options.Replace().SetUpsert(true))
	if err != nil {
		return models.Employee{}, fmt.Errorf("save employee %s: %w", emp.ID, err)
	}
	return emp, nil
}

// UpdateSalary writes the salary and both derived rates in a single $set.
func (r *MongoDBRepository) UpdateSalary(ctx context.Context, id string, salary float64) (models.Employee, error) {
	update := bson.D{
		{Key: "$set", Value: models.DeriveRates(salary)},
		{Key: "$currentDate", Value: bson.M{"updated_at": true}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var emp models.Employee
	err := r.employees.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&emp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Employee{}, models.ErrEmployeeNotFound
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("update salary for %s: %w", id, err)
	}
	return emp, nil
}

// GetShift loads a shift by id.
func (r *MongoDBRepository) GetShift(ctx context.Context, id string) (models.Shift, error) {
	var shift models.Shift
	err := r.shifts.FindOne(ctx, bson.M{"_id": id}).Decode(&shift)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Shift{}, models.ErrShiftNotFound
	}
	if err != nil {
		return models.Shift{}, fmt.Errorf("find shift %s: %w", id, err)
	}
	return shift, nil
}

// SaveShift inserts or replaces a shift.
func (r *MongoDBRepository) SaveShift(ctx context.Context, shift models.Shift) (models.Shift, error) {
	now := time.Now().UTC()
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now

	_, err := r.shifts.ReplaceOne(ctx, bson.M{"_id": shift.ID}, shift, options.Replace().SetUpsert(true))
	if err != nil {
		return models.Shift{}, fmt.Errorf("save shift %s: %w", shift.ID, err)
	}
	return shift, nil
}
