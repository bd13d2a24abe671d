package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	employeesCollection = "employees"
	shiftsCollection    = "shifts"
	recordsCollection   = "attendance_records"

	duplicateKeyCode = 11000
)

// MongoDBRepository stores master data and attendance records in MongoDB.
type MongoDBRepository struct {
	client    *mongo.Client
	employees *mongo.Collection
	shifts    *mongo.Collection
	records   *mongo.Collection
	logger    *zap.Logger
}

// NewMongoDBRepository connects, pings and returns a repository bound to dbName.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	return &MongoDBRepository{
		client:    client,
		employees: db.Collection(employeesCollection),
		shifts:    db.Collection(shiftsCollection),
		records:   db.Collection(recordsCollection),
		logger:    logger,
	}, nil
}

// EnsureIndexes creates the indexes the engine relies on. The unique index on
// (employee_id, execution_date) is what makes provisioning insert-if-absent.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	recordIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "execution_date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("employee_day_unique"),
		},
		{
			Keys:    bson.D{{Key: "execution_date", Value: 1}},
			Options: options.Index().SetName("execution_date"),
		},
	}
	if _, err := r.records.Indexes().CreateMany(ctx, recordIndexes); err != nil {
		return fmt.Errorf("create attendance indexes: %w", err)
	}

	employeeIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "active", Value: 1}, {Key: "emp_id", Value: 1}},
			Options: options.Index().SetName("active_emp_id"),
		},
	}
	if _, err := r.employees.Indexes().CreateMany(ctx, employeeIndexes); err != nil {
		return fmt.Errorf("create employee indexes: %w", err)
	}

	r.logger.Info("mongodb indexes ensured")
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// onlyDuplicateKeys reports whether every write error in a bulk failure is a
// duplicate key, which for insert-if-absent just means the slot was taken.
func onlyDuplicateKeys(err error) bool {
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) {
		return mongo.IsDuplicateKeyError(err)
	}
	if bulkErr.WriteConcernError != nil || len(bulkErr.WriteErrors) == 0 {
		return false
	}
	for _, we := range bulkErr.WriteErrors {
		if we.Code != duplicateKeyCode {
			return false
		}
	}
	return true
}
