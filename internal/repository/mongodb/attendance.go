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
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

// FindRecord loads the record for an employee on an execution date.
func (r *MongoDBRepository) FindRecord(ctx context.Context, employeeID string, day time.Time) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.records.FindOne(ctx, bson.M{"employee_id": employeeID, "execution_date": day}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AttendanceRecord{}, models.ErrRecordNotFound
	}
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("find attendance record: %w", err)
	}
	return rec, nil
}

// FindRecordByID loads a record by id.
func (r *MongoDBRepository) FindRecordByID(ctx context.Context, id string) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.records.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AttendanceRecord{}, models.ErrRecordNotFound
	}
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("find attendance record %s: %w", id, err)
	}
	return rec, nil
}

func prepareInsert(rec models.AttendanceRecord, now time.Time) models.AttendanceRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Version = 1
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec
}

func insertIfAbsentModel(rec models.AttendanceRecord) *mongo.UpdateOneModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"employee_id": rec.EmployeeID, "execution_date": rec.ExecutionDate}).
		SetUpdate(bson.M{"$setOnInsert": rec}).
		SetUpsert(true)
}

// InsertIfAbsent upserts with $setOnInsert only, so an existing record is never touched.
func (r *MongoDBRepository) InsertIfAbsent(ctx context.Context, rec models.AttendanceRecord) (bool, error) {
	rec = prepareInsert(rec, time.Now().UTC())
	m := insertIfAbsentModel(rec)

	res, err := r.records.UpdateOne(ctx, m.Filter, m.Update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert attendance record: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

// InsertManyIfAbsent bulk upserts records with $setOnInsert and returns how many were new.
func (r *MongoDBRepository) InsertManyIfAbsent(ctx context.Context, recs []models.AttendanceRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(recs))
	for _, rec := range recs {
		writes = append(writes, insertIfAbsentModel(prepareInsert(rec, now)))
	}

	res, err := r.records.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil && !onlyDuplicateKeys(err) {
		return 0, fmt.Errorf("bulk insert attendance records: %w", err)
	}
	if res == nil {
		return 0, nil
	}
	if err != nil {
		r.logger.Debug("bulk insert raced with concurrent writers", zap.Error(err))
	}
	return int(res.UpsertedCount), nil
}

// UpdateRecord replaces the tally if the record is still at expectedVersion.
func (r *MongoDBRepository) UpdateRecord(ctx context.Context, id string, expectedVersion int64, tally models.Tally) (models.AttendanceRecord, error) {
	filter := bson.M{"_id": id, "version": expectedVersion}
	update := bson.D{
		{Key: "$set", Value: tally},
		{Key: "$inc", Value: bson.M{"version": 1}},
		{Key: "$currentDate", Value: bson.M{"updated_at": true}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec models.AttendanceRecord
	err := r.records.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.AttendanceRecord{}, fmt.Errorf("update attendance record %s: %w", id, err)
	}

	count, cerr := r.records.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return models.AttendanceRecord{}, fmt.Errorf("recheck attendance record %s: %w", id, cerr)
	}
	if count == 0 {
		return models.AttendanceRecord{}, models.ErrRecordNotFound
	}
	return models.AttendanceRecord{}, fmt.Errorf("%w: record %s moved past version %d",
		models.ErrConcurrentUpdate, id, expectedVersion)
}

// QueryRange opens a cursor over the matching records ordered by execution date.
// The returned sequence must be ranged over exactly once; that releases the cursor.
func (r *MongoDBRepository) QueryRange(ctx context.Context, filter models.RecordFilter) (models.RecordSeq, error) {
	query := bson.M{"execution_date": bson.M{"$gte": filter.From, "$lt": filter.To}}
	if filter.EmployeeID != "" {
		query["employee_id"] = filter.EmployeeID
	}
	opts := options.Find().SetSort(bson.D{{Key: "execution_date", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.records.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}

	return models.SingleUse(func(yield func(models.AttendanceRecord, error) bool) {
		defer func() {
			if err := cur.Close(ctx); err != nil {
				r.logger.Warn("failed to close attendance cursor", zap.Error(err))
			}
		}()

		for cur.Next(ctx) {
			var rec models.AttendanceRecord
			if err := cur.Decode(&rec); err != nil {
				yield(models.AttendanceRecord{}, fmt.Errorf("decode attendance record: %w", err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(models.AttendanceRecord{}, fmt.Errorf("iterate attendance records: %w", err))
		}
	}), nil
}
