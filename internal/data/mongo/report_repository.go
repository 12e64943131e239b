package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventory-sales-ledger/internal/domain/report"
)

const (
	// SalesReportCollectionName holds one document per committed sale entry
	SalesReportCollectionName = "sales_report"
	// RejectionsCollectionName holds sell commands that were consumed but not applied
	RejectionsCollectionName = "sale_rejections"
)

// ReportRepository implements the report.Repository interface for MongoDB
type ReportRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReportRepository creates a new MongoDB report projection repository
func NewReportRepository(logger *slog.Logger, db *mongo.Database) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the indexes the projection relies on. The unique index on
// sale_entry_id is what makes replays of the same outbox message harmless.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(SalesReportCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sale_entry_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sold_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create sales report indexes: %w", err)
	}

	_, err = r.db.Collection(RejectionsCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "transaction_id", Value: 1}, {Key: "recorded_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create rejection indexes: %w", err)
	}

	return nil
}

// UpsertSale inserts the record unless one already exists for the sale entry
func (r *ReportRepository) UpsertSale(ctx context.Context, record *report.SaleRecord) error {
	collection := r.db.Collection(SalesReportCollectionName)

	filter := bson.M{"sale_entry_id": record.SaleEntryID}
	update := bson.M{"$setOnInsert": record}

	result, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to project sale",
			"sale_entry_id", record.SaleEntryID.String(),
			"error", err)
		return fmt.Errorf("failed to project sale: %w", err)
	}

	if result.UpsertedCount == 0 {
		r.logger.Debug("Sale already projected", "sale_entry_id", record.SaleEntryID.String())
	}

	return nil
}

// GetSale returns the projected record of a sale entry
func (r *ReportRepository) GetSale(ctx context.Context, saleEntryID uuid.UUID) (*report.SaleRecord, error) {
	collection := r.db.Collection(SalesReportCollectionName)

	var record report.SaleRecord
	err := collection.FindOne(ctx, bson.M{"sale_entry_id": saleEntryID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, report.ErrRecordNotFound{SaleEntryID: saleEntryID}
		}
		r.logger.Error("Failed to get projected sale",
			"sale_entry_id", saleEntryID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get projected sale: %w", err)
	}

	return &record, nil
}

// SummarizeByItem aggregates sales with from <= sold_at < to, one row per item
// ordered by item id. The item name is taken from the latest sale in the window.
func (r *ReportRepository) SummarizeByItem(ctx context.Context, from, to time.Time) ([]*report.ItemSummary, error) {
	collection := r.db.Collection(SalesReportCollectionName)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "sold_at", Value: bson.D{
			{Key: "$gte", Value: from},
			{Key: "$lt", Value: to},
		}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "sold_at", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$item_id"},
			{Key: "item_name", Value: bson.D{{Key: "$last", Value: "$item_name"}}},
			{Key: "units_sold", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
			{Key: "transactions", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate sales report",
			"from", from,
			"to", to,
			"error", err)
		return nil, fmt.Errorf("failed to aggregate sales report: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := make([]*report.ItemSummary, 0)
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode sales report: %w", err)
	}

	return summaries, nil
}

// RecordRejection appends to the rejection log
func (r *ReportRepository) RecordRejection(ctx context.Context, rejection *report.Rejection) error {
	if rejection.RecordedAt.IsZero() {
		rejection.RecordedAt = time.Now().UTC()
	}

	_, err := r.db.Collection(RejectionsCollectionName).InsertOne(ctx, rejection)
	if err != nil {
		r.logger.Error("Failed to record sale rejection",
			"transaction_id", rejection.TransactionID,
			"item_id", rejection.ItemID,
			"error", err)
		return fmt.Errorf("failed to record sale rejection: %w", err)
	}

	return nil
}

// ListRejections returns the rejections of a transaction in the order they were recorded
func (r *ReportRepository) ListRejections(ctx context.Context, transactionID string) ([]*report.Rejection, error) {
	collection := r.db.Collection(RejectionsCollectionName)

	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
	cursor, err := collection.Find(ctx, bson.M{"transaction_id": transactionID}, opts)
	if err != nil {
		r.logger.Error("Failed to list sale rejections", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to list sale rejections: %w", err)
	}
	defer cursor.Close(ctx)

	rejections := make([]*report.Rejection, 0)
	if err := cursor.All(ctx, &rejections); err != nil {
		return nil, fmt.Errorf("failed to decode sale rejections: %w", err)
	}

	return rejections, nil
}
