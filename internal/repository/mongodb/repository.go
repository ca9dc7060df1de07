package mongodb

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const reportsCollection = "herd_reports"

// Repository defines the interface for herd report storage.
type Repository interface {
	SaveHerdReport(ctx context.Context, report models.HerdReport) error
	RecentHerdReports(ctx context.Context, farmID uint, limit int64) ([]models.HerdReport, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// reportDocument stores the milk total as Decimal128, which the driver
// cannot derive from decimal.Decimal on its own.
type reportDocument struct {
	models.HerdReport `bson:",inline"`
	MilkTotal         primitive.Decimal128 `bson:"milk_total"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}, nil
}

// SaveHerdReport archives a weekly report.
func (r *MongoDBRepository) SaveHerdReport(ctx context.Context, report models.HerdReport) error {
	doc, err := toDocument(report)
	if err != nil {
		return err
	}
	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert herd report: %w", err)
	}
	return nil
}

// RecentHerdReports returns a farm's latest reports, newest first.
func (r *MongoDBRepository) RecentHerdReports(ctx context.Context, farmID uint, limit int64) ([]models.HerdReport, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().SetSort(bson.D{{Key: "period_end", Value: -1}}).SetLimit(limit)
	cur, err := r.collection().Find(ctx, bson.D{{Key: "farm_id", Value: farmID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find herd reports: %w", err)
	}
	defer cur.Close(ctx)

	var docs []reportDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode herd reports: %w", err)
	}
	reports := make([]models.HerdReport, 0, len(docs))
	for _, doc := range docs {
		reports = append(reports, fromDocument(doc))
	}
	return reports, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

func toDocument(report models.HerdReport) (reportDocument, error) {
	total, err := primitive.ParseDecimal128(report.MilkTotal.String())
	if err != nil {
		return reportDocument{}, fmt.Errorf("encode milk total %s: %w", report.MilkTotal, err)
	}
	return reportDocument{HerdReport: report, MilkTotal: total}, nil
}

func fromDocument(doc reportDocument) models.HerdReport {
	report := doc.HerdReport
	if total, err := decimal.NewFromString(doc.MilkTotal.String()); err == nil {
		report.MilkTotal = total
	}
	return report
}
