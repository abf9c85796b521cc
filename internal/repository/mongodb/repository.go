package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/repository"
)

const (
	reportsCollection    = "daily_reports"
	ledgerCollection     = "stock_ledger"
	pricingCollection    = "pricing"
	organizersCollection = "organizers"

	pricingDocumentID = "global"
)

// Documents carry a seq field so loads come back in stored order.
type reportDocument struct {
	Seq                int `bson:"seq"`
	models.DailyReport `bson:",inline"`
}

type ledgerDocument struct {
	Seq                     int `bson:"seq"`
	models.StockLedgerEntry `bson:",inline"`
}

type pricingDocument struct {
	ID   string              `bson:"_id"`
	Rows models.PricingTable `bson:"rows"`
}

// MongoDBRepository implements repository.Gateway on MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

var _ repository.Gateway = (*MongoDBRepository)(nil)

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
		client: client,
		dbName: dbName,
	}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

func byOrganizer(organizerID string) bson.M {
	return bson.M{"organizer_id": organizerID}
}

func inStoredOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
}

// LoadReports returns the organizer's reports in stored order.
func (r *MongoDBRepository) LoadReports(ctx context.Context, organizerID string) ([]models.DailyReport, error) {
	cursor, err := r.collection(reportsCollection).Find(ctx, byOrganizer(organizerID), inStoredOrder())
	if err != nil {
		return nil, fmt.Errorf("failed to query daily reports: %w", err)
	}

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode daily reports: %w", err)
	}

	reports := make([]models.DailyReport, 0, len(docs))
	for _, doc := range docs {
		reports = append(reports, doc.DailyReport)
	}
	return reports, nil
}

// SaveReports replaces the organizer's report partition.
func (r *MongoDBRepository) SaveReports(ctx context.Context, organizerID string, reports []models.DailyReport) error {
	docs := make([]interface{}, 0, len(reports))
	for i, report := range reports {
		docs = append(docs, reportDocument{Seq: i, DailyReport: report})
	}
	if err := r.replacePartition(ctx, reportsCollection, organizerID, docs); err != nil {
		return fmt.Errorf("failed to save daily reports: %w", err)
	}
	return nil
}

// LoadLedger returns the organizer's ledger entries in stored order.
func (r *MongoDBRepository) LoadLedger(ctx context.Context, organizerID string) ([]models.StockLedgerEntry, error) {
	cursor, err := r.collection(ledgerCollection).Find(ctx, byOrganizer(organizerID), inStoredOrder())
	if err != nil {
		return nil, fmt.Errorf("failed to query stock ledger: %w", err)
	}

	var docs []ledgerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode stock ledger: %w", err)
	}

	entries := make([]models.StockLedgerEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.StockLedgerEntry)
	}
	return entries, nil
}

// SaveLedger replaces the organizer's ledger partition.
func (r *MongoDBRepository) SaveLedger(ctx context.Context, organizerID string, entries []models.StockLedgerEntry) error {
	docs := make([]interface{}, 0, len(entries))
	for i, entry := range entries {
		docs = append(docs, ledgerDocument{Seq: i, StockLedgerEntry: entry})
	}
	if err := r.replacePartition(ctx, ledgerCollection, organizerID, docs); err != nil {
		return fmt.Errorf("failed to save stock ledger: %w", err)
	}
	return nil
}

// replacePartition rewrites an organizer partition inside a transaction.
// Standalone servers reject transactions, so there the rewrite runs bare and
// callers restore on failure.
func (r *MongoDBRepository) replacePartition(ctx context.Context, name, organizerID string, docs []interface{}) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.rewritePartition(sc, name, organizerID, docs)
	})
	if transactionsUnsupported(err) {
		return r.rewritePartition(ctx, name, organizerID, docs)
	}
	return err
}

func (r *MongoDBRepository) rewritePartition(ctx context.Context, name, organizerID string, docs []interface{}) error {
	coll := r.collection(name)
	if _, err := coll.DeleteMany(ctx, byOrganizer(organizerID)); err != nil {
		return fmt.Errorf("clear partition %s: %w", organizerID, err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert partition %s: %w", organizerID, err)
	}
	return nil
}

// illegalOperationCode is returned by servers that are not replica set members.
const illegalOperationCode = 20

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == illegalOperationCode
}

// LoadPricing returns the global table when one was saved.
func (r *MongoDBRepository) LoadPricing(ctx context.Context) (models.PricingTable, bool, error) {
	var doc pricingDocument
	err := r.collection(pricingCollection).FindOne(ctx, bson.M{"_id": pricingDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load pricing table: %w", err)
	}
	return doc.Rows, true, nil
}

// SavePricing replaces the global table.
func (r *MongoDBRepository) SavePricing(ctx context.Context, table models.PricingTable) error {
	doc := pricingDocument{ID: pricingDocumentID, Rows: table}
	_, err := r.collection(pricingCollection).ReplaceOne(ctx, bson.M{"_id": pricingDocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save pricing table: %w", err)
	}
	return nil
}

// Organizer looks one organizer up by id.
func (r *MongoDBRepository) Organizer(ctx context.Context, id string) (models.Organizer, error) {
	var organizer models.Organizer
	err := r.collection(organizersCollection).FindOne(ctx, byOrganizer(id)).Decode(&organizer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Organizer{}, fmt.Errorf("organizer %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return models.Organizer{}, fmt.Errorf("failed to load organizer %s: %w", id, err)
	}
	return organizer, nil
}

// LoadOrganizers lists the organizer directory.
func (r *MongoDBRepository) LoadOrganizers(ctx context.Context) ([]models.Organizer, error) {
	cursor, err := r.collection(organizersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query organizers: %w", err)
	}
	var organizers []models.Organizer
	if err := cursor.All(ctx, &organizers); err != nil {
		return nil, fmt.Errorf("failed to decode organizers: %w", err)
	}
	return organizers, nil
}

// SaveOrganizers replaces the organizer directory.
func (r *MongoDBRepository) SaveOrganizers(ctx context.Context, organizers []models.Organizer) error {
	coll := r.collection(organizersCollection)
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear organizers: %w", err)
	}
	if len(organizers) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(organizers))
	for _, o := range organizers {
		docs = append(docs, o)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert organizers: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
