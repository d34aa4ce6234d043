package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names
const (
	FoodsCollection   = "foods"
	RecipesCollection = "recipes"
)

// MongoDB represents a MongoDB connection
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// NewMongoDB connects to uri, pings the primary and selects database.
// timeout bounds the connect and ping together.
func NewMongoDB(ctx context.Context, uri, database string, timeout time.Duration, log *zap.Logger) (*MongoDB, error) {
	logger := log.Named("mongodb")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", database))

	return &MongoDB{
		client: client,
		db:     client.Database(database),
		log:    logger,
	}, nil
}

// EnsureIndexes creates the unique fdc_id index on foods and the name
// indexes used for sorted listings.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.Collection(FoodsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "fdc_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "food_name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create food indexes: %w", err)
	}

	_, err = m.Collection(RecipesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create recipe indexes: %w", err)
	}
	return nil
}

// Ping checks the connection is still alive
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	m.log.Info("Closing MongoDB connection")
	return m.client.Disconnect(ctx)
}

// Collection returns a MongoDB collection
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}
