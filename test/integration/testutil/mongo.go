package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	migrations "staydesk/internal/migrations/mongo"
	"staydesk/pkg/client"
	"staydesk/pkg/config"
	"staydesk/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "staydesk_integration"
	ConnectionTimeout   = 10 * time.Second
)

// MongoHelper owns a connection to a scratch database with the migrations applied.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	mongoURI := getEnv("TEST_MONGO_URI", DefaultMongoURI)
	dbName := getEnv("TEST_DB_NAME", DefaultDatabaseName)

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not reachable at %s: %v", mongoURI, err)
	}

	h := &MongoHelper{
		Client:   mc,
		Database: mc.Database(dbName),
		DBName:   dbName,
	}
	h.CleanDatabase(t)

	if err := migrations.RunMigration(ctx, h.Database, logger.Discard()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		h.CleanDatabase(t)
		h.Close(t)
	})
	return h
}

// Config returns a service config bound to the scratch database, as repositories expect.
func (m *MongoHelper) Config() *config.Config {
	return &config.Config{
		MongoDatabaseName: m.DBName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		UnitLockTTL:       config.DefaultUnitLockTTL,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: m.Client},
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Database.Drop(ctx); err != nil {
		t.Fatalf("failed to drop database %s: %v", m.DBName, err)
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
