package plattform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultDBName = "modfact"

var (
	// ErrMissingMongoURI indicates that the expected environment variable is not set.
	ErrMissingMongoURI = errors.New("database: missing MONGODB_URI environment variable")
)

// NewClient establishes a MongoDB client from MONGODB_URI and returns a MongoService.
// The caller owns the returned service and must call Disconnect when done.
func NewClient(ctx context.Context) (*MongoService, error) {
	uri := strings.TrimSpace(os.Getenv("MONGODB_URI"))
	if uri == "" {
		return nil, ErrMissingMongoURI
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opt := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(opt)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	dbName := strings.TrimSpace(os.Getenv("MONGO_DB_NAME"))
	if dbName == "" {
		dbName = defaultDBName
	}
	return &MongoService{client: client, dbName: dbName}, nil
}

type MongoService struct {
	client *mongo.Client
	dbName string
}

// Collection returns a handle to the named collection in the configured database.
func (s *MongoService) Collection(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

func (s *MongoService) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
