package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/masomo-attendance/core"
)

// Collections
const (
	StudentCollection = "students"
	SheetCollection   = "attendance_sheets"
)

type DB struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Open connects to conf.Mongo.URI and waits for the primary to answer.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	return open(ctx, conf.Mongo.URI, conf.Mongo.Database, conf.Storage.Timeout)
}

func open(ctx context.Context, uri, dbName string, timeout time.Duration) (*DB, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return &DB{client: client, db: client.Database(dbName), timeout: timeout}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories query with.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.db.Collection(StudentCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "class", Value: 1}, {Key: "section", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("roster"),
	})
	if err != nil {
		return errors.Wrap(err, "creating students index")
	}

	_, err = db.db.Collection(SheetCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}, {Key: "class", Value: 1}, {Key: "section", Value: 1}},
		Options: options.Index().SetName("sheet_key"),
	})
	if err != nil {
		return errors.Wrap(err, "creating attendance sheets index")
	}
	return nil
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.timeout)
}
