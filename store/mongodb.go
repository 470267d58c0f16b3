package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	logrus.Info("connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *DB) Authors() *mongo.Collection {
	return db.Database.Collection("authors")
}

func (db *DB) Publications() *mongo.Collection {
	return db.Database.Collection("publications")
}

func (db *DB) ReadEvents() *mongo.Collection {
	return db.Database.Collection("read_events")
}

func (db *DB) SiteSettings() *mongo.Collection {
	return db.Database.Collection("site_settings")
}

// EnsureIndexes creates the indexes the queries rely on. Safe to call on
// every startup; Mongo treats existing identical indexes as a no-op.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	// Author documents are upserted by name from book uploads.
	_, err = db.Authors().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Books().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
		{Keys: bson.D{{Key: "authorIds", Value: 1}}},
		{Keys: bson.D{{Key: "publicationId", Value: 1}}},
	})
	if err != nil {
		return err
	}
	// One read event per (book, user); repeat reads update in place.
	_, err = db.ReadEvents().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bookId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
