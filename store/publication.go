package store

import (
	"context"

	"github.com/bookhaven/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (db *DB) CreatePublication(ctx context.Context, pub *models.Publication) (primitive.ObjectID, error) {
	res, err := db.Publications().InsertOne(ctx, pub)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// PublicationByID returns the publication, or nil when absent.
func (db *DB) PublicationByID(ctx context.Context, id primitive.ObjectID) (*models.Publication, error) {
	var p models.Publication
	err := db.Publications().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PublicationStats aggregates readership across the publication's books.
// TotalReads counts read events; ReaderCount counts distinct readers.
func (db *DB) PublicationStats(ctx context.Context, pub *models.Publication) (*models.PublicationStats, error) {
	filter := bson.M{"publicationId": pub.ID}
	totalReads, err := db.ReadEvents().CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	readers, err := db.ReadEvents().Distinct(ctx, "userId", filter)
	if err != nil {
		return nil, err
	}
	return &models.PublicationStats{
		PublicationID: pub.ID,
		Name:          pub.Name,
		BookCount:     int64(len(pub.BookIDs)),
		ReaderCount:   int64(len(readers)),
		TotalReads:    totalReads,
	}, nil
}

// PublicationReaders returns one page of distinct readers of the
// publication's books, most recently active first, plus the total number
// of distinct readers.
func (db *DB) PublicationReaders(ctx context.Context, pubID primitive.ObjectID, page, limit int64) ([]models.PublicationReader, int64, error) {
	readers, err := db.ReadEvents().Distinct(ctx, "userId", bson.M{"publicationId": pubID})
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(readers))

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"publicationId": pubID}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$userId",
			"booksRead":  bson.M{"$sum": 1},
			"lastReadAt": bson.M{"$max": "$lastReadAt"},
		}}},
		{{Key: "$sort", Value: bson.M{"lastReadAt": -1}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"userId":     "$_id",
			"email":      "$user.email",
			"name":       "$user.name",
			"booksRead":  1,
			"lastReadAt": 1,
		}}},
	}
	cur, err := db.ReadEvents().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var rows []models.PublicationReader
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
