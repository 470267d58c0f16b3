package store

import (
	"context"
	"time"

	"github.com/bookhaven/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// BooksVisibleTo returns books the user owns plus public books. The same
// visibility rule the policy package applies to single-book reads.
func (db *DB) BooksVisibleTo(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"ownerId": userID},
		bson.M{"isPublic": true},
	}}
	cur, err := db.Books().Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// BookByID returns the book, or nil when absent.
func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book by ID and returns the deleted book's S3Key so
// the caller can clean up storage.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (s3Key string, err error) {
	var book models.Book
	err = db.Books().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		return "", err
	}
	return book.S3Key, nil
}

// UpdateBookVisibility sets isPublic for a book.
func (db *DB) UpdateBookVisibility(ctx context.Context, id primitive.ObjectID, isPublic bool) error {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isPublic":  isPublic,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateBookSummary stores the processor-produced summary and marks the
// summary completed. Returns mongo.ErrNoDocuments when the book is absent.
func (db *DB) UpdateBookSummary(ctx context.Context, id primitive.ObjectID, summary string) error {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"aiSummary":       summary,
		"aiSummaryStatus": models.SummaryStatusCompleted,
		"updatedAt":       time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
