package store

import (
	"context"
	"time"

	"github.com/bookhaven/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordRead upserts the (book, user) read event: first read creates the
// document, repeat reads bump lastReadAt and pagesRead. The unique index
// on (bookId, userId) makes concurrent first reads converge on one doc.
func (db *DB) RecordRead(ctx context.Context, userID primitive.ObjectID, book *models.Book) error {
	filter := bson.M{"bookId": book.ID, "userId": userID}
	update := bson.M{
		"$set": bson.M{"lastReadAt": time.Now()},
		"$inc": bson.M{"pagesRead": 1},
		"$setOnInsert": bson.M{
			"bookId":        book.ID,
			"userId":        userID,
			"publicationId": book.PublicationID,
		},
	}
	_, err := db.ReadEvents().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
