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

func (db *DB) CreateAuthor(ctx context.Context, author *models.Author) (primitive.ObjectID, error) {
	res, err := db.Authors().InsertOne(ctx, author)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// EnsureAuthorsByName resolves author names to author documents, creating
// any that do not exist, and returns their IDs in input order. The upsert
// against the unique name index makes concurrent uploads naming the same
// author converge on one document.
func (db *DB) EnsureAuthorsByName(ctx context.Context, names []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(names))
	for _, name := range names {
		filter := bson.M{"name": name}
		update := bson.M{"$setOnInsert": bson.M{"name": name, "createdAt": time.Now()}}
		opts := options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After)
		var a models.Author
		if err := db.Authors().FindOneAndUpdate(ctx, filter, update, opts).Decode(&a); err != nil {
			return nil, err
		}
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// AuthorByID returns the author, or nil when absent.
func (db *DB) AuthorByID(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	var a models.Author
	err := db.Authors().FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAuthors returns one page of authors plus the total count.
func (db *DB) ListAuthors(ctx context.Context, page, limit int64) ([]models.Author, int64, error) {
	total, err := db.Authors().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.M{"name": 1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := db.Authors().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var authors []models.Author
	if err := cur.All(ctx, &authors); err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// AuthorStats aggregates an author's book count and distinct reader count.
func (db *DB) AuthorStats(ctx context.Context, author *models.Author) (*models.AuthorStats, error) {
	bookCount, err := db.Books().CountDocuments(ctx, bson.M{"authorIds": author.ID})
	if err != nil {
		return nil, err
	}
	bookIDs, err := db.Books().Distinct(ctx, "_id", bson.M{"authorIds": author.ID})
	if err != nil {
		return nil, err
	}
	var readerCount int64
	if len(bookIDs) > 0 {
		readers, err := db.ReadEvents().Distinct(ctx, "userId", bson.M{"bookId": bson.M{"$in": bookIDs}})
		if err != nil {
			return nil, err
		}
		readerCount = int64(len(readers))
	}
	return &models.AuthorStats{
		AuthorID:    author.ID,
		Name:        author.Name,
		BookCount:   bookCount,
		ReaderCount: readerCount,
	}, nil
}

// AuthorBooks returns one page of the author's books, each with its reader
// count, plus the total number of books.
func (db *DB) AuthorBooks(ctx context.Context, authorID primitive.ObjectID, page, limit int64) ([]models.AuthorBookStats, int64, error) {
	filter := bson.M{"authorIds": authorID}
	total, err := db.Books().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := db.Books().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, 0, err
	}

	counts, err := db.readEventCountsByBook(ctx, bookIDsOf(books))
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.AuthorBookStats, 0, len(books))
	for _, b := range books {
		out = append(out, models.AuthorBookStats{Book: b, ReaderCount: counts[b.ID]})
	}
	return out, total, nil
}

func bookIDsOf(books []models.Book) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}

// readEventCountsByBook groups read events for the given books by bookId.
func (db *DB) readEventCountsByBook(ctx context.Context, bookIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(bookIDs))
	if len(bookIDs) == 0 {
		return counts, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bookId": bson.M{"$in": bookIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$bookId", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := db.ReadEvents().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		BookID primitive.ObjectID `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.BookID] = row.Count
	}
	return counts, nil
}
