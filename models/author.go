package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Author struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Bio       string             `bson:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// AuthorStats aggregates an author's catalog and readership.
type AuthorStats struct {
	AuthorID    primitive.ObjectID `json:"authorId"`
	Name        string             `json:"name"`
	BookCount   int64              `json:"bookCount"`
	ReaderCount int64              `json:"readerCount"`
}

// AuthorBookStats is one row of the paginated author-books listing.
type AuthorBookStats struct {
	Book        Book  `bson:"book" json:"book"`
	ReaderCount int64 `bson:"readerCount" json:"readerCount"`
}
