package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Publication groups books by a publisher/series.
type Publication struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Publisher string               `bson:"publisher,omitempty" json:"publisher,omitempty"`
	BookIDs   []primitive.ObjectID `bson:"bookIds,omitempty" json:"bookIds,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// PublicationStats aggregates readership across a publication's books.
type PublicationStats struct {
	PublicationID primitive.ObjectID `json:"publicationId"`
	Name          string             `json:"name"`
	BookCount     int64              `json:"bookCount"`
	ReaderCount   int64              `json:"readerCount"`
	TotalReads    int64              `json:"totalReads"`
}

// PublicationReader is one row of the paginated readers listing.
type PublicationReader struct {
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	BooksRead  int64              `bson:"booksRead" json:"booksRead"`
	LastReadAt time.Time          `bson:"lastReadAt" json:"lastReadAt"`
}
