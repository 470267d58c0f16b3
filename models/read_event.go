package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReadEvent records a user reading a book. One document per (user, book);
// repeat reads bump PagesRead and LastReadAt. Backs the author and
// publication reader stats.
type ReadEvent struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID        primitive.ObjectID `bson:"bookId" json:"bookId"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	PublicationID primitive.ObjectID `bson:"publicationId,omitempty" json:"publicationId,omitempty"`
	PagesRead     int                `bson:"pagesRead" json:"pagesRead"`
	LastReadAt    time.Time          `bson:"lastReadAt" json:"lastReadAt"`
}
