package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AI summary lifecycle, driven by the external PDF processor.
const (
	SummaryStatusPending    = "pending"
	SummaryStatusProcessing = "processing"
	SummaryStatusCompleted  = "completed"
	SummaryStatusFailed     = "failed"
)

type Book struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID   `bson:"ownerId" json:"ownerId"`
	Name            string               `bson:"name" json:"name"`
	Authors         []string             `bson:"authors,omitempty" json:"authors,omitempty"`
	AuthorIDs       []primitive.ObjectID `bson:"authorIds,omitempty" json:"authorIds,omitempty"`
	PublicationID   primitive.ObjectID   `bson:"publicationId,omitempty" json:"publicationId,omitempty"`
	IsPublic        bool                 `bson:"isPublic" json:"isPublic"`
	RequiresPremium bool                 `bson:"requiresPremium" json:"requiresPremium"`
	Format          string               `bson:"format" json:"format"` // "pdf"
	S3Key           string               `bson:"s3Key" json:"-"`       // object key in S3; fileUrl is presigned from it
	OriginalName    string               `bson:"originalName" json:"originalName"`
	AISummary       string               `bson:"aiSummary,omitempty" json:"aiSummary,omitempty"`
	AISummaryStatus string               `bson:"aiSummaryStatus" json:"aiSummaryStatus"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}
